package config

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// SetupLogger builds the process logger: readable text on stderr plus JSON
// appended to logFile. The file sink matters most for the MCP host, where
// stdout belongs to the protocol and clients tend to swallow stderr.
// The returned closer releases the file sink.
func SetupLogger(logFile string, level slog.Level) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	console := slog.NewTextHandler(os.Stderr, opts)

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Error("cannot open log file, logging to stderr only", "file", logFile, "error", err)
		return slog.New(console), func() error { return nil }
	}

	logger := slog.New(slogmulti.Fanout(console, slog.NewJSONHandler(f, opts)))
	return logger, f.Close
}
