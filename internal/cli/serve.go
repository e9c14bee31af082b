package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/echolens/echolens/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the insight API over HTTP",
	Long: `Serve exposes the question-answering endpoints and the streaming chat
WebSocket. Shuts down gracefully on SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		insights, err := buildInsights()
		if err != nil {
			exitWithError("%v", err)
		}

		srv := server.NewHTTPServer(insights, model, dbClient, catalog, collector, logger)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx, serveAddr); err != nil {
			exitWithError("http server: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}
