// Package session runs the agentic tool loop: the model decides which
// retrieval operations to call, the driver executes them and feeds results
// back until the model answers in plain text.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/echolens/echolens/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// DefaultMaxIterations bounds the tool loop so a model that keeps calling
// tools cannot spin forever.
const DefaultMaxIterations = 5

// exhaustedMessage is returned when the loop runs out of iterations without
// a single content-bearing assistant message.
const exhaustedMessage = "Maximum iterations reached"

// Driver executes the bounded tool-calling loop.
type Driver struct {
	completer     llm.Completer
	registry      *tools.Registry
	maxIterations int
	collector     *metrics.Collector
	logger        *slog.Logger
}

// NewDriver creates a session driver. maxIterations <= 0 uses the default.
// The collector may be nil.
func NewDriver(completer llm.Completer, registry *tools.Registry, maxIterations int, collector *metrics.Collector, logger *slog.Logger) *Driver {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		completer:     completer,
		registry:      registry,
		maxIterations: maxIterations,
		collector:     collector,
		logger:        logger,
	}
}

// Run drives the loop until the model responds without tool calls or the
// iteration budget runs out. Tool failures are surfaced to the model as
// inline error strings, never as loop aborts.
func (d *Driver) Run(ctx context.Context, systemPrompt, userPrompt string, opts ...llm.GenOption) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}
	definitions := d.registry.Definitions()

	var lastContent string

	for iteration := 1; iteration <= d.maxIterations; iteration++ {
		choice, err := d.completer.CompleteWithHistory(ctx, messages, definitions, opts...)
		if err != nil {
			return "", fmt.Errorf("completion (iteration %d): %w", iteration, err)
		}

		if choice.Content != "" {
			lastContent = choice.Content
		}

		if len(choice.ToolCalls) == 0 {
			d.logger.Debug("session complete", "iterations", iteration)
			return choice.Content, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			assistant.Parts = append(assistant.Parts, llms.TextContent{Text: choice.Content})
		}
		for _, call := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, call)
		}
		messages = append(messages, assistant)

		for _, call := range choice.ToolCalls {
			result := d.executeCall(ctx, call)
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: call.ID,
					Name:       call.FunctionCall.Name,
					Content:    result,
				}},
			})
		}
	}

	d.logger.Warn("session exhausted iteration budget", "max_iterations", d.maxIterations)
	if lastContent != "" {
		return lastContent, nil
	}
	return exhaustedMessage, nil
}

// executeCall runs one requested tool call and returns the text to feed back
// to the model.
func (d *Driver) executeCall(ctx context.Context, call llms.ToolCall) string {
	name := call.FunctionCall.Name

	op, ok := d.registry.Get(name)
	if !ok {
		d.logger.Warn("model requested unknown tool", "tool", name)
		return fmt.Sprintf("Error: Tool %s not found", name)
	}

	args := map[string]any{}
	if raw := call.FunctionCall.Arguments; raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			d.logger.Warn("malformed tool arguments", "tool", name, "error", err)
			args = map[string]any{}
		}
	}

	start := time.Now()
	result, err := op.Invoke(ctx, args)
	duration := time.Since(start)
	if d.collector != nil {
		d.collector.RecordTiming(metrics.OpToolInvoke, duration)
	}

	if err != nil {
		d.logger.Warn("tool invocation failed", "tool", name, "error", err)
		return fmt.Sprintf("Error executing tool: %v", err)
	}

	d.logger.Debug("tool invoked", "tool", name, "result_len", len(result), "duration_ms", duration.Milliseconds())
	return result
}
