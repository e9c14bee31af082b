// Package llm provides the LLM and embedding capabilities using langchaingo.
package llm

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Completer is the single LLM capability the orchestration layers depend on.
// Implementations must support structured tool-call requests in responses.
type Completer interface {
	// Complete runs one system+user exchange and returns the text response.
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts ...GenOption) (string, error)

	// CompleteWithHistory sends a full transcript plus optional tool
	// definitions and returns the assistant turn, which may carry tool calls.
	CompleteWithHistory(ctx context.Context, messages []llms.MessageContent, tools []llms.Tool, opts ...GenOption) (*llms.ContentChoice, error)
}

// GenOption adjusts sampling parameters for a single call.
type GenOption func(*genConfig)

type genConfig struct {
	temperature *float64
	maxTokens   *int
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GenOption {
	return func(c *genConfig) { c.temperature = &t }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) GenOption {
	return func(c *genConfig) { c.maxTokens = &n }
}

func (c *genConfig) callOptions() []llms.CallOption {
	var opts []llms.CallOption
	if c.temperature != nil {
		opts = append(opts, llms.WithTemperature(*c.temperature))
	}
	if c.maxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*c.maxTokens))
	}
	return opts
}

// Model wraps a langchaingo model behind the Completer interface.
type Model struct {
	llm       llms.Model
	modelName string
	timeout   time.Duration
	collector *metrics.Collector
}

// Compile-time check that Model satisfies the capability.
var _ Completer = (*Model)(nil)

// NewModel creates an LLM model based on configuration. The collector may be
// nil; when set, every call records duration and token usage.
func NewModel(cfg config.Config, collector *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(context.Background())
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithModel(cfg.LLMModel),
			bedrock.WithClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		timeout:   cfg.RequestTimeout,
		collector: collector,
	}, nil
}

// callContext applies the configured request timeout to one outbound call.
func (m *Model) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

// recordUsage feeds call duration and token counts into the collector.
func (m *Model) recordUsage(op string, start time.Time, choice *llms.ContentChoice) {
	if m.collector == nil {
		return
	}
	in, out := tokenUsage(choice)
	m.collector.RecordLLMUsage(op, time.Since(start), in, out)
}

// tokenUsage reads token counts from a choice's generation info. Providers
// disagree on key names: openai reports PromptTokens/CompletionTokens,
// anthropic InputTokens/OutputTokens.
func tokenUsage(choice *llms.ContentChoice) (in, out int64) {
	if choice == nil || choice.GenerationInfo == nil {
		return 0, 0
	}
	return infoTokens(choice.GenerationInfo, "PromptTokens", "InputTokens"),
		infoTokens(choice.GenerationInfo, "CompletionTokens", "OutputTokens")
}

func infoTokens(info map[string]any, keys ...string) int64 {
	for _, key := range keys {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}

// Complete runs one system+user exchange.
func (m *Model) Complete(ctx context.Context, systemPrompt, userPrompt string, opts ...GenOption) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	choice, err := m.CompleteWithHistory(ctx, messages, nil, opts...)
	if err != nil {
		return "", err
	}
	return choice.Content, nil
}

// CompleteWithHistory sends the full transcript with tool definitions.
func (m *Model) CompleteWithHistory(ctx context.Context, messages []llms.MessageContent, tools []llms.Tool, opts ...GenOption) (*llms.ContentChoice, error) {
	var gc genConfig
	for _, opt := range opts {
		opt(&gc)
	}

	callOpts := gc.callOptions()
	if len(tools) > 0 {
		callOpts = append(callOpts, llms.WithTools(tools))
	}

	ctx, cancel := m.callContext(ctx)
	defer cancel()

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("complete with history: %w", wrapFatalError(err))
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}
	m.recordUsage(metrics.OpLLMComplete, start, response.Choices[0])
	return response.Choices[0], nil
}

// CompleteWithHistoryStream sends a transcript and streams response chunks to
// fn as they arrive. Returns the full accumulated response.
func (m *Model) CompleteWithHistoryStream(ctx context.Context, messages []llms.MessageContent, fn func(chunk []byte) error, opts ...GenOption) (string, error) {
	var gc genConfig
	for _, opt := range opts {
		opt(&gc)
	}

	callOpts := gc.callOptions()
	callOpts = append(callOpts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		return fn(chunk)
	}))

	ctx, cancel := m.callContext(ctx)
	defer cancel()

	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("complete stream: %w", wrapFatalError(err))
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	m.recordUsage(metrics.OpLLMStream, start, response.Choices[0])
	return response.Choices[0].Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
