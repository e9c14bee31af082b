// Package server exposes the retrieval operations over MCP and the insight
// service over HTTP and WebSocket.
package server

import (
	"context"
	"log/slog"

	"github.com/echolens/echolens/internal/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer wraps the MCP server with lifecycle management.
type MCPServer struct {
	mcp    *mcp.Server
	logger *slog.Logger
}

// NewMCPServer creates an MCP server advertising the retrieval tools.
func NewMCPServer(version string, logger *slog.Logger) *MCPServer {
	impl := &mcp.Implementation{
		Name:    "echolens",
		Version: version,
	}

	return &MCPServer{
		mcp:    mcp.NewServer(impl, nil),
		logger: logger,
	}
}

// Setup adds middleware to the server.
func (s *MCPServer) Setup() {
	s.mcp.AddReceivingMiddleware(LoggingMiddleware(s.logger))
}

// Run starts the server on stdio transport and blocks until disconnect or
// context cancellation.
func (s *MCPServer) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// BrandFeedbackInput is the MCP input schema for multi-platform brand search.
type BrandFeedbackInput struct {
	Brand           string `json:"brand" jsonschema:"required,Brand to search"`
	SearchQuery     string `json:"search_query" jsonschema:"required,Search query to find relevant feedback across all platforms"`
	TopKPerPlatform int    `json:"top_k_per_platform,omitempty" jsonschema:"Number of results per platform (default 10)"`
}

// PlatformFeedbackInput is the MCP input schema for single-platform search.
type PlatformFeedbackInput struct {
	Brand       string `json:"brand" jsonschema:"required,Brand to search"`
	Platform    string `json:"platform" jsonschema:"required,Platform to search"`
	SearchQuery string `json:"search_query" jsonschema:"required,Search query"`
	TopK        int    `json:"top_k,omitempty" jsonschema:"Number of results (default 10)"`
}

// ComparisonInput is the MCP input schema for cross-brand comparison.
type ComparisonInput struct {
	SearchQuery          string `json:"search_query" jsonschema:"required,Search query to find comparable feedback across all brands"`
	TopKPerBrandPlatform int    `json:"top_k_per_brand_platform,omitempty" jsonschema:"Results per brand per platform (default 5)"`
}

// RegisterOperations exposes the registry's operations as MCP tools.
func (s *MCPServer) RegisterOperations(registry *tools.Registry) {
	for _, def := range registry.Definitions() {
		tool := &mcp.Tool{
			Name:        def.Function.Name,
			Description: def.Function.Description,
		}

		switch def.Function.Name {
		case "retrieve_brand_feedback":
			mcp.AddTool(s.mcp, tool, invokeHandler(registry, def.Function.Name, func(in BrandFeedbackInput) map[string]any {
				args := map[string]any{"brand": in.Brand, "search_query": in.SearchQuery}
				if in.TopKPerPlatform > 0 {
					args["top_k_per_platform"] = in.TopKPerPlatform
				}
				return args
			}))
		case "retrieve_platform_feedback":
			mcp.AddTool(s.mcp, tool, invokeHandler(registry, def.Function.Name, func(in PlatformFeedbackInput) map[string]any {
				args := map[string]any{"brand": in.Brand, "platform": in.Platform, "search_query": in.SearchQuery}
				if in.TopK > 0 {
					args["top_k"] = in.TopK
				}
				return args
			}))
		case "retrieve_competitive_comparison":
			mcp.AddTool(s.mcp, tool, invokeHandler(registry, def.Function.Name, func(in ComparisonInput) map[string]any {
				args := map[string]any{"search_query": in.SearchQuery}
				if in.TopKPerBrandPlatform > 0 {
					args["top_k_per_brand_platform"] = in.TopKPerBrandPlatform
				}
				return args
			}))
		default:
			s.logger.Warn("no MCP schema for operation, skipping", "tool", def.Function.Name)
		}
	}
}

// invokeHandler adapts a registry operation into a typed MCP tool handler.
func invokeHandler[In any](registry *tools.Registry, name string, toArgs func(In) map[string]any) mcp.ToolHandlerFor[In, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input In) (*mcp.CallToolResult, any, error) {
		op, ok := registry.Get(name)
		if !ok {
			return ErrorResult("Tool not registered", ""), nil, nil
		}

		out, err := op.Invoke(ctx, toArgs(input))
		if err != nil {
			return ErrorResult(err.Error(), "Check brand and platform values against the catalog"), nil, nil
		}
		return TextResult(out), nil, nil
	}
}
