// Package tools implements the retrieval operations exposed to the research
// agent, both through the in-process session loop and the MCP server.
package tools

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

// Operation is a single tool the agent can call. Invoke returns a formatted
// text block ready to be fed back into the conversation.
type Operation interface {
	Name() string
	Definition() llms.Tool
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// Registry holds the available operations and preserves registration order
// so that tool definitions are presented to the model deterministically.
type Registry struct {
	ops   map[string]Operation
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Register adds an operation. Re-registering a name replaces the previous
// operation without changing its position.
func (r *Registry) Register(op Operation) {
	name := op.Name()
	if _, exists := r.ops[name]; !exists {
		r.order = append(r.order, name)
	}
	r.ops[name] = op
}

// Get returns the operation registered under name.
func (r *Registry) Get(name string) (Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns operation names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns the tool definitions in registration order, ready to
// pass to the LLM.
func (r *Registry) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.ops[name].Definition())
	}
	return defs
}

// stringArg extracts a string argument, returning fallback when the key is
// missing or not a string.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// intArg extracts an integer argument. JSON decoding yields float64, so both
// numeric shapes are accepted.
func intArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return fallback
	}
}

// requireString extracts a mandatory string argument.
func requireString(args map[string]any, key string) (string, error) {
	s := stringArg(args, key, "")
	if s == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return s, nil
}
