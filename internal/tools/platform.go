package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const defaultPlatformTopK = 10

// PlatformFeedbackOp searches a single platform for one brand. Narrower and
// cheaper than the multi-platform operation, for platform-specific questions.
type PlatformFeedbackOp struct {
	deps *Dependencies
}

// NewPlatformFeedbackOp creates the single-platform retrieval operation.
func NewPlatformFeedbackOp(deps *Dependencies) *PlatformFeedbackOp {
	return &PlatformFeedbackOp{deps: deps}
}

func (o *PlatformFeedbackOp) Name() string { return "retrieve_platform_feedback" }

func (o *PlatformFeedbackOp) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name: o.Name(),
			Description: "Searches a SPECIFIC platform for a brand. Use only when platform-specific " +
				"insights are needed. For comprehensive analysis, use retrieve_brand_feedback instead.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"brand": map[string]any{
						"type":        "string",
						"description": "Brand to search",
						"enum":        o.deps.Catalog.BrandKeys(),
					},
					"platform": map[string]any{
						"type":        "string",
						"description": "Platform to search",
						"enum":        o.deps.Catalog.PlatformKeys(),
					},
					"search_query": map[string]any{
						"type":        "string",
						"description": "Search query",
					},
					"top_k": map[string]any{
						"type":        "integer",
						"description": "Number of results (default: 10)",
						"default":     defaultPlatformTopK,
					},
				},
				"required": []string{"brand", "platform", "search_query"},
			},
		},
	}
}

func (o *PlatformFeedbackOp) Invoke(ctx context.Context, args map[string]any) (string, error) {
	brandKey, err := requireString(args, "brand")
	if err != nil {
		return "", err
	}
	platformKey, err := requireString(args, "platform")
	if err != nil {
		return "", err
	}
	searchQuery, err := requireString(args, "search_query")
	if err != nil {
		return "", err
	}
	topK := intArg(args, "top_k", defaultPlatformTopK)

	brand, ok := o.deps.Catalog.BrandByKey(brandKey)
	if !ok {
		return "", fmt.Errorf("%s index not available", strings.ToUpper(brandKey))
	}
	platform, ok := o.deps.Catalog.PlatformByKey(platformKey)
	if !ok {
		return "", fmt.Errorf("unknown platform %q", platformKey)
	}

	hits, err := o.deps.Retriever.Query(ctx, brand.Key, platform.Key, searchQuery, topK)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	fmt.Fprintf(&out, "[%s - %s]\n", strings.ToUpper(brand.Key), strings.ToUpper(platform.Name))
	fmt.Fprintf(&out, "Search Query: %s\n", searchQuery)

	for i, hit := range hits {
		fmt.Fprintf(&out, "\n%d. %s", i+1, hit.Text)
	}

	return out.String(), nil
}
