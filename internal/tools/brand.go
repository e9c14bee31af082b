package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const defaultTopKPerPlatform = 10

// BrandFeedbackOp searches every platform for one brand and returns a block
// with one section per platform. This is the agent's workhorse operation for
// single-brand analysis.
type BrandFeedbackOp struct {
	deps *Dependencies
}

// NewBrandFeedbackOp creates the multi-platform brand retrieval operation.
func NewBrandFeedbackOp(deps *Dependencies) *BrandFeedbackOp {
	return &BrandFeedbackOp{deps: deps}
}

func (o *BrandFeedbackOp) Name() string { return "retrieve_brand_feedback" }

func (o *BrandFeedbackOp) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name: o.Name(),
			Description: "Searches ALL platforms for a specific brand. Returns comprehensive feedback " +
				"from community discussions and store reviews. ALWAYS USE THIS for thorough multi-platform analysis.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"brand": map[string]any{
						"type":        "string",
						"description": "Brand to search",
						"enum":        o.deps.Catalog.BrandKeys(),
					},
					"search_query": map[string]any{
						"type":        "string",
						"description": "Search query to find relevant feedback across all platforms",
					},
					"top_k_per_platform": map[string]any{
						"type":        "integer",
						"description": "Number of results per platform (default: 10 for comprehensive analysis)",
						"default":     defaultTopKPerPlatform,
					},
				},
				"required": []string{"brand", "search_query"},
			},
		},
	}
}

func (o *BrandFeedbackOp) Invoke(ctx context.Context, args map[string]any) (string, error) {
	brandKey, err := requireString(args, "brand")
	if err != nil {
		return "", err
	}
	searchQuery, err := requireString(args, "search_query")
	if err != nil {
		return "", err
	}
	topK := intArg(args, "top_k_per_platform", defaultTopKPerPlatform)

	brand, ok := o.deps.Catalog.BrandByKey(brandKey)
	if !ok {
		return "", fmt.Errorf("%s index not available", strings.ToUpper(brandKey))
	}

	var out strings.Builder
	fmt.Fprintf(&out, "[%s - COMPREHENSIVE MULTI-PLATFORM FEEDBACK]\n", strings.ToUpper(brand.Key))
	fmt.Fprintf(&out, "Search Query: %s\n\n", searchQuery)

	for _, platform := range o.deps.Catalog.Platforms {
		hits := o.deps.Retriever.QuerySafe(ctx, brand.Key, platform.Key, searchQuery, topK)

		fmt.Fprintf(&out, "\n%s\n", platformDivider)
		fmt.Fprintf(&out, "%s (%d results)\n", strings.ToUpper(platform.LongName), len(hits))
		fmt.Fprintf(&out, "%s\n", platformDivider)

		if len(hits) == 0 {
			fmt.Fprintf(&out, "\n   No results found on %s\n", platform.LongName)
			continue
		}
		for i, hit := range hits {
			writeFeedbackEntry(&out, i+1, hit, platform)
		}
	}

	return strings.TrimSuffix(out.String(), "\n"), nil
}
