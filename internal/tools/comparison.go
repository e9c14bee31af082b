package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const defaultTopKPerBrandPlatform = 5

// CompetitiveComparisonOp searches every brand across every platform and
// returns a compact cross-brand block for comparison questions.
type CompetitiveComparisonOp struct {
	deps *Dependencies
}

// NewCompetitiveComparisonOp creates the cross-brand comparison operation.
func NewCompetitiveComparisonOp(deps *Dependencies) *CompetitiveComparisonOp {
	return &CompetitiveComparisonOp{deps: deps}
}

func (o *CompetitiveComparisonOp) Name() string { return "retrieve_competitive_comparison" }

func (o *CompetitiveComparisonOp) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name: o.Name(),
			Description: "Searches ALL brands across ALL platforms for competitive analysis. " +
				"MANDATORY for comparison queries.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"search_query": map[string]any{
						"type":        "string",
						"description": "Search query to find comparable feedback across all brands",
					},
					"top_k_per_brand_platform": map[string]any{
						"type":        "integer",
						"description": "Results per brand per platform (default: 5)",
						"default":     defaultTopKPerBrandPlatform,
					},
				},
				"required": []string{"search_query"},
			},
		},
	}
}

func (o *CompetitiveComparisonOp) Invoke(ctx context.Context, args map[string]any) (string, error) {
	searchQuery, err := requireString(args, "search_query")
	if err != nil {
		return "", err
	}
	topK := intArg(args, "top_k_per_brand_platform", defaultTopKPerBrandPlatform)

	var out strings.Builder
	out.WriteString("[COMPETITIVE COMPARISON - ALL BRANDS x ALL PLATFORMS]\n")
	fmt.Fprintf(&out, "Search Query: %s\n\n", searchQuery)

	for _, brand := range o.deps.Catalog.Brands {
		fmt.Fprintf(&out, "\n%s\n", brandDivider)
		fmt.Fprintf(&out, "%s FEEDBACK\n", strings.ToUpper(brand.Key))
		fmt.Fprintf(&out, "%s\n", brandDivider)

		for _, platform := range o.deps.Catalog.Platforms {
			hits, err := o.deps.Retriever.Query(ctx, brand.Key, platform.Key, searchQuery, topK)
			if err != nil {
				fmt.Fprintf(&out, "\n   Error retrieving %s: %v\n", platform.Name, err)
				continue
			}

			fmt.Fprintf(&out, "\n%s\n", comparisonDivider)
			fmt.Fprintf(&out, "%s (%d results)\n", platform.Name, len(hits))
			fmt.Fprintf(&out, "%s\n", comparisonDivider)

			for i, hit := range hits {
				writeComparisonEntry(&out, i+1, hit, platform)
			}
		}
	}

	return strings.TrimSuffix(out.String(), "\n"), nil
}
