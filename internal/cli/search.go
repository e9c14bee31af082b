package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchPlatform string
	searchTopK     int
)

var searchCmd = &cobra.Command{
	Use:   "search [brand] [query]",
	Short: "Run a raw similarity search against one brand's index",
	Long: `Search embeds the query and returns the closest feedback documents from the
brand's collection, with similarity scores. Useful for inspecting what the
retrieval tools would see.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		brand := args[0]
		query := strings.Join(args[1:], " ")

		gateway, err := buildGateway()
		if err != nil {
			exitWithError("%v", err)
		}

		hits, err := gateway.Query(cmd.Context(), brand, searchPlatform, query, searchTopK)
		if err != nil {
			exitWithError("search: %v", err)
		}

		if len(hits) == 0 {
			fmt.Println("No results.")
			return
		}

		for i, hit := range hits {
			fmt.Printf("%d. [%s] (%.4f) %s\n", i+1, strings.ToUpper(hit.Platform), hit.Similarity, hit.Text)
			if hit.URL != "" {
				fmt.Printf("   %s\n", hit.URL)
			}
		}
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchPlatform, "platform", "", "restrict results to one platform")
	searchCmd.Flags().IntVar(&searchTopK, "top-k", 10, "number of results")
}
