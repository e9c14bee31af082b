package cli

import (
	"encoding/json"
	"fmt"

	"github.com/echolens/echolens/internal/metrics"
	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus counts per brand and platform",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		type brandCounts struct {
			Brand     string         `json:"brand"`
			Total     int            `json:"total"`
			Platforms map[string]int `json:"platforms"`
		}

		var all []brandCounts
		for _, brand := range catalog.Brands {
			total, err := dbClient.TotalCount(ctx, brand.Collection)
			if err != nil {
				exitWithError("count %s: %v", brand.Key, err)
			}
			counts, err := dbClient.CountFeedback(ctx, brand.Collection)
			if err != nil {
				exitWithError("count %s per platform: %v", brand.Key, err)
			}

			platforms := make(map[string]int, len(counts))
			for _, c := range counts {
				platforms[c.Platform] = c.Count
			}
			all = append(all, brandCounts{Brand: brand.Key, Total: total, Platforms: platforms})
		}

		if statsJSON {
			payload := struct {
				Brands  []brandCounts    `json:"brands"`
				Metrics metrics.Snapshot `json:"metrics"`
			}{Brands: all, Metrics: collector.Snapshot()}
			out, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				exitWithError("encode stats: %v", err)
			}
			fmt.Println(string(out))
			return
		}

		for _, bc := range all {
			fmt.Printf("%s: %d documents\n", bc.Brand, bc.Total)
			for _, platform := range catalog.Platforms {
				if n, ok := bc.Platforms[platform.Key]; ok {
					fmt.Printf("  %s: %d\n", platform.Name, n)
				}
			}
		}
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}
