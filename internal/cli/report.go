package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/echolens/echolens/internal/models"
	"github.com/echolens/echolens/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	reportOutput   string
	reportFullRun  bool
	reportFindings bool
	reportNoTTYBar bool
)

var reportCmd = &cobra.Command{
	Use:   "report [question]",
	Short: "Generate a full service improvement report",
	Long: `Report runs the four-stage pipeline: a research agent gathers feedback from
every platform through the retrieval tools, then outline, writer, and editor
stages turn the findings into a polished report.

The final report prints to stdout. With --full-run all intermediate
artifacts (research summary, outline, draft) are included as JSON. With
--findings only the research stage runs and the structured findings (themes,
pain points, recommendations) print as JSON.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := strings.Join(args, " ")

		insights, err := buildInsights()
		if err != nil {
			exitWithError("%v", err)
		}

		ctx := cmd.Context()

		if reportFindings {
			research, err := insights.Research(ctx, question)
			if err != nil {
				exitWithError("research: %v", err)
			}
			findings, err := insights.ExtractFindings(ctx, research)
			if err != nil {
				exitWithError("extract findings: %v", err)
			}
			writeReportOutput(mustMarshalIndent(findings))
			return
		}

		var run *models.PipelineRun
		if term.IsTerminal(int(os.Stdout.Fd())) && !reportNoTTYBar {
			run, err = runReportProgress(ctx, func(ctx context.Context, progress pipeline.ProgressFunc) (*models.PipelineRun, error) {
				return insights.GenerateReport(ctx, question, progress)
			})
		} else {
			run, err = insights.GenerateReport(ctx, question, func(stage pipeline.Stage) {
				fmt.Fprintf(os.Stderr, "[%s] started\n", stage)
			})
		}
		if err != nil {
			exitWithError("generate report: %v", err)
		}

		var output []byte
		if reportFullRun {
			output = mustMarshalIndent(run)
		} else {
			output = []byte(run.FinalReport)
		}
		writeReportOutput(output)
	},
}

func mustMarshalIndent(v any) []byte {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitWithError("encode report: %v", err)
	}
	return out
}

// writeReportOutput sends the report to --output if set, stdout otherwise.
func writeReportOutput(output []byte) {
	if reportOutput != "" {
		if err := os.WriteFile(reportOutput, output, 0o644); err != nil {
			exitWithError("write report: %v", err)
		}
		fmt.Printf("Report written to %s\n", reportOutput)
		return
	}
	fmt.Println(string(output))
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file")
	reportCmd.Flags().BoolVar(&reportFullRun, "full-run", false, "include all intermediate artifacts as JSON")
	reportCmd.Flags().BoolVar(&reportFindings, "findings", false, "run research only and print structured findings as JSON")
	reportCmd.Flags().BoolVar(&reportNoTTYBar, "no-progress", false, "disable the interactive progress display")
}
