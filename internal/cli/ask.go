package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askDirect bool
	askTopK   int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question over the feedback corpus",
	Long: `Ask runs the agentic retrieval loop: the model decides which brands and
platforms to search, retrieves feedback, and answers with platform-attributed
findings.

With --direct the tool loop is skipped and a single retrieval pass across all
brands feeds one synthesis call. Faster, but less thorough.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := strings.Join(args, " ")

		insights, err := buildInsights()
		if err != nil {
			exitWithError("%v", err)
		}

		ctx := cmd.Context()
		if askDirect {
			fmt.Println(insights.DirectAnswer(ctx, question, askTopK))
			return
		}

		answer, err := insights.AnswerQuestion(ctx, question)
		if err != nil {
			exitWithError("answer question: %v", err)
		}
		fmt.Println(answer)
	},
}

func init() {
	askCmd.Flags().BoolVar(&askDirect, "direct", false, "skip the tool loop, single retrieval pass")
	askCmd.Flags().IntVar(&askTopK, "top-k", 0, "posts retrieved per brand with --direct (0 = default)")
}
