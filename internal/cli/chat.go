package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/echolens/echolens/internal/models"
	"github.com/spf13/cobra"
)

var chatTopK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the feedback corpus",
	Long: `Chat starts a REPL. Each question runs a single retrieval pass across all
brands and streams the synthesized answer as it is generated. Earlier turns
stay in the conversation, so follow-up questions work.

Type "exit" or press Ctrl+D to quit.`,
	Run: func(cmd *cobra.Command, args []string) {
		insights, err := buildInsights()
		if err != nil {
			exitWithError("%v", err)
		}

		ctx := cmd.Context()
		fmt.Printf("echolens chat (%s). Type a question, or \"exit\" to quit.\n\n", model.Model())

		var history []models.ChatMessage
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				fmt.Println()
				return
			}

			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if question == "exit" || question == "quit" {
				return
			}

			answer := insights.ChatTurnStream(ctx, history, question, chatTopK, model, func(chunk []byte) error {
				_, err := os.Stdout.Write(chunk)
				return err
			})
			fmt.Print("\n\n")

			history = append(history,
				models.ChatMessage{Role: models.RoleUser, Content: question},
				models.ChatMessage{Role: models.RoleAssistant, Content: answer},
			)
		}
	},
}

func init() {
	chatCmd.Flags().IntVar(&chatTopK, "top-k", 0, "posts retrieved per brand (0 = default)")
}
