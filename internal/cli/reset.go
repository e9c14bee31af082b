package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset [brand]",
	Short: "Wipe one brand's index, or all of them",
	Long: `Reset removes every document from the named brand's collection. With no
argument it wipes all brand collections. Asks for confirmation unless --yes
is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var targets []string
		var label string
		if len(args) == 1 {
			brand, ok := catalog.BrandByKey(args[0])
			if !ok {
				exitWithError("unknown brand %q", args[0])
			}
			targets = []string{brand.Collection}
			label = brand.DisplayName
		} else {
			targets = collections()
			label = "ALL brands"
		}

		if !resetYes {
			fmt.Printf("This will delete all feedback for %s. Continue? [y/N] ", label)
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if answer != "y" && answer != "yes" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := dbClient.WipeCollections(cmd.Context(), targets); err != nil {
			exitWithError("wipe collections: %v", err)
		}
		fmt.Printf("Wiped %d collection(s)\n", len(targets))
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
}
