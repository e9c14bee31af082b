package cli

import (
	"github.com/echolens/echolens/internal/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the retrieval tools over MCP on stdio",
	Long: `Mcp exposes the brand, platform, and comparison retrieval tools to MCP
clients over stdio. Logs go to the configured log file so stdout stays clean
for the protocol.`,
	Run: func(cmd *cobra.Command, args []string) {
		gateway, err := buildGateway()
		if err != nil {
			exitWithError("%v", err)
		}
		registry := buildRegistry(gateway)

		srv := server.NewMCPServer(Version, logger)
		srv.Setup()
		srv.RegisterOperations(registry)

		if err := srv.Run(cmd.Context()); err != nil {
			exitWithError("mcp server: %v", err)
		}
	},
}
