// Package cli provides the command-line interface for echolens.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/echolens/echolens/internal/config"
	"github.com/echolens/echolens/internal/db"
	"github.com/echolens/echolens/internal/llm"
	"github.com/echolens/echolens/internal/metrics"
	"github.com/echolens/echolens/internal/pipeline"
	"github.com/echolens/echolens/internal/retrieval"
	"github.com/echolens/echolens/internal/service"
	"github.com/echolens/echolens/internal/session"
	"github.com/echolens/echolens/internal/tools"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, catalog, and db client
	cfg       config.Config
	catalog   *config.Catalog
	dbClient  *db.Client
	collector *metrics.Collector
	logger    *slog.Logger
	closeLog  func() error

	// Lazy-initialized LLM components
	embedder llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "echolens",
	Short: "Customer feedback aggregation and analysis",
	Long: `Echolens aggregates customer feedback from community discussions and app
store reviews into per-brand semantic indexes, and answers questions over
them with an agentic retrieval loop and a multi-stage report pipeline.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		var err error
		catalog, err = config.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		collector = metrics.NewCollector()

		ctx := context.Background()
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, collections(), cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLog != nil {
			_ = closeLog()
		}
	},
}

// collections lists the catalog's brand collections.
func collections() []string {
	cols := make([]string, len(catalog.Brands))
	for i, b := range catalog.Brands {
		cols[i] = b.Collection
	}
	return cols
}

// initLLM lazily creates the embedder and model. Commands that only touch
// the database never pay for provider setup.
func initLLM() error {
	if embedder != nil {
		return nil
	}

	var err error
	embedder, err = llm.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	model, err = llm.NewModel(cfg, collector)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}
	return nil
}

// buildGateway creates the retrieval gateway over the connected database.
func buildGateway() (*retrieval.Gateway, error) {
	if err := initLLM(); err != nil {
		return nil, err
	}
	return retrieval.NewGateway(dbClient, embedder, catalog, collector, logger), nil
}

// buildRegistry creates the tool registry over a gateway.
func buildRegistry(gateway *retrieval.Gateway) *tools.Registry {
	return tools.RegisterAll(&tools.Dependencies{
		Retriever: gateway,
		Catalog:   catalog,
	})
}

// buildInsights wires the full question-answering stack.
func buildInsights() (*service.InsightService, error) {
	gateway, err := buildGateway()
	if err != nil {
		return nil, err
	}

	registry := buildRegistry(gateway)
	driver := session.NewDriver(model, registry, cfg.MaxToolIterations, collector, logger)
	reporter := pipeline.NewReporter(driver, model, catalog, collector, logger)
	return service.NewInsightService(driver, reporter, gateway, model, catalog, logger), nil
}

// buildIngest wires the ingestion stack.
func buildIngest() (*service.IngestService, error) {
	if err := initLLM(); err != nil {
		return nil, err
	}
	return service.NewIngestService(dbClient, embedder, catalog, collector, logger), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
