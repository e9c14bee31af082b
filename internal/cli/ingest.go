package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/echolens/echolens/internal/models"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [brand] [file]",
	Short: "Ingest feedback documents into a brand's index",
	Long: `Ingest reads feedback documents from a file, classifies and embeds them,
and upserts them into the brand's collection. Re-ingesting the same documents
updates the existing records instead of duplicating them.

The file holds either a JSON array of documents or newline-delimited JSON,
one document per line.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		brand, path := args[0], args[1]

		docs, err := readDocuments(path)
		if err != nil {
			exitWithError("read documents: %v", err)
		}
		if len(docs) == 0 {
			exitWithError("no documents found in %s", path)
		}

		ingester, err := buildIngest()
		if err != nil {
			exitWithError("%v", err)
		}

		result, err := ingester.IngestBrand(cmd.Context(), brand, docs)
		if err != nil {
			exitWithError("ingest: %v", err)
		}

		fmt.Printf("Ingested %d documents into %s (%d skipped, %d failed)\n",
			result.Ingested, brand, result.Skipped, result.Failed)
	},
}

// readDocuments parses a JSON array or NDJSON file of feedback documents.
func readDocuments(path string) ([]models.FeedbackDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var docs []models.FeedbackDocument
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var doc models.FeedbackDocument
		if err := json.Unmarshal(text, &doc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		docs = append(docs, doc)
	}
	return docs, scanner.Err()
}
