package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alumnet/semsearch/errors"
	"github.com/alumnet/semsearch/search"
)

var reindexBatchSize int

var reindexCmd = &cobra.Command{
	Use:   "reindex <documents.json>",
	Short: "Bulk-load documents from a JSON file into the index",
	Long: `Reads a JSON array of documents ({id, type, text, meta}) and embeds
and indexes them in batches. Existing records with the same type and id are
replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if reindexBatchSize < 1 {
			return errors.InvalidInput("batch-size must be at least 1")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var reqs []search.IndexRequest
		if err := json.Unmarshal(data, &reqs); err != nil {
			return errors.InvalidInput("documents file is not a JSON array of documents")
		}
		if len(reqs) == 0 {
			return errors.InvalidInput("documents file is empty")
		}

		a, err := buildApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.close()

		for start := 0; start < len(reqs); start += reindexBatchSize {
			end := start + reindexBatchSize
			if end > len(reqs) {
				end = len(reqs)
			}
			if err := a.searcher.IndexBulk(ctx, reqs[start:end]); err != nil {
				return fmt.Errorf("indexing documents %d-%d: %w", start, end-1, err)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d documents\n", len(reqs))
		return nil
	},
}

func init() {
	reindexCmd.Flags().IntVar(&reindexBatchSize, "batch-size", 64, "documents per embedding batch")
	rootCmd.AddCommand(reindexCmd)
}
