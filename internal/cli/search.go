package cli

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alumnet/semsearch/search"
)

var (
	searchType  string
	searchLimit int
	searchMode  string
)

var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Run a one-shot query against the index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		withLexical := searchMode == search.ModeKeyword
		a, err := buildApp(ctx, withLexical)
		if err != nil {
			return err
		}
		defer a.close()

		results, err := a.searcher.Search(ctx, strings.Join(args, " "), search.Options{
			TopK: searchLimit,
			Type: searchType,
			Mode: searchMode,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "restrict results to one entity type")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	searchCmd.Flags().StringVar(&searchMode, "mode", search.ModeSemantic, "search mode: semantic or keyword")
	rootCmd.AddCommand(searchCmd)
}
