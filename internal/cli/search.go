package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchText string
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Show the passages a question retrieves",
	Long: `Search the knowledge base the same way chat does and print the
passages that would be added to the model prompt.

Examples:
  kbrag search -q "忘记密码"
  kbrag search -q "refund policy" --top-k 5 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	retrieveUC, err := newRetrieveUseCase(cfg, st)
	if err != nil {
		return err
	}

	topK := cfg.Knowledge.TopK
	if cmd.Flags().Changed("top-k") {
		topK = searchTopK
	}

	results, err := retrieveUC.RetrieveK(searchText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(results), searchText)
	for i, r := range results {
		fmt.Fprintf(out, "--- [%d] %s (score: %.2f) ---\n", i+1, r.Source, r.Score)
		fmt.Fprintln(out, r.Content)
		fmt.Fprintln(out)
	}

	return nil
}
