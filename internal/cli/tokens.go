package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kbrag/internal/adapter/analyzer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <text>...",
	Short: "Print the search tokens of a text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenizer := analyzer.NewTokenizer(GetConfig().Knowledge.MaxNGram)
		for _, token := range tokenizer.Tokenize(strings.Join(args, " ")) {
			fmt.Fprintln(cmd.OutOrStdout(), token)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}
