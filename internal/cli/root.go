package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kbrag/config"
	"kbrag/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "kbrag",
	Short: "Knowledge-base assistant - upload documents and chat with them",
	Long: `kbrag keeps a small knowledge base of uploaded documents and answers
questions with a chat model, adding the most relevant passages to every
request. Retrieval is lexical and works on Chinese and English text.

Example usage:
  kbrag add ./docs                   # Upload documents
  kbrag search -q "忘记密码"          # Show the passages a question retrieves
  kbrag ask -q "How do I get a refund?"
  kbrag chat                         # Interactive conversation`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		// A missing .env file is fine.
		_ = godotenv.Load(filepath.Join(rootDir, ".env"))

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level, ok := logger.ParseLevel(cfg.Logging.Level)
		if !ok {
			return fmt.Errorf("unknown log level: %s", cfg.Logging.Level)
		}
		if verbose {
			level = logger.LevelDebug
		}
		logger.SetLevel(level)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./kbrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "knowledge base directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
