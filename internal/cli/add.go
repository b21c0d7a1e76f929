package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kbrag/internal/adapter/fs"
	"kbrag/internal/adapter/parser"
	"kbrag/internal/usecase"
)

var addCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Upload documents to the knowledge base",
	Long: `Upload files or directories to the knowledge base. Text is extracted
from .txt, .md and .docx files. PDF and legacy .doc files are recorded but
marked failed because their text cannot be extracted.

Examples:
  kbrag add faq.txt
  kbrag add ./manuals ./policies`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes, cfg.Ingest.MaxFileBytes)
	ingestUC := usecase.NewIngestUseCase(st, walker, parser.New())

	files, err := ingestUC.Discover(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(out, "No matching files found.")
		return nil
	}

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	startTime := time.Now()

	progress := func(done, total int) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Uploading[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
		}

		_ = bar.Set(done)

		elapsed := time.Since(startTime)
		rate := float64(done) / elapsed.Seconds()
		if remaining := total - done; rate > 0 && remaining > 0 {
			eta := time.Duration(float64(remaining)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Uploading[reset] ETA: %s", formatDuration(eta)))
		}
	}

	result, err := ingestUC.Ingest(files, progress)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Fprintf(out, "\nUpload complete:\n")
	fmt.Fprintf(out, "  Completed: %d\n", len(result.Completed))
	fmt.Fprintf(out, "  Failed:    %d\n", len(result.Failed))
	fmt.Fprintf(out, "  Skipped:   %d (unsupported type)\n", len(result.Skipped))

	for _, doc := range result.Completed {
		fmt.Fprintf(out, "  + %s  %s (%s)\n", doc.ID, doc.Name, doc.Type)
	}
	for _, doc := range result.Failed {
		fmt.Fprintf(out, "  ! %s  %s (%s): text could not be extracted\n", doc.ID, doc.Name, doc.Type)
	}

	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
