package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kbrag/internal/adapter/parser"
	"kbrag/internal/domain"
)

var (
	docsName     string
	docsPage     int
	docsPageSize int
	docsJSON     bool
	docsContent  bool
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsShow,
}

var docsRmCmd = &cobra.Command{
	Use:   "rm <id>...",
	Short: "Delete documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDocsRm,
}

var docsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import document records exported by another tool",
	Long: `Import a JSON array of records shaped like
  [{"name": "FAQ", "type": "Text File", "content": "..."}]
Records whose content is not a string are kept; search skips them.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsImport,
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsShowCmd, docsRmCmd, docsImportCmd)

	docsListCmd.Flags().StringVar(&docsName, "name", "", "only documents whose name contains this text")
	docsListCmd.Flags().IntVar(&docsPage, "page", 1, "page number")
	docsListCmd.Flags().IntVar(&docsPageSize, "page-size", 10, "documents per page")
	docsListCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")
	docsShowCmd.Flags().BoolVar(&docsContent, "content", false, "print the extracted text")
}

type docView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Size       int64     `json:"size"`
	Status     string    `json:"status"`
	Content    string    `json:"content_kind"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func toView(doc domain.Document) docView {
	return docView{
		ID:         doc.ID,
		Name:       doc.Name,
		Type:       doc.Type,
		Size:       doc.Size,
		Status:     string(doc.Status),
		Content:    doc.Content.Kind.String(),
		UploadedAt: doc.UploadedAt,
	}
}

func runDocsList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	page, err := st.ListDocs(domain.DocumentFilter{
		NameContains: docsName,
		Page:         docsPage,
		PageSize:     docsPageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docsJSON {
		views := make([]docView, 0, len(page.Documents))
		for _, doc := range page.Documents {
			views = append(views, toView(doc))
		}
		output, _ := json.MarshalIndent(map[string]any{
			"documents":   views,
			"total":       page.Total,
			"page":        page.Page,
			"page_size":   page.PageSize,
			"total_pages": page.TotalPages,
		}, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	if page.Total == 0 {
		fmt.Fprintln(out, "No documents.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tSTATUS\tUPLOADED")
	for _, doc := range page.Documents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			doc.ID, doc.Name, doc.Type, doc.Size, doc.Status, doc.UploadedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	fmt.Fprintf(out, "\nPage %d of %d (%d documents)\n", page.Page, page.TotalPages, page.Total)
	return nil
}

func runDocsShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	doc, err := st.GetDoc(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ID:       %s\n", doc.ID)
	fmt.Fprintf(out, "Name:     %s\n", doc.Name)
	fmt.Fprintf(out, "Type:     %s\n", doc.Type)
	fmt.Fprintf(out, "Size:     %d bytes\n", doc.Size)
	fmt.Fprintf(out, "Status:   %s\n", doc.Status)
	fmt.Fprintf(out, "Uploaded: %s\n", doc.UploadedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Content:  %s\n", doc.Content.Kind)

	if docsContent && doc.Content.HasText() {
		fmt.Fprintf(out, "\n%s\n", doc.Content.Text)
	}
	return nil
}

func runDocsRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, id := range args {
		if err := st.DeleteDoc(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return nil
}

type importRecord struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

func runDocsImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	now := time.Now()
	for i, rec := range records {
		docType := rec.Type
		if docType == "" {
			docType = parser.TypeLabel(rec.Name)
		}
		doc := domain.Document{
			ID:         uuid.New().String(),
			Name:       rec.Name,
			Type:       docType,
			Size:       int64(len(rec.Content)),
			Status:     domain.StatusCompleted,
			Content:    domain.MissingContent(),
			UploadedAt: now.Add(time.Duration(i)),
		}
		if err := st.PutDoc(doc); err != nil {
			return err
		}
		if len(rec.Content) > 0 {
			if err := st.PutRawContent(doc.ID, rec.Content); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents\n", len(records))
	return nil
}
