package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

var _ port.FileParser = (*Parser)(nil)

const docxBody = "word/document.xml"

var typeLabels = map[string]string{
	".pdf":  "PDF Document",
	".doc":  "Word Document",
	".docx": "Word Document",
	".txt":  "Text File",
	".md":   "Markdown",
}

// TypeLabel returns the display label for a file name, or "Unknown" for
// extensions the knowledge base does not accept.
func TypeLabel(name string) string {
	if label, ok := typeLabels[strings.ToLower(filepath.Ext(name))]; ok {
		return label
	}
	return "Unknown"
}

// Accepted reports whether files with this name can be uploaded at all.
func Accepted(name string) bool {
	_, ok := typeLabels[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Parser extracts plain text from uploaded files.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".docx":
		return parseDocx(path)
	case ".pdf":
		return parsePDF(path)
	default:
		return "", fmt.Errorf("%w: no text extractor for %q", domain.ErrUnsupportedType, ext)
	}
}

func parseDocx(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != docxBody {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return documentText(content)
	}
	return "", fmt.Errorf("docx %s: missing %s", path, docxBody)
}

// parsePDF extracts the plain text of every page, separating pages with a
// blank line. Pages whose text cannot be decoded are skipped.
func parsePDF(path string) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// The reader panics on some malformed objects.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf %s: %v", path, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf %s: %w", path, err)
	}

	var result strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if result.Len() > 0 {
			result.WriteString("\n\n")
		}
		result.WriteString(pageText)
	}

	return result.String(), nil
}

type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// documentText joins the paragraphs of word/document.xml with blank lines
// so that each one becomes a separate paragraph for the chunker.
func documentText(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n\n")
		}
		for _, run := range para.Runs {
			for _, text := range run.Text {
				result.WriteString(text.Content)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}
