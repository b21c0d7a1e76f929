package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"kbrag/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const (
	baseTemplate      = "templates/base_prompt.txt"
	knowledgeTemplate = "templates/knowledge_prompt.txt"

	// PassageSeparator sits between knowledge entries in the system prompt.
	PassageSeparator = "\n\n---\n\n"
)

// PromptBuilder renders the system instruction sent ahead of a chat.
type PromptBuilder struct {
	base      *template.Template
	knowledge *template.Template
}

type promptData struct {
	Passages []domain.ScoredPassage
}

// NewPromptBuilder parses the embedded prompt templates.
func NewPromptBuilder() (*PromptBuilder, error) {
	base, err := parseTemplate(baseTemplate)
	if err != nil {
		return nil, err
	}
	knowledge, err := parseTemplate(knowledgeTemplate)
	if err != nil {
		return nil, err
	}
	return &PromptBuilder{base: base, knowledge: knowledge}, nil
}

func parseTemplate(name string) (*template.Template, error) {
	content, err := promptTemplates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Build returns the base instruction when passages is empty, otherwise the
// knowledge instruction followed by every passage under its source heading.
func (b *PromptBuilder) Build(passages []domain.ScoredPassage) (string, error) {
	tmpl := b.base
	if len(passages) > 0 {
		tmpl = b.knowledge
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Passages: passages}); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

// FormatPassages lists passages as "[source: name]" headings followed by
// their text, separated by a horizontal rule.
func FormatPassages(passages []domain.ScoredPassage) string {
	entries := make([]string, 0, len(passages))
	for _, p := range passages {
		entries = append(entries, fmt.Sprintf("[source: %s]\n%s", p.Source, p.Content))
	}
	return strings.Join(entries, PassageSeparator)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatPassages": FormatPassages,
	}
}
