package usecase

import (
	"strings"
	"testing"

	"kbrag/internal/domain"
)

func TestFormatPassages(t *testing.T) {
	passages := []domain.ScoredPassage{
		{Content: "Click forgot password.", Source: "FAQ", Score: 60},
		{Content: "Contact support.", Source: "Guide", Score: 12},
	}

	got := FormatPassages(passages)
	want := "[source: FAQ]\nClick forgot password.\n\n---\n\n[source: Guide]\nContact support."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	if FormatPassages(nil) != "" {
		t.Error("expected empty string for no passages")
	}
}

func TestPromptBuilderBase(t *testing.T) {
	b, err := NewPromptBuilder()
	if err != nil {
		t.Fatal(err)
	}

	prompt, err := b.Build(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(prompt, "You are a customer support assistant.") {
		t.Errorf("unexpected base prompt: %q", prompt)
	}
	if strings.Contains(prompt, "[source:") {
		t.Error("base prompt should not list sources")
	}
}

func TestPromptBuilderKnowledge(t *testing.T) {
	b, err := NewPromptBuilder()
	if err != nil {
		t.Fatal(err)
	}

	passages := []domain.ScoredPassage{
		{Content: "忘记密码请点击登录页", Source: "FAQ", Score: 59},
		{Content: "营业时间", Source: domain.UnknownSource, Score: 1},
	}
	prompt, err := b.Build(passages)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(prompt, "Knowledge base excerpts:\n") {
		t.Errorf("knowledge prompt missing heading: %q", prompt)
	}
	if !strings.HasSuffix(prompt, FormatPassages(passages)) {
		t.Errorf("knowledge prompt should end with the passages, got %q", prompt)
	}
	if strings.Index(prompt, "[source: FAQ]") > strings.Index(prompt, "[source: unknown document]") {
		t.Error("passages should keep their ranked order")
	}
}
