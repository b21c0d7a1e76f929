package analyzer

import (
	"regexp"
	"testing"
	"unicode/utf8"
)

func TestTokenize_Alnum(t *testing.T) {
	tokens := Tokenize("Reset your Password via SMS 2FA, a b")

	for _, want := range []string{"reset", "your", "password", "via", "sms", "2fa"} {
		if !tokens.Has(want) {
			t.Errorf("expected token %q in %v", want, tokens.Sorted())
		}
	}
	for _, short := range []string{"a", "b"} {
		if tokens.Has(short) {
			t.Errorf("single-character word %q should be dropped", short)
		}
	}
}

func TestTokenize_Deduplicates(t *testing.T) {
	tokens := Tokenize("login LOGIN Login")
	if len(tokens) != 1 {
		t.Errorf("expected 1 token, got %d: %v", len(tokens), tokens.Sorted())
	}
}

func TestTokenize_HanNGrams(t *testing.T) {
	tokens := Tokenize("忘记密码")

	// 4 unigrams + 3 bigrams + 2 trigrams + 1 four-gram
	if len(tokens) != 10 {
		t.Errorf("expected 10 tokens, got %d: %v", len(tokens), tokens.Sorted())
	}
	for _, want := range []string{"忘", "密码", "记密码", "忘记密码"} {
		if !tokens.Has(want) {
			t.Errorf("expected token %q", want)
		}
	}
}

func TestTokenize_HanLongRunCapsAtFour(t *testing.T) {
	tokens := Tokenize("请点击登录页面")
	for tok := range tokens {
		if n := utf8.RuneCountInString(tok); n > 4 {
			t.Errorf("token %q has %d characters, want at most 4", tok, n)
		}
	}
	if tokens.Has("请点击登录") {
		t.Error("five-character n-gram should not be emitted")
	}
}

func TestTokenize_SingleIdeograph(t *testing.T) {
	tokens := Tokenize("a 好 b")
	if len(tokens) != 1 || !tokens.Has("好") {
		t.Errorf("expected only the unigram, got %v", tokens.Sorted())
	}
}

func TestTokenize_MixedScripts(t *testing.T) {
	tokens := Tokenize("VIP会员")
	if !tokens.Has("vip") || !tokens.Has("会员") || !tokens.Has("会") {
		t.Errorf("unexpected tokens %v", tokens.Sorted())
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	if tokens := Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	if tokens := Tokenize("？！ ,. \n"); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for punctuation, got %v", tokens.Sorted())
	}
}

func TestTokenize_TokenShape(t *testing.T) {
	alnum := regexp.MustCompile(`^[a-z0-9]{2,}$`)
	han := regexp.MustCompile(`^[\x{4e00}-\x{9fa5}]{1,4}$`)

	inputs := []string{
		"忘记密码请点击登录页的忘记密码链接进行重置。",
		"Contact support for help. Support hours are 9-5.",
		"订单号 A123456 的退款What's up？",
	}
	for _, in := range inputs {
		for tok := range Tokenize(in) {
			if !alnum.MatchString(tok) && !han.MatchString(tok) {
				t.Errorf("Tokenize(%q) produced malformed token %q", in, tok)
			}
		}
	}
}

func TestTokenize_Idempotent(t *testing.T) {
	text := "退款 Refund 退款流程 refund-policy"
	first := Tokenize(text).Sorted()
	second := Tokenize(text).Sorted()
	if len(first) != len(second) {
		t.Fatalf("token counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("token %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestTokenizer_CustomNGram(t *testing.T) {
	tok := NewTokenizer(2)
	tokens := tok.TokenSet("忘记密码")
	// 4 unigrams + 3 bigrams
	if len(tokens) != 7 {
		t.Errorf("expected 7 tokens, got %d: %v", len(tokens), tokens.Sorted())
	}

	sorted := tok.Tokenize("bb aa")
	if len(sorted) != 2 || sorted[0] != "aa" || sorted[1] != "bb" {
		t.Errorf("expected sorted [aa bb], got %v", sorted)
	}
}

func TestHanBlocks(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"密码忘记了怎么办？", []string{"密码忘记了怎么办"}},
		{"登录abc注册", []string{"登录", "注册"}},
		{"hello world", nil},
		{"", nil},
		{"。忘记。", []string{"忘记"}},
	}

	for _, tt := range tests {
		got := HanBlocks(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("HanBlocks(%q) = %v, want %v", tt.input, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("HanBlocks(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestAlnumTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 2},
		{"hello-world", 2},
		{"CamelCase", 1},
		{"123numbers456", 1},
		{"x y z", 0},
		{"error error ERROR", 1},
	}

	for _, tt := range tests {
		words := AlnumTokens(tt.input)
		if len(words) != tt.expected {
			t.Errorf("AlnumTokens(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
