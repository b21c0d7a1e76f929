package analyzer

import (
	"sort"
	"strings"

	"kbrag/internal/port"
)

// DefaultMaxNGram is the longest ideograph n-gram emitted for a Han run.
const DefaultMaxNGram = 4

var _ port.Tokenizer = (*Tokenizer)(nil)

// TokenSet is a deduplicated collection of search tokens.
type TokenSet map[string]struct{}

// Has reports whether token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Sorted returns the tokens in lexical order.
func (s TokenSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Tokenizer extracts lower-cased alphanumeric words and Han n-grams.
type Tokenizer struct {
	maxNGram int
}

// NewTokenizer creates a Tokenizer emitting Han n-grams up to maxNGram
// characters. Non-positive values fall back to DefaultMaxNGram.
func NewTokenizer(maxNGram int) *Tokenizer {
	if maxNGram <= 0 {
		maxNGram = DefaultMaxNGram
	}
	return &Tokenizer{maxNGram: maxNGram}
}

var defaultTokenizer = NewTokenizer(DefaultMaxNGram)

// Tokenize extracts the token set of text with the default n-gram length.
func Tokenize(text string) TokenSet {
	return defaultTokenizer.TokenSet(text)
}

// TokenSet extracts every distinct token of text.
func (t *Tokenizer) TokenSet(text string) TokenSet {
	tokens := make(TokenSet)
	if text == "" {
		return tokens
	}

	for _, w := range AlnumTokens(text) {
		tokens[w] = struct{}{}
	}

	for _, block := range HanBlocks(text) {
		runes := []rune(block)
		maxLen := t.maxNGram
		if len(runes) < maxLen {
			maxLen = len(runes)
		}
		for n := 1; n <= maxLen; n++ {
			for i := 0; i+n <= len(runes); i++ {
				tokens[string(runes[i:i+n])] = struct{}{}
			}
		}
	}

	return tokens
}

// Tokenize returns the token set of text as a sorted slice.
func (t *Tokenizer) Tokenize(text string) []string {
	return t.TokenSet(text).Sorted()
}

// IsHan reports whether r is a CJK unified ideograph in U+4E00..U+9FA5.
func IsHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// AlnumTokens returns the distinct runs of [a-z0-9] of length two or more
// in the lower-cased text, in order of first appearance.
func AlnumTokens(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, w := range runs(strings.ToLower(text), isAlnum) {
		if len(w) < 2 {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// HanBlocks returns every maximal run of Han ideographs in text, in order.
func HanBlocks(text string) []string {
	return runs(text, IsHan)
}

// runs returns the maximal substrings of text whose runes all satisfy keep.
func runs(text string, keep func(rune) bool) []string {
	var out []string
	start := -1
	for i, r := range text {
		if keep(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, text[start:])
	}
	return out
}
