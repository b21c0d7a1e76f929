package retriever

import (
	"strings"

	"kbrag/internal/adapter/analyzer"
	"kbrag/internal/port"
)

var _ port.Scorer = (*LexicalScorer)(nil)

// Weights are the contributions of each lexical signal to a passage score.
type Weights struct {
	ExactQuery  float64 // flat bonus when the passage contains the whole query
	HanPhrase   float64 // per character of a query ideograph run found verbatim
	HanBigram   float64 // per occurrence of a query ideograph bigram
	HanUnigram  float64 // per occurrence of a query ideograph
	AlnumPerHit float64 // per occurrence of a query alphanumeric token
}

func DefaultWeights() Weights {
	return Weights{
		ExactQuery:  50,
		HanPhrase:   3,
		HanBigram:   2,
		HanUnigram:  0.5,
		AlnumPerHit: 1,
	}
}

// LexicalScorer scores passages by case-insensitive overlap with a query.
type LexicalScorer struct {
	weights Weights
}

func NewLexicalScorer(weights Weights) *LexicalScorer {
	return &LexicalScorer{weights: weights}
}

// Score returns the additive relevance of passage to query. It is zero when
// either is empty or nothing in the query occurs in the passage.
func (s *LexicalScorer) Score(query, passage string) float64 {
	if query == "" || passage == "" {
		return 0
	}

	queryLower := strings.ToLower(query)
	textLower := strings.ToLower(passage)
	w := s.weights

	score := 0.0

	if strings.Contains(textLower, queryLower) {
		score += w.ExactQuery
	}

	for _, block := range analyzer.HanBlocks(query) {
		runes := []rune(block)

		if strings.Contains(textLower, block) {
			score += w.HanPhrase * float64(len(runes))
		}

		for i := 0; i+1 < len(runes); i++ {
			score += w.HanBigram * float64(countOccurrences(textLower, string(runes[i:i+2])))
		}

		for _, r := range runes {
			score += w.HanUnigram * float64(countOccurrences(textLower, string(r)))
		}
	}

	for _, token := range analyzer.AlnumTokens(query) {
		score += w.AlnumPerHit * float64(countOccurrences(textLower, token))
	}

	return score
}

// countOccurrences counts non-overlapping matches of sub scanning left to right.
func countOccurrences(text, sub string) int {
	if sub == "" {
		return 0
	}
	return strings.Count(text, sub)
}
