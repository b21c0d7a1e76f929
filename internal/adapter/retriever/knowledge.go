package retriever

import (
	"fmt"
	"sort"

	"kbrag/internal/adapter/chunker"
	"kbrag/internal/domain"
	"kbrag/internal/logger"
	"kbrag/internal/port"
)

const (
	DefaultPassageChars = 800
	DefaultTopK         = 3
)

var _ port.Retriever = (*KnowledgeRetriever)(nil)

// KnowledgeRetriever chunks and scores a corpus snapshot on every call.
// It keeps no state between calls and is safe for concurrent use.
type KnowledgeRetriever struct {
	chunker      port.Chunker
	scorer       port.Scorer
	passageChars int
}

func NewKnowledgeRetriever(chunker port.Chunker, scorer port.Scorer, passageChars int) (*KnowledgeRetriever, error) {
	if passageChars <= 0 {
		return nil, fmt.Errorf("%w: passage length must be positive, got %d", domain.ErrInvalidConfiguration, passageChars)
	}
	return &KnowledgeRetriever{
		chunker:      chunker,
		scorer:       scorer,
		passageChars: passageChars,
	}, nil
}

// NewDefaultKnowledgeRetriever uses 600-character chunks, the default
// lexical weights and 800-character passages.
func NewDefaultKnowledgeRetriever() *KnowledgeRetriever {
	chk, _ := chunker.NewParagraphChunker(chunker.DefaultChunkSize)
	r, _ := NewKnowledgeRetriever(chk, NewLexicalScorer(DefaultWeights()), DefaultPassageChars)
	return r
}

// Search returns up to k passages with a positive score, best first.
// Equal scores keep document order, then chunk order.
func (r *KnowledgeRetriever) Search(query string, corpus []domain.Document, k int) ([]domain.ScoredPassage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrInvalidConfiguration, k)
	}
	if len(corpus) == 0 {
		logger.Info("knowledge base has no completed documents")
		return []domain.ScoredPassage{}, nil
	}

	logger.Debug("searching %d documents for %q", len(corpus), query)

	results := make([]domain.ScoredPassage, 0)
	for _, doc := range corpus {
		var text string
		switch doc.Content.Kind {
		case domain.ContentText:
			text = doc.Content.Text
		default:
			logger.Warn("document %s (%s) has %s content, skipping", displayName(doc), doc.ID, doc.Content.Kind)
			continue
		}

		chunks, err := r.chunker.Chunk(doc, text)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk document %s: %w", doc.ID, err)
		}

		for _, chunk := range chunks {
			score := r.scorer.Score(query, chunk.Text)
			if score <= 0 {
				continue
			}
			results = append(results, domain.ScoredPassage{
				Content: truncateChars(chunk.Text, r.passageChars),
				Source:  displayName(doc),
				Score:   score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	logger.Debug("found %d relevant passages, keeping top %d", len(results), k)

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

func displayName(doc domain.Document) string {
	if doc.Name == "" {
		return domain.UnknownSource
	}
	return doc.Name
}

// truncateChars keeps the first n characters of s.
func truncateChars(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
