package port

import "kbrag/internal/domain"

// Scorer rates how relevant a passage is to a query. Zero means unrelated.
type Scorer interface {
	Score(query, passage string) float64
}

// Retriever ranks passages of a corpus snapshot against a query.
type Retriever interface {
	// Search returns at most k passages, highest score first.
	Search(query string, corpus []domain.Document, k int) ([]domain.ScoredPassage, error)
}
