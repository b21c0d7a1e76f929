package usecase

import (
	"fmt"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// RetrieveUseCase runs knowledge retrieval over the current corpus.
type RetrieveUseCase struct {
	store     port.DocumentStore
	retriever port.Retriever
	topK      int
}

// NewRetrieveUseCase creates a new retrieve use case.
func NewRetrieveUseCase(store port.DocumentStore, retriever port.Retriever, topK int) *RetrieveUseCase {
	return &RetrieveUseCase{
		store:     store,
		retriever: retriever,
		topK:      topK,
	}
}

// Retrieve searches a fresh snapshot of the completed documents.
func (u *RetrieveUseCase) Retrieve(query string) ([]domain.ScoredPassage, error) {
	return u.RetrieveK(query, u.topK)
}

// RetrieveK is Retrieve with an explicit result count.
func (u *RetrieveUseCase) RetrieveK(query string, k int) ([]domain.ScoredPassage, error) {
	corpus, err := u.store.CompletedCorpus()
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	return u.retriever.Search(query, corpus, k)
}
