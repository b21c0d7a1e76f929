package port

import "kbrag/internal/domain"

type DocumentStore interface {
	PutDoc(doc domain.Document) error

	GetDoc(id string) (domain.Document, error)

	DeleteDoc(id string) error

	ListDocs(filter domain.DocumentFilter) (domain.DocumentPage, error)

	// SetContent stores extracted text and marks the document completed.
	SetContent(id string, text string) error

	SetStatus(id string, status domain.DocumentStatus) error

	// CompletedCorpus returns every completed document with non-empty text.
	CompletedCorpus() ([]domain.Document, error)

	Close() error
}
