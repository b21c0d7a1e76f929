package port

import "kbrag/internal/domain"

// SessionStore persists conversations between CLI runs.
type SessionStore interface {
	PutSession(session *domain.Session) error

	GetSession(id string) (*domain.Session, error)

	// ListSessions returns sessions most recently updated first.
	ListSessions() ([]*domain.Session, error)

	DeleteSession(id string) error
}
