package memstore

import (
	"fmt"
	"sort"
	"sync"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

var (
	_ port.DocumentStore = (*MemoryStore)(nil)
	_ port.SessionStore  = (*MemoryStore)(nil)
)

// MemoryStore keeps documents in process memory. Used by tests and by
// one-shot commands that do not need the bolt database.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]domain.Document
	sessions map[string]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]domain.Document),
		sessions: make(map[string]domain.Session),
	}
}

func (s *MemoryStore) PutDoc(doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) ListDocs(filter domain.DocumentFilter) (domain.DocumentPage, error) {
	s.mu.RLock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	// Map order is random; settle it before the stable sort in Apply.
	domain.SortByUpload(docs)
	return filter.Apply(docs), nil
}

func (s *MemoryStore) update(id string, fn func(doc *domain.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	fn(&doc)
	s.docs[id] = doc
	return nil
}

func (s *MemoryStore) SetContent(id string, text string) error {
	return s.update(id, func(doc *domain.Document) {
		doc.Content = domain.TextContent(text)
		doc.Status = domain.StatusCompleted
	})
}

func (s *MemoryStore) SetStatus(id string, status domain.DocumentStatus) error {
	return s.update(id, func(doc *domain.Document) {
		doc.Status = status
	})
}

func (s *MemoryStore) CompletedCorpus() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	corpus := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		if doc.Status != domain.StatusCompleted {
			continue
		}
		if doc.Content.Kind == domain.ContentMissing || (doc.Content.Kind == domain.ContentText && doc.Content.Text == "") {
			continue
		}
		corpus = append(corpus, doc)
	}
	domain.SortByUpload(corpus)
	return corpus, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) PutSession(session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemoryStore) GetSession(id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	out := copySession(&session)
	return &out, nil
}

func (s *MemoryStore) ListSessions() ([]*domain.Session, error) {
	s.mu.RLock()
	sessions := make([]*domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out := copySession(&session)
		sessions = append(sessions, &out)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

func copySession(session *domain.Session) domain.Session {
	out := *session
	out.Messages = append([]domain.Message(nil), session.Messages...)
	return out
}
