package store

import (
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

var bucketSessions = []byte("sessions")

var _ port.SessionStore = (*BoltStore)(nil)

func (s *BoltStore) PutSession(session *domain.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(session.ID), data)
	})
}

func (s *BoltStore) GetSession(id string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSessions).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return json.Unmarshal(data, &session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *BoltStore) ListSessions() ([]*domain.Session, error) {
	var sessions []*domain.Session
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessions).ForEach(func(k, v []byte) error {
			var session domain.Session
			if err := json.Unmarshal(v, &session); err != nil {
				return fmt.Errorf("corrupt session %s: %w", k, err)
			}
			sessions = append(sessions, &session)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *BoltStore) DeleteSession(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}
