package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

var (
	bucketDocs     = []byte("docs")
	bucketContents = []byte("contents")
	bucketMeta     = []byte("meta")
)

var _ port.DocumentStore = (*BoltStore)(nil)

// BoltStore keeps document records, their extracted text and chat
// sessions in a single bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketContents, bucketSessions, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type docMeta struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
	Status     string `json:"status"`
	UploadedAt int64  `json:"uploaded_at"`
}

// encodeContent returns nil for content that should not be stored.
func encodeContent(c domain.Content) ([]byte, error) {
	if c.Kind != domain.ContentText {
		return nil, nil
	}
	return json.Marshal(c.Text)
}

// decodeContent maps a stored value onto the content variant. Anything
// other than a JSON string is kept as WrongType so retrieval can skip it.
func decodeContent(data []byte) domain.Content {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return domain.MissingContent()
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return domain.WrongTypeContent()
	}
	return domain.TextContent(text)
}

func decodeDoc(id []byte, meta []byte, content []byte) (domain.Document, error) {
	var m docMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return domain.Document{}, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	return domain.Document{
		ID:         string(id),
		Name:       m.Name,
		Type:       m.Type,
		Size:       m.Size,
		Status:     domain.DocumentStatus(m.Status),
		Content:    decodeContent(content),
		UploadedAt: time.Unix(0, m.UploadedAt),
	}, nil
}

func putDoc(tx *bbolt.Tx, doc domain.Document) error {
	if err := putMeta(tx, doc); err != nil {
		return err
	}
	return putContent(tx, doc)
}

func putMeta(tx *bbolt.Tx, doc domain.Document) error {
	meta := docMeta{
		Name:       doc.Name,
		Type:       doc.Type,
		Size:       doc.Size,
		Status:     string(doc.Status),
		UploadedAt: doc.UploadedAt.UnixNano(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
}

func putContent(tx *bbolt.Tx, doc domain.Document) error {
	content, err := encodeContent(doc.Content)
	if err != nil {
		return err
	}
	if content == nil {
		return tx.Bucket(bucketContents).Delete([]byte(doc.ID))
	}
	return tx.Bucket(bucketContents).Put([]byte(doc.ID), content)
}

func (s *BoltStore) PutDoc(doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document id is required")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putDoc(tx, doc)
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		var err error
		doc, err = decodeDoc([]byte(id), data, tx.Bucket(bucketContents).Get([]byte(id)))
		return err
	})
	return doc, err
}

func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		if docs.Get([]byte(id)) == nil {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		if err := docs.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketContents).Delete([]byte(id))
	})
}

func (s *BoltStore) allDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		contents := tx.Bucket(bucketContents)
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			doc, err := decodeDoc(k, v, contents.Get(k))
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) ListDocs(filter domain.DocumentFilter) (domain.DocumentPage, error) {
	docs, err := s.allDocs()
	if err != nil {
		return domain.DocumentPage{}, err
	}
	return filter.Apply(docs), nil
}

func (s *BoltStore) update(id string, fn func(doc *domain.Document)) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		doc, err := decodeDoc([]byte(id), data, tx.Bucket(bucketContents).Get([]byte(id)))
		if err != nil {
			return err
		}
		before := doc.Content
		fn(&doc)
		// Raw values such as imported non-string content cannot be
		// re-encoded, so the contents bucket is only rewritten on change.
		if doc.Content == before {
			return putMeta(tx, doc)
		}
		return putDoc(tx, doc)
	})
}

func (s *BoltStore) SetContent(id string, text string) error {
	return s.update(id, func(doc *domain.Document) {
		doc.Content = domain.TextContent(text)
		doc.Status = domain.StatusCompleted
	})
}

func (s *BoltStore) SetStatus(id string, status domain.DocumentStatus) error {
	return s.update(id, func(doc *domain.Document) {
		doc.Status = status
	})
}

// CompletedCorpus returns completed documents with text, oldest upload first.
func (s *BoltStore) CompletedCorpus() ([]domain.Document, error) {
	docs, err := s.allDocs()
	if err != nil {
		return nil, err
	}

	corpus := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Status != domain.StatusCompleted {
			continue
		}
		// Non-string content is passed through for the retriever to report.
		if doc.Content.Kind == domain.ContentMissing || (doc.Content.Kind == domain.ContentText && doc.Content.Text == "") {
			continue
		}
		corpus = append(corpus, doc)
	}
	domain.SortByUpload(corpus)
	return corpus, nil
}

// PutRawContent stores an arbitrary JSON value as a document's content.
// Used to import records produced by other tools.
func (s *BoltStore) PutRawContent(id string, raw json.RawMessage) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketDocs).Get([]byte(id)) == nil {
			return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return tx.Bucket(bucketContents).Put([]byte(id), raw)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
