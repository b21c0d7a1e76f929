package domain

import (
	"errors"
	"time"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNotFound             = errors.New("not found")
	ErrUnsupportedType      = errors.New("unsupported document type")
)

// UnknownSource names passages whose document has no display name.
const UnknownSource = "unknown document"

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusFailed     DocumentStatus = "failed"
)

// ContentKind tells whether a document's extracted content is usable text.
type ContentKind int

const (
	ContentMissing ContentKind = iota
	ContentText
	ContentWrongType
)

// Content is the extracted text of a document. Records read back from
// storage may hold no text at all or a non-textual value.
type Content struct {
	Kind ContentKind
	Text string
}

func TextContent(text string) Content {
	return Content{Kind: ContentText, Text: text}
}

func MissingContent() Content {
	return Content{Kind: ContentMissing}
}

func WrongTypeContent() Content {
	return Content{Kind: ContentWrongType}
}

// HasText reports whether the content is text with at least one character.
func (c Content) HasText() bool {
	return c.Kind == ContentText && c.Text != ""
}

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentWrongType:
		return "wrong-type"
	default:
		return "missing"
	}
}

type Document struct {
	ID         string
	Name       string
	Type       string
	Size       int64
	Status     DocumentStatus
	Content    Content
	UploadedAt time.Time
}

type Chunk struct {
	DocID   string
	DocName string
	Index   int
	Text    string
}

type ScoredPassage struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
}

// DocumentFilter selects a page of documents for listing.
type DocumentFilter struct {
	NameContains string
	Page         int
	PageSize     int
}

type DocumentPage struct {
	Documents  []Document
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Reply struct {
	Text          string          `json:"text"`
	KnowledgeUsed bool            `json:"knowledge_used"`
	Sources       []ScoredPassage `json:"sources,omitempty"`
}
