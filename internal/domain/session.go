package domain

import (
	"time"
	"unicode/utf8"
)

const (
	DefaultTitle  = "New conversation"
	titleMaxChars = 20
)

// Session is one conversation with the assistant.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message. The first user message also names the session.
func (s *Session) Append(msg Message, now time.Time) {
	if msg.Role == RoleUser && s.userMessages() == 0 {
		s.Title = TitleFrom(msg.Content)
	}
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = now
}

// Recent returns a copy of the last n messages, oldest first.
func (s *Session) Recent(n int) []Message {
	if n <= 0 {
		return []Message{}
	}
	start := len(s.Messages) - n
	if start < 0 {
		start = 0
	}
	return append([]Message(nil), s.Messages[start:]...)
}

func (s *Session) userMessages() int {
	count := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			count++
		}
	}
	return count
}

// TitleFrom cuts text to its first 20 characters, marking the cut with "...".
func TitleFrom(text string) string {
	if utf8.RuneCountInString(text) <= titleMaxChars {
		return text
	}
	return string([]rune(text)[:titleMaxChars]) + "..."
}
