package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTitleFrom(t *testing.T) {
	assert.Equal(t, "short question", TitleFrom("short question"))
	assert.Equal(t, "一二三四五六七八九十一二三四五六七八九十", TitleFrom("一二三四五六七八九十一二三四五六七八九十"))
	assert.Equal(t, "一二三四五六七八九十一二三四五六七八九十...", TitleFrom("一二三四五六七八九十一二三四五六七八九十多"))
}

func TestSessionAppend(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s := NewSession("s1", now)
	assert.Equal(t, DefaultTitle, s.Title)

	s.Append(Message{Role: RoleUser, Content: "How do I reset my password please?"}, now.Add(time.Minute))
	s.Append(Message{Role: RoleAssistant, Content: "Click the link."}, now.Add(time.Minute))
	s.Append(Message{Role: RoleUser, Content: "Thanks"}, now.Add(2*time.Minute))

	assert.Equal(t, "How do I reset my pa...", s.Title)
	assert.Len(t, s.Messages, 3)
	assert.Equal(t, now.Add(2*time.Minute), s.UpdatedAt)
}

func TestSessionRecent(t *testing.T) {
	s := NewSession("s1", time.Now())
	for i := 0; i < 12; i++ {
		s.Append(Message{Role: RoleUser, Content: string(rune('a' + i))}, time.Now())
	}

	recent := s.Recent(10)
	assert.Len(t, recent, 10)
	assert.Equal(t, "c", recent[0].Content)
	assert.Equal(t, "l", recent[9].Content)

	recent[0].Content = "changed"
	assert.Equal(t, "c", s.Messages[2].Content)

	assert.Len(t, s.Recent(50), 12)
	assert.Empty(t, s.Recent(0))
}
