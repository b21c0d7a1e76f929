package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleDocs(n int) []Document {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, Document{
			ID:         fmt.Sprintf("d%02d", i),
			Name:       fmt.Sprintf("Manual-%02d.txt", i),
			UploadedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return docs
}

func TestDocumentFilter_ApplyPaging(t *testing.T) {
	docs := sampleDocs(25)

	page := DocumentFilter{Page: 3, PageSize: 10}.Apply(docs)

	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Documents, 5)
	// newest first, so the last page holds the oldest uploads
	assert.Equal(t, "d04", page.Documents[0].ID)
	assert.Equal(t, "d00", page.Documents[4].ID)
}

func TestDocumentFilter_Defaults(t *testing.T) {
	page := DocumentFilter{}.Apply(sampleDocs(12))

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Documents, 10)
	assert.Equal(t, "d11", page.Documents[0].ID)
}

func TestDocumentFilter_NameContains(t *testing.T) {
	docs := append(sampleDocs(3), Document{ID: "faq", Name: "FAQ 常见问题.docx"})

	page := DocumentFilter{NameContains: "faq"}.Apply(docs)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "faq", page.Documents[0].ID)

	page = DocumentFilter{NameContains: "常见"}.Apply(docs)
	assert.Equal(t, 1, page.Total)
}

func TestDocumentFilter_PastLastPage(t *testing.T) {
	page := DocumentFilter{Page: 9, PageSize: 10}.Apply(sampleDocs(3))

	assert.Empty(t, page.Documents)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.TotalPages)
}

func TestSortByUpload(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	docs := []Document{
		{ID: "b", UploadedAt: at},
		{ID: "c", UploadedAt: at.Add(-time.Hour)},
		{ID: "a", UploadedAt: at},
	}

	SortByUpload(docs)

	assert.Equal(t, []string{"c", "a", "b"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestContent(t *testing.T) {
	assert.True(t, TextContent("hi").HasText())
	assert.False(t, TextContent("").HasText())
	assert.False(t, MissingContent().HasText())
	assert.False(t, WrongTypeContent().HasText())
	assert.Equal(t, "wrong-type", WrongTypeContent().Kind.String())
}
