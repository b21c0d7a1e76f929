package domain

import (
	"sort"
	"strings"
)

const defaultPageSize = 10

// Matches reports whether doc passes the name filter.
func (f DocumentFilter) Matches(doc Document) bool {
	if f.NameContains == "" {
		return true
	}
	return strings.Contains(strings.ToLower(doc.Name), strings.ToLower(f.NameContains))
}

// Apply filters docs, orders them newest first and cuts out the requested page.
func (f DocumentFilter) Apply(docs []Document) DocumentPage {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = defaultPageSize
	}

	matched := make([]Document, 0, len(docs))
	for _, d := range docs {
		if f.Matches(d) {
			matched = append(matched, d)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UploadedAt.After(matched[j].UploadedAt)
	})

	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return DocumentPage{
		Documents:  matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}
}

// SortByUpload orders documents oldest first, breaking ties by ID.
func SortByUpload(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.Before(docs[j].UploadedAt)
	})
}
