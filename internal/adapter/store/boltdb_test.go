package store

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbrag/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "documents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testDoc(id, name string, status domain.DocumentStatus, content domain.Content, at time.Time) domain.Document {
	return domain.Document{
		ID:         id,
		Name:       name,
		Type:       "Text File",
		Size:       42,
		Status:     status,
		Content:    content,
		UploadedAt: at,
	}
}

func TestBoltStore_PutGet(t *testing.T) {
	st := newTestStore(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	doc := testDoc("d1", "FAQ.txt", domain.StatusCompleted, domain.TextContent("忘记密码请点击登录页"), at)
	require.NoError(t, st.PutDoc(doc))

	got, err := st.GetDoc("d1")
	require.NoError(t, err)
	assert.Equal(t, "FAQ.txt", got.Name)
	assert.Equal(t, "Text File", got.Type)
	assert.Equal(t, int64(42), got.Size)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, domain.TextContent("忘记密码请点击登录页"), got.Content)
	assert.True(t, got.UploadedAt.Equal(at))
}

func TestBoltStore_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetDoc("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, st.DeleteDoc("missing"), domain.ErrNotFound)
	assert.ErrorIs(t, st.SetContent("missing", "x"), domain.ErrNotFound)
	assert.ErrorIs(t, st.SetStatus("missing", domain.StatusFailed), domain.ErrNotFound)
}

func TestBoltStore_Lifecycle(t *testing.T) {
	st := newTestStore(t)
	doc := testDoc("d1", "manual.docx", domain.StatusProcessing, domain.MissingContent(), time.Now())
	require.NoError(t, st.PutDoc(doc))

	corpus, err := st.CompletedCorpus()
	require.NoError(t, err)
	assert.Empty(t, corpus)

	require.NoError(t, st.SetContent("d1", "Reset steps"))
	got, err := st.GetDoc("d1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	corpus, err = st.CompletedCorpus()
	require.NoError(t, err)
	require.Len(t, corpus, 1)
	assert.Equal(t, "Reset steps", corpus[0].Content.Text)

	require.NoError(t, st.SetStatus("d1", domain.StatusFailed))
	corpus, err = st.CompletedCorpus()
	require.NoError(t, err)
	assert.Empty(t, corpus)

	require.NoError(t, st.DeleteDoc("d1"))
	_, err = st.GetDoc("d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBoltStore_CompletedCorpusFiltersAndOrders(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	docs := []domain.Document{
		testDoc("late", "late", domain.StatusCompleted, domain.TextContent("b"), base.Add(2*time.Hour)),
		testDoc("early", "early", domain.StatusCompleted, domain.TextContent("a"), base),
		testDoc("blank", "blank", domain.StatusCompleted, domain.TextContent(""), base),
		testDoc("pending", "pending", domain.StatusProcessing, domain.TextContent("c"), base),
		testDoc("none", "none", domain.StatusCompleted, domain.MissingContent(), base),
	}
	for _, d := range docs {
		require.NoError(t, st.PutDoc(d))
	}

	corpus, err := st.CompletedCorpus()
	require.NoError(t, err)
	require.Len(t, corpus, 2)
	assert.Equal(t, "early", corpus[0].ID)
	assert.Equal(t, "late", corpus[1].ID)
}

func TestBoltStore_RawContentVariants(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()

	require.NoError(t, st.PutDoc(testDoc("num", "num", domain.StatusCompleted, domain.MissingContent(), now)))
	require.NoError(t, st.PutRawContent("num", json.RawMessage(`12345`)))
	require.NoError(t, st.PutDoc(testDoc("nul", "nul", domain.StatusCompleted, domain.MissingContent(), now)))
	require.NoError(t, st.PutRawContent("nul", json.RawMessage(`null`)))

	got, err := st.GetDoc("num")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentWrongType, got.Content.Kind)

	got, err = st.GetDoc("nul")
	require.NoError(t, err)
	assert.Equal(t, domain.ContentMissing, got.Content.Kind)

	corpus, err := st.CompletedCorpus()
	require.NoError(t, err)
	require.Len(t, corpus, 1)
	assert.Equal(t, "num", corpus[0].ID)

	assert.ErrorIs(t, st.PutRawContent("ghost", json.RawMessage(`"x"`)), domain.ErrNotFound)
}

func TestBoltStore_SetStatusKeepsRawContent(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.PutDoc(testDoc("num", "num", domain.StatusCompleted, domain.MissingContent(), time.Now())))
	require.NoError(t, st.PutRawContent("num", json.RawMessage(`12345`)))

	require.NoError(t, st.SetStatus("num", domain.StatusFailed))
	require.NoError(t, st.SetStatus("num", domain.StatusCompleted))

	got, err := st.GetDoc("num")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, domain.ContentWrongType, got.Content.Kind)

	require.NoError(t, st.SetContent("num", "退款流程"))
	got, err = st.GetDoc("num")
	require.NoError(t, err)
	assert.Equal(t, domain.TextContent("退款流程"), got.Content)
}

func TestBoltStore_ListDocs(t *testing.T) {
	st := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"FAQ.txt", "billing.md", "faq-2.docx"}
	for i, name := range names {
		require.NoError(t, st.PutDoc(testDoc(name, name, domain.StatusCompleted, domain.TextContent("x"), base.Add(time.Duration(i)*time.Minute))))
	}

	page, err := st.ListDocs(domain.DocumentFilter{NameContains: "faq"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, "faq-2.docx", page.Documents[0].Name)

	page, err = st.ListDocs(domain.DocumentFilter{PageSize: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, "FAQ.txt", page.Documents[0].Name)
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "documents.db")

	st, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, st.PutDoc(testDoc("d1", "FAQ", domain.StatusCompleted, domain.TextContent("hello"), time.Now())))
	require.NoError(t, st.Close())

	st, err = NewBoltStore(path)
	require.NoError(t, err)
	defer st.Close()

	got, err := st.GetDoc("d1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content.Text)
}

func TestBoltStore_PutDocRequiresID(t *testing.T) {
	st := newTestStore(t)
	assert.Error(t, st.PutDoc(domain.Document{Name: "anonymous"}))
}
