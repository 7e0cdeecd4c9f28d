package history

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-cms/arbor/internal/shared"
)

type memoryStore struct {
	entries []Entry
	calls   []int
	err     error
}

func (m *memoryStore) List(ctx context.Context, q Query, limit, offset int) (Result, error) {
	m.calls = append(m.calls, offset)
	if m.err != nil {
		return Result{}, m.err
	}
	var matched []Entry
	for _, e := range m.entries {
		if q.Matches(e) {
			matched = append(matched, e)
		}
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return Result{Entries: matched[offset:end], Total: total}, nil
}

func seedEntries(n int) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{ID: int64(i + 1), PageID: 1, Action: "wagtail.edit"}
	}
	return entries
}

func TestServicePage(t *testing.T) {
	store := &memoryStore{entries: seedEntries(45)}
	svc := NewService(store, 0)

	listing, err := svc.Page(context.Background(), ForPage(1), 2)
	require.NoError(t, err)
	assert.Len(t, listing.Entries, DefaultPageSize)
	assert.Equal(t, int64(21), listing.Entries[0].ID)
	assert.Equal(t, 3, listing.Pagination.TotalPages)
	assert.True(t, listing.Pagination.HasNext())
}

func TestServicePageClampsToLastPage(t *testing.T) {
	store := &memoryStore{entries: seedEntries(25)}
	svc := NewService(store, 20)

	listing, err := svc.Page(context.Background(), ForPage(1), 9)
	require.NoError(t, err)
	assert.Equal(t, 2, listing.Pagination.Page)
	assert.Len(t, listing.Entries, 5)
	assert.Equal(t, []int{160, 20}, store.calls)
}

func TestServicePageHugePageNumber(t *testing.T) {
	store := &memoryStore{entries: seedEntries(25)}
	svc := NewService(store, 20)

	page := shared.PageFromQuery(url.Values{shared.PageParam: {"922337203685477581"}})
	listing, err := svc.Page(context.Background(), ForPage(1), page)
	require.NoError(t, err)

	assert.Equal(t, 2, listing.Pagination.Page)
	assert.Len(t, listing.Entries, 5)
	require.NotEmpty(t, store.calls)
	for _, offset := range store.calls {
		assert.GreaterOrEqual(t, offset, 0)
	}

	listing, err = svc.Page(context.Background(), ForPage(1), int(^uint(0)>>1))
	require.NoError(t, err)
	assert.Equal(t, 2, listing.Pagination.Page)
	for _, offset := range store.calls {
		assert.GreaterOrEqual(t, offset, 0)
	}
}

func TestServicePageError(t *testing.T) {
	svc := NewService(&memoryStore{err: errors.New("db down")}, 20)
	_, err := svc.Page(context.Background(), ForPage(1), 1)
	assert.Error(t, err)
}

func TestBreadcrumbItemsEndWithHistory(t *testing.T) {
	items := BreadcrumbItems("/admin/pages/3/edit/", "About Us")
	require.Len(t, items, 2)
	assert.Equal(t, HistoryLabel, items[len(items)-1].Label)
	assert.Empty(t, items[len(items)-1].URL)
}
