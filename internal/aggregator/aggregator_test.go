package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/provider"
)

// stubProvider is an in-memory Provider for orchestration tests. The
// call counters let tests assert on cache behavior.
type stubProvider struct {
	id       string
	priority int
	langs    []string
	pageable bool

	records    []manga.ProviderRecord
	detailsErr error
	chapters   []manga.Chapter
	pagesList  []manga.Page

	searchCalls   atomic.Int32
	detailsCalls  atomic.Int32
	chaptersCalls atomic.Int32
	pagesCalls    atomic.Int32
}

func (p *stubProvider) ID() string          { return p.id }
func (p *stubProvider) Name() string        { return p.id }
func (p *stubProvider) Languages() []string { return p.langs }
func (p *stubProvider) Priority() int       { return p.priority }
func (p *stubProvider) SupportsPages() bool { return p.pageable }

func (p *stubProvider) Search(ctx context.Context, query string, page int, lang string) []manga.ProviderRecord {
	p.searchCalls.Add(1)
	return p.records
}

func (p *stubProvider) Details(ctx context.Context, id string) (manga.ProviderRecord, error) {
	p.detailsCalls.Add(1)
	if p.detailsErr != nil {
		return manga.ProviderRecord{}, p.detailsErr
	}
	for _, rec := range p.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return manga.ProviderRecord{}, errors.New("not found")
}

func (p *stubProvider) Chapters(ctx context.Context, seriesID string, opts provider.ChapterOptions) []manga.Chapter {
	p.chaptersCalls.Add(1)
	return p.chapters
}

func (p *stubProvider) Pages(ctx context.Context, chapterID string, opts provider.PageOptions) ([]manga.Page, error) {
	p.pagesCalls.Add(1)
	if !p.pageable {
		return nil, manga.ErrPageReadingUnsupported
	}
	return p.pagesList, nil
}

func newTestService(providers ...provider.Provider) *Service {
	return New(provider.NewRegistry(providers...))
}

func TestSearchBlankQueryIsEmptySuccess(t *testing.T) {
	alpha := &stubProvider{id: "alpha", priority: 100}
	svc := newTestService(alpha)

	for _, q := range []string{"", "   ", "\t\n"} {
		resp := svc.SearchMulti(context.Background(), q, SearchOptions{Limit: 20})

		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data)
		assert.Equal(t, 1, resp.Pagination.CurrentPage)
		assert.False(t, resp.Pagination.HasNextPage)
		assert.Equal(t, 1, resp.Pagination.LastVisiblePage)
		assert.Equal(t, 0, resp.Pagination.Items.Count)
		assert.Equal(t, 0, resp.Pagination.Items.Total)
		assert.Equal(t, 20, resp.Pagination.Items.PerPage)
	}
	assert.Equal(t, int32(0), alpha.searchCalls.Load(), "blank queries must not reach providers")
}

func TestSearchMergesAcrossProviders(t *testing.T) {
	alpha := &stubProvider{
		id:       "alpha",
		priority: 100,
		records:  []manga.ProviderRecord{{ID: "a1", Title: "One Piece", Synopsis: "Pirates."}},
	}
	beta := &stubProvider{
		id:       "beta",
		priority: 90,
		records:  []manga.ProviderRecord{{ID: "b1", Title: "One Piece"}},
	}
	svc := newTestService(alpha, beta)

	resp := svc.SearchMulti(context.Background(), "one piece", SearchOptions{Limit: 20})
	require.Len(t, resp.Data, 1, "the same title from two providers merges into one entry")

	entry := resp.Data[0]
	assert.Equal(t, "alpha:a1", entry.ID)
	assert.Equal(t, "Pirates.", entry.Synopsis)
	require.Len(t, entry.Sources, 2)
	assert.Equal(t, 100, entry.Sources[0].Priority)
	assert.Equal(t, 90, entry.Sources[1].Priority)
}

func TestSearchProviderFailureIsIsolated(t *testing.T) {
	// A failed provider surfaces as an empty record list from Search.
	broken := &stubProvider{id: "broken", priority: 100}
	healthy := &stubProvider{
		id:       "healthy",
		priority: 90,
		records:  []manga.ProviderRecord{{ID: "h1", Title: "Berserk"}},
	}
	svc := newTestService(broken, healthy)

	resp := svc.SearchMulti(context.Background(), "berserk", SearchOptions{Limit: 20})
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "healthy:h1", resp.Data[0].ID)
}

func TestSearchCachesResponses(t *testing.T) {
	alpha := &stubProvider{
		id:       "alpha",
		priority: 100,
		records:  []manga.ProviderRecord{{ID: "a1", Title: "Berserk"}},
	}
	svc := newTestService(alpha)
	opts := SearchOptions{Limit: 20}

	first := svc.SearchMulti(context.Background(), "berserk", opts)
	second := svc.SearchMulti(context.Background(), "berserk", opts)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), alpha.searchCalls.Load(), "identical queries must hit the cache")

	// A different page is a different response and bypasses the entry.
	svc.SearchMulti(context.Background(), "berserk", SearchOptions{Page: 2, Limit: 20})
	assert.Equal(t, int32(2), alpha.searchCalls.Load())

	svc.ClearCaches()
	svc.SearchMulti(context.Background(), "berserk", opts)
	assert.Equal(t, int32(3), alpha.searchCalls.Load(), "clearing caches forces a refetch")
}

func TestSearchPagination(t *testing.T) {
	alpha := &stubProvider{
		id:       "alpha",
		priority: 100,
		records: []manga.ProviderRecord{
			{ID: "a1", Title: "Berserk"},
			{ID: "a2", Title: "Vagabond"},
			{ID: "a3", Title: "Vinland Saga"},
		},
	}
	svc := newTestService(alpha)

	page1 := svc.SearchMulti(context.Background(), "v", SearchOptions{Page: 1, Limit: 2})
	assert.Len(t, page1.Data, 2)
	assert.True(t, page1.Pagination.HasNextPage)
	assert.Equal(t, 2, page1.Pagination.LastVisiblePage)
	assert.Equal(t, 3, page1.Pagination.Items.Total)
	assert.Equal(t, 2, page1.Pagination.Items.PerPage)

	page2 := svc.SearchMulti(context.Background(), "v", SearchOptions{Page: 2, Limit: 2})
	assert.Len(t, page2.Data, 1)
	assert.False(t, page2.Pagination.HasNextPage)
	assert.Equal(t, 1, page2.Pagination.Items.Count)

	// Past the end: empty data, same totals.
	page9 := svc.SearchMulti(context.Background(), "v", SearchOptions{Page: 9, Limit: 2})
	assert.Empty(t, page9.Data)
	assert.False(t, page9.Pagination.HasNextPage)
	assert.Equal(t, 3, page9.Pagination.Items.Total)
}

func TestSearchProviderSelection(t *testing.T) {
	alpha := &stubProvider{id: "alpha", priority: 100, langs: []string{"en"}}
	beta := &stubProvider{id: "beta", priority: 90, langs: []string{"ja"}}
	svc := newTestService(alpha, beta)

	svc.SearchMulti(context.Background(), "q1", SearchOptions{Limit: 20, Providers: []string{"beta", "nonexistent"}})
	assert.Equal(t, int32(0), alpha.searchCalls.Load())
	assert.Equal(t, int32(1), beta.searchCalls.Load(), "unknown explicit ids are skipped, known ones run")

	svc.SearchMulti(context.Background(), "q2", SearchOptions{Limit: 20, Lang: "en"})
	assert.Equal(t, int32(1), alpha.searchCalls.Load())
	assert.Equal(t, int32(1), beta.searchCalls.Load(), "language filter excludes non-claiming providers")

	svc.SearchMulti(context.Background(), "q3", SearchOptions{Limit: 20})
	assert.Equal(t, int32(2), alpha.searchCalls.Load())
	assert.Equal(t, int32(2), beta.searchCalls.Load())
}

func TestDetails(t *testing.T) {
	alpha := &stubProvider{
		id:       "alpha",
		priority: 100,
		records:  []manga.ProviderRecord{{ID: "a1", Title: "Berserk", Year: 1989}},
	}
	svc := newTestService(alpha)
	ctx := context.Background()

	got, err := svc.Details(ctx, "alpha:a1")
	require.NoError(t, err)
	assert.Equal(t, "alpha:a1", got.ID)
	assert.Equal(t, "Berserk", got.Title)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "alpha", got.Sources[0].Provider)

	// The merged entry is cached under its global id.
	_, err = svc.Details(ctx, "alpha:a1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), alpha.detailsCalls.Load())
}

func TestDetailsErrors(t *testing.T) {
	alpha := &stubProvider{id: "alpha", priority: 100, detailsErr: errors.New("upstream 500")}
	svc := newTestService(alpha)
	ctx := context.Background()

	_, err := svc.Details(ctx, "no-colon-here")
	assert.ErrorIs(t, err, manga.ErrInvalidID)

	_, err = svc.Details(ctx, "unknownprovider:123")
	assert.ErrorIs(t, err, manga.ErrProviderNotFound)

	_, err = svc.Details(ctx, "alpha:a1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")
}

func TestChapters(t *testing.T) {
	alpha := &stubProvider{
		id:       "alpha",
		priority: 100,
		chapters: []manga.Chapter{{ID: "alpha:c1", Number: "1"}},
	}
	svc := newTestService(alpha)
	ctx := context.Background()

	got, err := svc.Chapters(ctx, "alpha:s1", provider.ChapterOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Cached per series, language, and order.
	_, err = svc.Chapters(ctx, "alpha:s1", provider.ChapterOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), alpha.chaptersCalls.Load())

	_, err = svc.Chapters(ctx, "alpha:s1", provider.ChapterOptions{Order: provider.OrderDesc})
	require.NoError(t, err)
	assert.Equal(t, int32(2), alpha.chaptersCalls.Load())

	_, err = svc.Chapters(ctx, "unknownprovider:s1", provider.ChapterOptions{})
	assert.ErrorIs(t, err, manga.ErrProviderNotFound)

	_, err = svc.Chapters(ctx, "malformed", provider.ChapterOptions{})
	assert.ErrorIs(t, err, manga.ErrInvalidID)
}

func TestPages(t *testing.T) {
	reader := &stubProvider{
		id:        "reader",
		priority:  100,
		pageable:  true,
		pagesList: []manga.Page{{Index: 0, URL: "https://cdn.example/p0.png"}},
	}
	meta := &stubProvider{id: "meta", priority: 90}
	svc := newTestService(reader, meta)
	ctx := context.Background()

	got, err := svc.Pages(ctx, "reader:ch1", provider.PageOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Page lists are never cached.
	_, err = svc.Pages(ctx, "reader:ch1", provider.PageOptions{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), reader.pagesCalls.Load())

	_, err = svc.Pages(ctx, "meta:ch1", provider.PageOptions{})
	assert.ErrorIs(t, err, manga.ErrPageReadingUnsupported)

	_, err = svc.Pages(ctx, "unknownprovider:ch1", provider.PageOptions{})
	assert.ErrorIs(t, err, manga.ErrProviderNotFound)
}
