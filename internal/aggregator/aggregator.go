// Package aggregator fans queries out to the registered providers,
// reconciles the results through the merge engine, and serves paginated,
// cached responses.
package aggregator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/sync/semaphore"

	"github.com/mangamux/mangamux/internal/cache"
	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/merge"
	"github.com/mangamux/mangamux/internal/provider"
)

const (
	// DefaultPageSize is the fallback search page size.
	DefaultPageSize = 20
	// maxConcurrentProviders bounds the search fan-out.
	maxConcurrentProviders = 10
)

// SearchOptions narrow a multi-provider search.
type SearchOptions struct {
	Page      int
	Lang      string
	Providers []string
	Limit     int
}

// Service is the aggregation orchestrator. Construct it once and share
// it; all its state is safe for concurrent use.
type Service struct {
	registry *provider.Registry
	engine   *merge.Engine

	searchCache   *cache.LRU[manga.SearchResponse]
	detailsCache  *cache.LRU[manga.Canonical]
	chaptersCache *cache.LRU[[]manga.Chapter]
}

// New creates a Service around the given registry.
func New(registry *provider.Registry) *Service {
	return &Service{
		registry:      registry,
		engine:        merge.NewEngine(),
		searchCache:   cache.NewLRU[manga.SearchResponse](cache.SearchCapacity),
		detailsCache:  cache.NewLRU[manga.Canonical](cache.DetailsCapacity),
		chaptersCache: cache.NewLRU[[]manga.Chapter](cache.ChaptersCapacity),
	}
}

// SearchMulti runs the query against the selected providers, merges and
// paginates the results, and caches the final response. A single
// provider failing never fails the request.
func (s *Service) SearchMulti(ctx context.Context, query string, opts SearchOptions) manga.SearchResponse {
	query = strings.TrimSpace(query)
	if opts.Page < 1 {
		opts.Page = 1
	}
	size := opts.Limit
	if size <= 0 {
		size = viper.GetInt("search.pagesize")
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	// A blank query is an empty success, not an error, and costs no
	// network calls.
	if query == "" {
		return emptyResponse(size)
	}

	key := searchKey(query, opts, size)
	if resp, ok := s.searchCache.Get(key); ok {
		slog.Debug("search cache hit", "key", key)
		return resp
	}

	selected := s.selectProviders(opts)
	groups := s.fanOut(ctx, query, opts, selected)
	merged := s.engine.Merge(groups)

	resp := paginate(merged, opts.Page, size)
	s.searchCache.Set(key, resp)
	return resp
}

// Details resolves one canonical entry by its global id.
func (s *Service) Details(ctx context.Context, globalID string) (manga.Canonical, error) {
	gid, err := manga.ParseGlobalID(globalID)
	if err != nil {
		return manga.Canonical{}, err
	}
	p, ok := s.registry.Get(gid.Provider)
	if !ok {
		return manga.Canonical{}, manga.ErrProviderNotFound
	}

	if c, ok := s.detailsCache.Get(gid.String()); ok {
		return c, nil
	}

	rec, err := p.Details(ctx, gid.Raw)
	if err != nil {
		return manga.Canonical{}, err
	}

	canonical := s.engine.Merge([]merge.Group{{
		Provider: p.ID(),
		Priority: p.Priority(),
		Records:  []manga.ProviderRecord{rec},
	}})[0]

	s.detailsCache.Set(gid.String(), canonical)
	return canonical, nil
}

// Chapters lists a series' chapters from its owning provider.
func (s *Service) Chapters(ctx context.Context, globalSeriesID string, opts provider.ChapterOptions) ([]manga.Chapter, error) {
	gid, err := manga.ParseGlobalID(globalSeriesID)
	if err != nil {
		return nil, err
	}
	p, ok := s.registry.Get(gid.Provider)
	if !ok {
		return nil, manga.ErrProviderNotFound
	}
	if opts.Order == "" {
		opts.Order = provider.OrderAsc
	}

	key := chaptersKey(gid, opts)
	if chapters, ok := s.chaptersCache.Get(key); ok {
		return chapters, nil
	}

	chapters := p.Chapters(ctx, gid.Raw, opts)
	s.chaptersCache.Set(key, chapters)
	return chapters, nil
}

// Pages lists a chapter's page images. Page lists are not cached; the
// upstream URLs are short-lived for some providers.
func (s *Service) Pages(ctx context.Context, globalChapterID string, opts provider.PageOptions) ([]manga.Page, error) {
	gid, err := manga.ParseGlobalID(globalChapterID)
	if err != nil {
		return nil, err
	}
	p, ok := s.registry.Get(gid.Provider)
	if !ok {
		return nil, manga.ErrProviderNotFound
	}
	return p.Pages(ctx, gid.Raw, opts)
}

// ClearCaches empties all three result caches.
func (s *Service) ClearCaches() {
	s.searchCache.Clear()
	s.detailsCache.Clear()
	s.chaptersCache.Clear()
}

// Registry exposes the provider registry for collaborators (image proxy
// allow-list, server handlers).
func (s *Service) Registry() *provider.Registry {
	return s.registry
}

// selectProviders applies the explicit-ids / language / all selection
// chain. Unknown explicit ids are skipped, not errors.
func (s *Service) selectProviders(opts SearchOptions) []provider.Provider {
	if len(opts.Providers) > 0 {
		var out []provider.Provider
		for _, id := range opts.Providers {
			if p, ok := s.registry.Get(id); ok {
				out = append(out, p)
			}
		}
		return out
	}
	if opts.Lang != "" {
		return s.registry.ByLanguage(opts.Lang)
	}
	return s.registry.All()
}

// fanOut issues one search per provider concurrently and waits for every
// outcome. Failed providers contribute empty groups; a caller abandoning
// the request does not cancel in-flight calls, which are each bounded by
// the transport timeout.
func (s *Service) fanOut(ctx context.Context, query string, opts SearchOptions, selected []provider.Provider) []merge.Group {
	detached := context.WithoutCancel(ctx)
	sem := semaphore.NewWeighted(maxConcurrentProviders)

	groups := make([]merge.Group, len(selected))
	var wg sync.WaitGroup
	for i, p := range selected {
		groups[i] = merge.Group{Provider: p.ID(), Priority: p.Priority()}

		if err := sem.Acquire(detached, 1); err != nil {
			continue
		}
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			defer sem.Release(1)
			groups[i].Records = p.Search(detached, query, opts.Page, opts.Lang)
		}(i, p)
	}
	wg.Wait()
	return groups
}
