// Package provider implements the content-source adapters and their
// registry. Every source is the same concrete Adapter type driven by a
// per-provider Config; there is no inheritance between providers.
package provider

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/transport"
)

// Order selects chapter list ordering.
type Order string

const (
	// OrderAsc sorts chapters by ascending chapter number (default).
	OrderAsc Order = "asc"
	// OrderDesc sorts chapters by descending chapter number.
	OrderDesc Order = "desc"
)

// ChapterOptions filter and order a chapter listing.
type ChapterOptions struct {
	Lang  string
	Order Order
}

// PageOptions customize a page listing.
type PageOptions struct {
	DataSaver bool
}

// Provider is the capability contract every content source implements.
type Provider interface {
	ID() string
	Name() string
	Languages() []string
	Priority() int
	SupportsPages() bool

	// Search returns validated records for a query. A total failure of
	// the underlying call yields an empty list, never an error.
	Search(ctx context.Context, query string, page int, lang string) []manga.ProviderRecord

	// Details returns one record; failures here propagate to the caller.
	Details(ctx context.Context, id string) (manga.ProviderRecord, error)

	// Chapters returns the sorted chapter list. A total failure yields
	// an empty list, never an error.
	Chapters(ctx context.Context, seriesID string, opts ChapterOptions) []manga.Chapter

	// Pages returns the ordered page list for a chapter, or
	// manga.ErrPageReadingUnsupported without any network call when the
	// provider cannot serve pages.
	Pages(ctx context.Context, chapterID string, opts PageOptions) ([]manga.Page, error)
}

// Adapter implements Provider for one Config.
type Adapter struct {
	cfg      Config
	client   *transport.Client
	validate *validator.Validate
}

// NewAdapter builds an Adapter from a config and a shared transport client.
func NewAdapter(cfg Config, client *transport.Client) *Adapter {
	return &Adapter{
		cfg:      cfg,
		client:   client,
		validate: validator.New(),
	}
}

func (a *Adapter) ID() string          { return a.cfg.ID }
func (a *Adapter) Name() string        { return a.cfg.Name }
func (a *Adapter) Languages() []string { return a.cfg.Languages }
func (a *Adapter) Priority() int       { return a.cfg.Priority }
func (a *Adapter) SupportsPages() bool { return a.cfg.SupportsPages }

// supportsLang reports whether the provider claims the given language.
func (a *Adapter) supportsLang(lang string) bool {
	for _, l := range a.cfg.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func (a *Adapter) Search(ctx context.Context, query string, page int, lang string) []manga.ProviderRecord {
	if page < 1 {
		page = 1
	}
	// Only forward the language filter when the provider claims it.
	if lang != "" && !a.supportsLang(lang) {
		lang = ""
	}

	records, err := a.cfg.search(ctx, a.client, a.cfg.BaseURL, query, page, lang)
	if err != nil {
		slog.Error("provider search failed", "provider", a.cfg.ID, "query", query, "error", err)
		return nil
	}
	return a.validRecords(records)
}

func (a *Adapter) Details(ctx context.Context, id string) (manga.ProviderRecord, error) {
	rec, err := a.cfg.details(ctx, a.client, a.cfg.BaseURL, id)
	if err != nil {
		return manga.ProviderRecord{}, err
	}
	if err := a.validate.Struct(rec); err != nil {
		return manga.ProviderRecord{}, err
	}
	return rec, nil
}

func (a *Adapter) Chapters(ctx context.Context, seriesID string, opts ChapterOptions) []manga.Chapter {
	if opts.Lang != "" && !a.supportsLang(opts.Lang) {
		opts.Lang = ""
	}

	chapters, err := a.cfg.chapters(ctx, a.client, a.cfg.BaseURL, seriesID, opts.Lang)
	if err != nil {
		slog.Error("provider chapter fetch failed", "provider", a.cfg.ID, "series", seriesID, "error", err)
		return nil
	}

	gid := manga.GlobalID{Provider: a.cfg.ID, Raw: seriesID}
	for i := range chapters {
		chapters[i].Provider = a.cfg.ID
		chapters[i].SeriesID = gid.String()
		chapters[i].ID = manga.GlobalID{Provider: a.cfg.ID, Raw: chapters[i].ProviderID}.String()
	}

	desc := opts.Order == OrderDesc
	sort.SliceStable(chapters, func(i, j int) bool {
		ni := chapterNumber(chapters[i].Number)
		nj := chapterNumber(chapters[j].Number)
		if desc {
			return ni > nj
		}
		return ni < nj
	})
	return chapters
}

func (a *Adapter) Pages(ctx context.Context, chapterID string, opts PageOptions) ([]manga.Page, error) {
	if !a.cfg.SupportsPages {
		return nil, manga.ErrPageReadingUnsupported
	}

	pages, err := a.cfg.pages(ctx, a.client, a.cfg.BaseURL, chapterID, opts.DataSaver)
	if err != nil {
		return nil, err
	}

	// Mappers emit -1 when the provider omits an index; those default to
	// array position. After ordering, indexes are re-densified so the
	// list is always a gapless 0..n-1 sequence regardless of what the
	// provider reported.
	for i := range pages {
		if pages[i].Index < 0 {
			pages[i].Index = i
		}
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })
	for i := range pages {
		pages[i].Index = i
	}
	return pages, nil
}

// validRecords drops items failing schema validation with a warning;
// a bad item never aborts the batch.
func (a *Adapter) validRecords(records []manga.ProviderRecord) []manga.ProviderRecord {
	out := records[:0]
	for _, rec := range records {
		if err := a.validate.Struct(rec); err != nil {
			slog.Warn("dropping invalid provider record", "provider", a.cfg.ID, "id", rec.ID, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// chapterNumber parses a chapter number for sorting; unparsable values
// sort as 0.
func chapterNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}
