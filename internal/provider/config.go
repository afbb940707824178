package provider

import (
	"context"

	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/transport"
)

type (
	searchFunc   func(ctx context.Context, c *transport.Client, baseURL, query string, page int, lang string) ([]manga.ProviderRecord, error)
	detailsFunc  func(ctx context.Context, c *transport.Client, baseURL, id string) (manga.ProviderRecord, error)
	chaptersFunc func(ctx context.Context, c *transport.Client, baseURL, id, lang string) ([]manga.Chapter, error)
	pagesFunc    func(ctx context.Context, c *transport.Client, baseURL, chapterID string, dataSaver bool) ([]manga.Page, error)
)

// Config carries the fixed metadata and the HTTP strategy for one
// provider. The adapter supplies all shared behavior (validation,
// language gating, sorting, fault absorption).
type Config struct {
	ID            string
	Name          string
	Languages     []string
	Priority      int
	SupportsPages bool
	BaseURL       string

	// ImageHosts are the CDN hostnames this provider serves images
	// from, used by the image proxy allow-list.
	ImageHosts []string

	search   searchFunc
	details  detailsFunc
	chapters chaptersFunc
	pages    pagesFunc
}

// Configs is the static provider table. Priorities are the fixed
// deduplication ranking: higher wins ties during merge. The table is
// intentionally not configurable per deployment.
func Configs() []Config {
	return []Config{
		mangadexConfig(),
		comickConfig(),
		jikanConfig(),
	}
}
