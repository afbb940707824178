// Package manga contains the provider-neutral domain types shared by the
// aggregation pipeline.
package manga

// Source records one provider's contribution to a canonical entry.
type Source struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Priority   int    `json:"priority"`
}

// Canonical is the merged representation of a title across providers.
// Representative fields (Title, Cover, Synopsis, Score, Chapters, Volumes,
// Provider/ProviderID) always come from the highest-priority source seen
// so far; Sources stays sorted by descending priority.
type Canonical struct {
	ID             string            `json:"id"`
	Provider       string            `json:"provider"`
	ProviderID     string            `json:"provider_id"`
	Title          string            `json:"title"`
	AltTitles      map[string]string `json:"alt_titles,omitempty"`
	Cover          string            `json:"cover,omitempty"`
	Status         string            `json:"status,omitempty"`
	Score          float64           `json:"score,omitempty"`
	Synopsis       string            `json:"synopsis,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	Authors        []string          `json:"authors,omitempty"`
	Year           int               `json:"year,omitempty"`
	Chapters       int               `json:"chapters,omitempty"`
	Volumes        int               `json:"volumes,omitempty"`
	Sources        []Source          `json:"sources"`
}

// ProviderRecord is a single search/details result already translated into
// the neutral vocabulary but not yet folded into a Canonical. Validation
// tags describe the minimum shape a provider response item must satisfy.
type ProviderRecord struct {
	ID        string            `json:"id" validate:"required"`
	Title     string            `json:"title" validate:"required"`
	AltTitles map[string]string `json:"alt_titles,omitempty"`
	Cover     string            `json:"cover,omitempty" validate:"omitempty,url"`
	Synopsis  string            `json:"synopsis,omitempty"`
	Status    string            `json:"status,omitempty"`
	Score     float64           `json:"score,omitempty" validate:"gte=0,lte=10"`
	Tags      []string          `json:"tags,omitempty"`
	Authors   []string          `json:"authors,omitempty"`
	Year      int               `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Chapters  int               `json:"chapters,omitempty"`
	Volumes   int               `json:"volumes,omitempty"`
	URL       string            `json:"url,omitempty"`
}

// Chapter is one chapter of a series from a single provider. Chapters are
// never deduplicated across providers.
type Chapter struct {
	ID          string `json:"id"`
	SeriesID    string `json:"series_id"`
	Number      string `json:"number"`
	Title       string `json:"title,omitempty"`
	Pages       int    `json:"pages,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Provider    string `json:"provider"`
	ProviderID  string `json:"provider_id"`
}

// Page is one page image of a chapter. Index is dense and zero-based.
type Page struct {
	Index        int    `json:"index"`
	URL          string `json:"url"`
	DataSaverURL string `json:"data_saver_url,omitempty"`
}

// Pagination describes one page of a search response.
type Pagination struct {
	CurrentPage     int            `json:"current_page"`
	HasNextPage     bool           `json:"has_next_page"`
	LastVisiblePage int            `json:"last_visible_page"`
	Items           PaginationItem `json:"items"`
}

// PaginationItem carries the item counts of a search response page.
type PaginationItem struct {
	Count   int `json:"count"`
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
}

// SearchResponse is the envelope returned by the orchestrator's search.
type SearchResponse struct {
	Data       []Canonical `json:"data"`
	Pagination Pagination  `json:"pagination"`
}
