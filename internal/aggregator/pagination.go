package aggregator

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/provider"
)

// paginate slices the deduplicated list and fills the pagination block.
func paginate(merged []manga.Canonical, page, size int) manga.SearchResponse {
	total := len(merged)
	lastPage := (total + size - 1) / size
	if lastPage < 1 {
		lastPage = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	data := merged[start:end]

	return manga.SearchResponse{
		Data: data,
		Pagination: manga.Pagination{
			CurrentPage:     page,
			HasNextPage:     page*size < total,
			LastVisiblePage: lastPage,
			Items: manga.PaginationItem{
				Count:   len(data),
				Total:   total,
				PerPage: size,
			},
		},
	}
}

func emptyResponse(size int) manga.SearchResponse {
	return manga.SearchResponse{
		Data: []manga.Canonical{},
		Pagination: manga.Pagination{
			CurrentPage:     1,
			HasNextPage:     false,
			LastVisiblePage: 1,
			Items:           manga.PaginationItem{Count: 0, Total: 0, PerPage: size},
		},
	}
}

// searchKey builds a deterministic cache key from every parameter that
// affects the response. Logically identical requests must collide;
// logically different ones must not.
func searchKey(query string, opts SearchOptions, size int) string {
	providers := "all"
	if len(opts.Providers) > 0 {
		ids := append([]string(nil), opts.Providers...)
		sort.Strings(ids)
		providers = strings.Join(ids, ",")
	}
	lang := opts.Lang
	if lang == "" {
		lang = "all"
	}

	var b strings.Builder
	b.WriteString("search|q=")
	b.WriteString(strings.ToLower(query))
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(opts.Page))
	b.WriteString("|lang=")
	b.WriteString(lang)
	b.WriteString("|providers=")
	b.WriteString(providers)
	b.WriteString("|size=")
	b.WriteString(strconv.Itoa(size))
	return b.String()
}

func chaptersKey(gid manga.GlobalID, opts provider.ChapterOptions) string {
	lang := opts.Lang
	if lang == "" {
		lang = "all"
	}
	return "chapters|" + gid.String() + "|lang=" + lang + "|order=" + string(opts.Order)
}
