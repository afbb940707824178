package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/transport"
)

const jikanBaseURL = "https://api.jikan.moe/v4"

// Jikan (MyAnimeList) is metadata-only: it enriches search results and
// details but hosts neither chapters nor pages.
func jikanConfig() Config {
	return Config{
		ID:            "jikan",
		Name:          "MyAnimeList",
		Languages:     []string{"en"},
		Priority:      80,
		SupportsPages: false,
		BaseURL:       jikanBaseURL,
		ImageHosts:    []string{"cdn.myanimelist.net"},
		search:        jikanSearch,
		details:       jikanDetails,
		chapters:      jikanChapters,
		pages:         jikanPages,
	}
}

type jikanManga struct {
	MalID  int    `json:"mal_id"`
	Title  string `json:"title"`
	Images struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Status    string  `json:"status"`
	Score     float64 `json:"score"`
	Synopsis  string  `json:"synopsis"`
	Chapters  int     `json:"chapters"`
	Volumes   int     `json:"volumes"`
	URL       string  `json:"url"`
	Published struct {
		Prop struct {
			From struct {
				Year int `json:"year"`
			} `json:"from"`
		} `json:"prop"`
	} `json:"published"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func (j *jikanManga) toRecord() manga.ProviderRecord {
	rec := manga.ProviderRecord{
		ID:       strconv.Itoa(j.MalID),
		Title:    j.Title,
		Cover:    j.Images.JPG.ImageURL,
		Status:   j.Status,
		Score:    j.Score,
		Synopsis: j.Synopsis,
		Chapters: j.Chapters,
		Volumes:  j.Volumes,
		Year:     j.Published.Prop.From.Year,
		URL:      j.URL,
	}
	for _, a := range j.Authors {
		if a.Name != "" {
			rec.Authors = append(rec.Authors, a.Name)
		}
	}
	for _, g := range j.Genres {
		if g.Name != "" {
			rec.Tags = append(rec.Tags, g.Name)
		}
	}
	return rec
}

func jikanSearch(ctx context.Context, c *transport.Client, baseURL, query string, page int, lang string) ([]manga.ProviderRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", "20")

	var resp struct {
		Data []jikanManga `json:"data"`
	}
	if err := c.FetchJSON(ctx, baseURL+"/manga?"+params.Encode(), transport.Options{}, &resp); err != nil {
		return nil, err
	}

	records := make([]manga.ProviderRecord, 0, len(resp.Data))
	for i := range resp.Data {
		records = append(records, resp.Data[i].toRecord())
	}
	return records, nil
}

func jikanDetails(ctx context.Context, c *transport.Client, baseURL, id string) (manga.ProviderRecord, error) {
	var resp struct {
		Data jikanManga `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/manga/%s/full", baseURL, url.PathEscape(id))
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return manga.ProviderRecord{}, err
	}
	return resp.Data.toRecord(), nil
}

// jikanChapters always returns an empty list: MyAnimeList tracks titles,
// not chapter feeds. Readers follow the canonical entry to a provider
// that does host chapters.
func jikanChapters(ctx context.Context, c *transport.Client, baseURL, id, lang string) ([]manga.Chapter, error) {
	return nil, nil
}

// jikanPages is never reached; SupportsPages is false so the adapter
// fails before calling it.
func jikanPages(ctx context.Context, c *transport.Client, baseURL, chapterID string, dataSaver bool) ([]manga.Page, error) {
	return nil, manga.ErrPageReadingUnsupported
}
