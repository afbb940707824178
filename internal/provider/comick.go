package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/transport"
)

const (
	comickBaseURL  = "https://api.comick.fun"
	comickCoverURL = "https://meo.comick.pictures"
)

func comickConfig() Config {
	return Config{
		ID:            "comick",
		Name:          "Comick",
		Languages:     []string{"en", "es", "fr", "pt-br"},
		Priority:      90,
		SupportsPages: true,
		BaseURL:       comickBaseURL,
		ImageHosts:    []string{"meo.comick.pictures"},
		search:        comickSearch,
		details:       comickDetails,
		chapters:      comickChapters,
		pages:         comickPages,
	}
}

// Comick reports status as an enum; keep the provider's own vocabulary
// but spell it out.
var comickStatus = map[int]string{
	1: "ongoing",
	2: "completed",
	3: "cancelled",
	4: "hiatus",
}

type comickComic struct {
	HID      string  `json:"hid"`
	Title    string  `json:"title"`
	Desc     string  `json:"desc"`
	Status   int     `json:"status"`
	Rating   string  `json:"bayesian_rating"`
	Year     int     `json:"year"`
	LastChap float64 `json:"last_chapter"`
	Covers   []struct {
		B2Key string `json:"b2key"`
	} `json:"md_covers"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"md_comic_md_genres"`
}

func (c *comickComic) toRecord() manga.ProviderRecord {
	rec := manga.ProviderRecord{
		ID:       c.HID,
		Title:    c.Title,
		Synopsis: c.Desc,
		Status:   comickStatus[c.Status],
		Year:     c.Year,
		Chapters: int(c.LastChap),
		URL:      "https://comick.io/comic/" + c.HID,
	}
	if score, err := strconv.ParseFloat(c.Rating, 64); err == nil {
		rec.Score = score
	}
	if len(c.Covers) > 0 && c.Covers[0].B2Key != "" {
		rec.Cover = comickCoverURL + "/" + c.Covers[0].B2Key
	}
	for _, a := range c.Authors {
		if a.Name != "" {
			rec.Authors = append(rec.Authors, a.Name)
		}
	}
	for _, g := range c.Genres {
		if g.Name != "" {
			rec.Tags = append(rec.Tags, g.Name)
		}
	}
	return rec
}

// Comick's search endpoint takes no language parameter; lang only
// narrows the chapter feed.
func comickSearch(ctx context.Context, c *transport.Client, baseURL, query string, page int, lang string) ([]manga.ProviderRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", "20")

	var resp []comickComic
	if err := c.FetchJSON(ctx, baseURL+"/v1.0/search?"+params.Encode(), transport.Options{}, &resp); err != nil {
		return nil, err
	}

	records := make([]manga.ProviderRecord, 0, len(resp))
	for i := range resp {
		records = append(records, resp[i].toRecord())
	}
	return records, nil
}

func comickDetails(ctx context.Context, c *transport.Client, baseURL, id string) (manga.ProviderRecord, error) {
	var resp struct {
		Comic comickComic `json:"comic"`
	}
	endpoint := fmt.Sprintf("%s/comic/%s", baseURL, url.PathEscape(id))
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return manga.ProviderRecord{}, err
	}
	return resp.Comic.toRecord(), nil
}

func comickChapters(ctx context.Context, c *transport.Client, baseURL, id, lang string) ([]manga.Chapter, error) {
	params := url.Values{}
	params.Set("limit", "500")
	if lang != "" {
		params.Set("lang", lang)
	}

	var resp struct {
		Chapters []struct {
			HID       string `json:"hid"`
			Chap      string `json:"chap"`
			Title     string `json:"title"`
			CreatedAt string `json:"created_at"`
		} `json:"chapters"`
	}
	endpoint := fmt.Sprintf("%s/comic/%s/chapters?%s", baseURL, url.PathEscape(id), params.Encode())
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return nil, err
	}

	chapters := make([]manga.Chapter, 0, len(resp.Chapters))
	for _, ch := range resp.Chapters {
		chapters = append(chapters, manga.Chapter{
			ProviderID:  ch.HID,
			Number:      ch.Chap,
			Title:       ch.Title,
			PublishedAt: ch.CreatedAt,
		})
	}
	return chapters, nil
}

func comickPages(ctx context.Context, c *transport.Client, baseURL, chapterID string, dataSaver bool) ([]manga.Page, error) {
	var resp struct {
		Chapter struct {
			Images []struct {
				B2Key string `json:"b2key"`
			} `json:"md_images"`
		} `json:"chapter"`
	}
	endpoint := fmt.Sprintf("%s/chapter/%s", baseURL, url.PathEscape(chapterID))
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return nil, err
	}

	pages := make([]manga.Page, 0, len(resp.Chapter.Images))
	for i, img := range resp.Chapter.Images {
		pages = append(pages, manga.Page{
			Index: i,
			URL:   comickCoverURL + "/" + img.B2Key,
		})
	}
	return pages, nil
}
