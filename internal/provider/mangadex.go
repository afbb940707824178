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
	mangadexBaseURL  = "https://api.mangadex.org"
	mangadexCoverURL = "https://uploads.mangadex.org/covers"
)

func mangadexConfig() Config {
	return Config{
		ID:            "mangadex",
		Name:          "MangaDex",
		Languages:     []string{"en", "ja", "es", "fr", "pt-br", "ru"},
		Priority:      100,
		SupportsPages: true,
		BaseURL:       mangadexBaseURL,
		// Page images come from per-request at-home nodes under
		// mangadex.network, so the proxy needs the suffix form.
		ImageHosts: []string{"uploads.mangadex.org", ".mangadex.network"},
		search:     mangadexSearch,
		details:    mangadexDetails,
		chapters:   mangadexChapters,
		pages:      mangadexPages,
	}
}

type mangadexManga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title       map[string]string   `json:"title"`
		AltTitles   []map[string]string `json:"altTitles"`
		Description map[string]string   `json:"description"`
		Status      string              `json:"status"`
		Year        int                 `json:"year"`
		LastChapter string              `json:"lastChapter"`
		LastVolume  string              `json:"lastVolume"`
		Tags        []struct {
			Attributes struct {
				Name map[string]string `json:"name"`
			} `json:"attributes"`
		} `json:"tags"`
	} `json:"attributes"`
	Relationships []struct {
		Type       string `json:"type"`
		Attributes struct {
			FileName string `json:"fileName"`
			Name     string `json:"name"`
		} `json:"attributes"`
	} `json:"relationships"`
}

func (m *mangadexManga) toRecord() manga.ProviderRecord {
	attrs := m.Attributes

	title := attrs.Title["en"]
	if title == "" {
		for _, t := range attrs.Title {
			title = t
			break
		}
	}

	var altTitles map[string]string
	for _, alt := range attrs.AltTitles {
		for lang, t := range alt {
			if t == "" || t == title {
				continue
			}
			if altTitles == nil {
				altTitles = make(map[string]string)
			}
			// Keep the first title seen per language.
			if _, seen := altTitles[lang]; !seen {
				altTitles[lang] = t
			}
		}
	}

	rec := manga.ProviderRecord{
		ID:        m.ID,
		Title:     title,
		AltTitles: altTitles,
		Synopsis:  attrs.Description["en"],
		Status:    attrs.Status,
		Year:      attrs.Year,
		Chapters:  intFromString(attrs.LastChapter),
		Volumes:   intFromString(attrs.LastVolume),
		URL:       "https://mangadex.org/title/" + m.ID,
	}

	for _, tag := range attrs.Tags {
		if name := tag.Attributes.Name["en"]; name != "" {
			rec.Tags = append(rec.Tags, name)
		}
	}
	for _, rel := range m.Relationships {
		switch rel.Type {
		case "cover_art":
			if rel.Attributes.FileName != "" {
				rec.Cover = fmt.Sprintf("%s/%s/%s", mangadexCoverURL, m.ID, rel.Attributes.FileName)
			}
		case "author":
			if rel.Attributes.Name != "" {
				rec.Authors = append(rec.Authors, rel.Attributes.Name)
			}
		}
	}
	return rec
}

func mangadexSearch(ctx context.Context, c *transport.Client, baseURL, query string, page int, lang string) ([]manga.ProviderRecord, error) {
	const perPage = 20

	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", strconv.Itoa(perPage))
	params.Set("offset", strconv.Itoa((page-1)*perPage))
	params.Add("includes[]", "cover_art")
	params.Add("includes[]", "author")
	if lang != "" {
		params.Add("availableTranslatedLanguage[]", lang)
	}

	var resp struct {
		Data []mangadexManga `json:"data"`
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

func mangadexDetails(ctx context.Context, c *transport.Client, baseURL, id string) (manga.ProviderRecord, error) {
	params := url.Values{}
	params.Add("includes[]", "cover_art")
	params.Add("includes[]", "author")

	var resp struct {
		Data mangadexManga `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/manga/%s?%s", baseURL, url.PathEscape(id), params.Encode())
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return manga.ProviderRecord{}, err
	}
	return resp.Data.toRecord(), nil
}

func mangadexChapters(ctx context.Context, c *transport.Client, baseURL, id, lang string) ([]manga.Chapter, error) {
	params := url.Values{}
	params.Set("limit", "500")
	params.Set("order[chapter]", "asc")
	if lang != "" {
		params.Add("translatedLanguage[]", lang)
	}

	var resp struct {
		Data []struct {
			ID         string `json:"id"`
			Attributes struct {
				Chapter     string `json:"chapter"`
				Title       string `json:"title"`
				Pages       int    `json:"pages"`
				PublishAt   string `json:"publishAt"`
				ExternalURL string `json:"externalUrl"`
			} `json:"attributes"`
		} `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/manga/%s/feed?%s", baseURL, url.PathEscape(id), params.Encode())
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return nil, err
	}

	chapters := make([]manga.Chapter, 0, len(resp.Data))
	for _, ch := range resp.Data {
		chapters = append(chapters, manga.Chapter{
			ProviderID:  ch.ID,
			Number:      ch.Attributes.Chapter,
			Title:       ch.Attributes.Title,
			Pages:       ch.Attributes.Pages,
			PublishedAt: ch.Attributes.PublishAt,
			ExternalURL: ch.Attributes.ExternalURL,
		})
	}
	return chapters, nil
}

func mangadexPages(ctx context.Context, c *transport.Client, baseURL, chapterID string, dataSaver bool) ([]manga.Page, error) {
	var resp struct {
		BaseURL string `json:"baseUrl"`
		Chapter struct {
			Hash      string   `json:"hash"`
			Data      []string `json:"data"`
			DataSaver []string `json:"dataSaver"`
		} `json:"chapter"`
	}
	endpoint := fmt.Sprintf("%s/at-home/server/%s", baseURL, url.PathEscape(chapterID))
	if err := c.FetchJSON(ctx, endpoint, transport.Options{}, &resp); err != nil {
		return nil, err
	}

	pages := make([]manga.Page, 0, len(resp.Chapter.Data))
	for i, file := range resp.Chapter.Data {
		p := manga.Page{
			Index: i,
			URL:   fmt.Sprintf("%s/data/%s/%s", resp.BaseURL, resp.Chapter.Hash, file),
		}
		if i < len(resp.Chapter.DataSaver) {
			p.DataSaverURL = fmt.Sprintf("%s/data-saver/%s/%s", resp.BaseURL, resp.Chapter.Hash, resp.Chapter.DataSaver[i])
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func intFromString(s string) int {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(n)
}
