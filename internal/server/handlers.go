package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mangamux/mangamux/internal/aggregator"
	"github.com/mangamux/mangamux/internal/manga"
	"github.com/mangamux/mangamux/internal/provider"
)

func (s *Server) search(c *gin.Context) {
	opts := aggregator.SearchOptions{
		Page:  parseInt(c.Query("page"), 1),
		Lang:  c.Query("lang"),
		Limit: parseInt(c.Query("limit"), 0),
	}

	// providers=mangadex,comick OR providers=mangadex&providers=comick
	providers := c.QueryArray("providers")
	if len(providers) == 1 && strings.Contains(providers[0], ",") {
		providers = strings.Split(providers[0], ",")
	}
	opts.Providers = providers

	resp := s.svc.SearchMulti(c.Request.Context(), c.Query("q"), opts)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) details(c *gin.Context) {
	entry, err := s.svc.Details(c.Request.Context(), c.Param("gid"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) chapters(c *gin.Context) {
	opts := provider.ChapterOptions{
		Lang:  c.Query("lang"),
		Order: provider.Order(c.DefaultQuery("order", string(provider.OrderAsc))),
	}
	chapters, err := s.svc.Chapters(c.Request.Context(), c.Param("gid"), opts)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if chapters == nil {
		chapters = []manga.Chapter{}
	}
	c.JSON(http.StatusOK, gin.H{"data": chapters})
}

func (s *Server) pages(c *gin.Context) {
	opts := provider.PageOptions{DataSaver: c.Query("data_saver") == "1"}
	pages, err := s.svc.Pages(c.Request.Context(), c.Param("gid"), opts)
	if err != nil {
		s.renderError(c, err)
		return
	}

	// Serve display URLs through the proxy; the client never talks to
	// provider CDNs directly.
	out := make([]manga.Page, len(pages))
	for i, p := range pages {
		out[i] = p
		out[i].URL = s.proxy.ToDisplayURL(p.URL, false)
		if p.DataSaverURL != "" {
			out[i].DataSaverURL = s.proxy.ToDisplayURL(p.DataSaverURL, true)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (s *Server) clearCache(c *gin.Context) {
	s.svc.ClearCaches()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) kvGet(c *gin.Context) {
	value, ok, err := s.kv.Get(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store read failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": value})
}

func (s *Server) kvSet(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if err := s.kv.Set(c.Param("key"), string(body)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store write failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) kvClear(c *gin.Context) {
	if err := s.kv.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store clear failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// renderError maps domain errors to HTTP statuses. Transient upstream
// failures surface as 502; structural errors keep their own codes.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, manga.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, manga.ErrProviderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, manga.ErrPageReadingUnsupported):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
