// Package server exposes the aggregation query surface over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mangamux/mangamux/internal/aggregator"
	"github.com/mangamux/mangamux/internal/imageproxy"
	"github.com/mangamux/mangamux/internal/provider"
	"github.com/mangamux/mangamux/internal/store"
)

// Server wires the orchestrator, the image proxy and the KV store into
// a gin router.
type Server struct {
	svc   *aggregator.Service
	proxy *imageproxy.Proxy
	kv    store.Store
}

// New creates a Server. The proxy allow-list is derived from the
// registered providers' image hosts.
func New(svc *aggregator.Service, kv store.Store) *Server {
	var hosts []string
	for _, cfg := range provider.Configs() {
		hosts = append(hosts, cfg.ImageHosts...)
	}
	return &Server{
		svc:   svc,
		proxy: imageproxy.New("/image", hosts),
		kv:    kv,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/image", gin.WrapH(s.proxy))

	api := router.Group("/api")
	{
		api.GET("/search", s.search)
		api.GET("/manga/:gid", s.details)
		api.GET("/manga/:gid/chapters", s.chapters)
		api.GET("/chapter/:gid/pages", s.pages)
		api.POST("/cache/clear", s.clearCache)

		api.GET("/kv/:key", s.kvGet)
		api.PUT("/kv/:key", s.kvSet)
		api.DELETE("/kv", s.kvClear)
	}
	return router
}

// Run starts the HTTP server on addr.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}
