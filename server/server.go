package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/newspost/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/news.go -pkg mocks -skip-ensure -fmt goimports . News
//go:generate moq -out mocks/publisher.go -pkg mocks -skip-ensure -fmt goimports . Publisher
//go:generate moq -out mocks/cache.go -pkg mocks -skip-ensure -fmt goimports . Cache

// Server is the operator HTTP server, exposing crawl, search, trending,
// posting and stats over a small JSON API.
type Server struct {
	config    ConfigProvider
	news      News
	publisher Publisher
	cache     Cache
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// News provides article discovery operations
type News interface {
	Crawl(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error)
	Search(ctx context.Context, query string, maxArticles int) ([]domain.Article, error)
	Trending(ctx context.Context, count int) ([]domain.TrendingTopic, error)
}

// Publisher executes posts and reports posting stats
type Publisher interface {
	Post(ctx context.Context, article domain.Article, platforms []string) map[string]domain.PostResult
	Stats(days int) domain.PostingStats
	Platforms() []string
}

// Cache resolves cached articles by id and lists the cache contents
type Cache interface {
	Get(id string) (domain.Article, bool)
	All() []domain.Article
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// New initializes a new server instance
func New(cfg ConfigProvider, news News, publisher Publisher, cache Cache, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		news:      news,
		publisher: publisher,
		cache:     cache,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	lgr.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newspost", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /articles", s.articlesHandler)
		r.HandleFunc("GET /search", s.searchHandler)
		r.HandleFunc("GET /trending", s.trendingHandler)
		r.HandleFunc("GET /stats", s.statsHandler)
		r.HandleFunc("POST /post", s.postHandler)
	})
}

// statusHandler returns server status with the registered platforms and the
// current cache size
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":          "ok",
		"version":         s.version,
		"time":            time.Now().UTC(),
		"platforms":       s.publisher.Platforms(),
		"cached_articles": len(s.cache.All()),
	}
	RenderJSON(w, r, http.StatusOK, status)
}

// articlesHandler runs a crawl and returns fresh articles, optionally
// filtered by comma-separated categories. With cached=1 it serves the cache
// contents newest first, no crawl.
func (s *Server) articlesHandler(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 10)

	if v := r.URL.Query().Get("cached"); v == "1" || v == "true" {
		articles := s.cache.All()
		if len(articles) > limit {
			articles = articles[:limit]
		}
		RenderJSON(w, r, http.StatusOK, map[string]any{"articles": articles, "count": len(articles)})
		return
	}

	categories := splitParam(r.URL.Query().Get("categories"))
	articles, err := s.news.Crawl(r.Context(), categories, limit)
	if err != nil {
		RenderError(w, r, fmt.Errorf("crawl failed: %w", err), http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, map[string]any{"articles": articles, "count": len(articles)})
}

// searchHandler ranks recent articles against the query
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		RenderError(w, r, errors.New("missing query parameter q"), http.StatusBadRequest)
		return
	}
	limit := intParam(r, "limit", 10)

	articles, err := s.news.Search(r.Context(), query, limit)
	if err != nil {
		RenderError(w, r, fmt.Errorf("search failed: %w", err), http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, map[string]any{"query": query, "articles": articles, "count": len(articles)})
}

// trendingHandler returns trending topics from recent articles
func (s *Server) trendingHandler(w http.ResponseWriter, r *http.Request) {
	count := intParam(r, "count", 5)

	topics, err := s.news.Trending(r.Context(), count)
	if err != nil {
		RenderError(w, r, fmt.Errorf("trending failed: %w", err), http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, map[string]any{"topics": topics, "count": len(topics)})
}

// statsHandler returns posting stats for the last N days
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", 7)
	RenderJSON(w, r, http.StatusOK, s.publisher.Stats(days))
}

// postRequest is the body of POST /api/v1/post
type postRequest struct {
	ArticleID string   `json:"article_id"`
	Platforms []string `json:"platforms,omitempty"`
}

// postHandler posts a cached article to the requested platforms
func (s *Server) postHandler(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if req.ArticleID == "" {
		RenderError(w, r, errors.New("article_id is required"), http.StatusBadRequest)
		return
	}

	article, ok := s.cache.Get(req.ArticleID)
	if !ok {
		RenderError(w, r, fmt.Errorf("article %s not found in cache", req.ArticleID), http.StatusNotFound)
		return
	}

	results := s.publisher.Post(r.Context(), article, req.Platforms)
	success := false
	for _, res := range results {
		if res.Success {
			success = true
			break
		}
	}
	RenderJSON(w, r, http.StatusOK, map[string]any{"article": article.Ref(), "results": results, "success": success})
}

// intParam reads an integer query parameter with a default
func intParam(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// splitParam splits a comma-separated query parameter, empty parts dropped
func splitParam(v string) []string {
	var res []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
