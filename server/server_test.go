package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newspost/pkg/domain"
	"github.com/umputun/newspost/server/mocks"
)

func testServer(news News, publisher Publisher, cache Cache) *Server {
	cfg := &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) { return ":8080", 30 * time.Second },
	}
	return New(cfg, news, publisher, cache, "test", false)
}

func TestServer_Status(t *testing.T) {
	publisher := &mocks.PublisherMock{
		PlatformsFunc: func() []string { return []string{"facebook", "twitter"} },
	}
	cache := &mocks.CacheMock{
		AllFunc: func() []domain.Article { return []domain.Article{{ID: "a1"}, {ID: "a2"}} },
	}
	srv := testServer(&mocks.NewsMock{}, publisher, cache)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "test", resp["version"])
	assert.Equal(t, []any{"facebook", "twitter"}, resp["platforms"])
	assert.Equal(t, float64(2), resp["cached_articles"])
}

func TestServer_Articles(t *testing.T) {
	news := &mocks.NewsMock{
		CrawlFunc: func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
			return []domain.Article{{ID: "a1", Title: "One"}, {ID: "a2", Title: "Two"}}, nil
		},
	}
	srv := testServer(news, &mocks.PublisherMock{}, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles?categories=tech,science&limit=5", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Articles []domain.Article `json:"articles"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)

	calls := news.CrawlCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"tech", "science"}, calls[0].Categories)
	assert.Equal(t, 5, calls[0].MaxArticles)
}

func TestServer_ArticlesCached(t *testing.T) {
	cache := &mocks.CacheMock{
		AllFunc: func() []domain.Article {
			return []domain.Article{{ID: "a1", Title: "Newest"}, {ID: "a2", Title: "Older"}, {ID: "a3", Title: "Oldest"}}
		},
	}
	news := &mocks.NewsMock{}
	srv := testServer(news, &mocks.PublisherMock{}, cache)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles?cached=1&limit=2", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Articles []domain.Article `json:"articles"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Newest", resp.Articles[0].Title)
	assert.Empty(t, news.CrawlCalls(), "cached listing never triggers a crawl")
}

func TestServer_ArticlesError(t *testing.T) {
	news := &mocks.NewsMock{
		CrawlFunc: func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
			return nil, errors.New("feeds unreachable")
		},
	}
	srv := testServer(news, &mocks.PublisherMock{}, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/articles", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "feeds unreachable")
}

func TestServer_Search(t *testing.T) {
	news := &mocks.NewsMock{
		SearchFunc: func(ctx context.Context, query string, maxArticles int) ([]domain.Article, error) {
			return []domain.Article{{ID: "a1", Title: "Match"}}, nil
		},
	}
	srv := testServer(news, &mocks.PublisherMock{}, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=climate&limit=3", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	calls := news.SearchCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "climate", calls[0].Query)
	assert.Equal(t, 3, calls[0].MaxArticles)
}

func TestServer_SearchMissingQuery(t *testing.T) {
	srv := testServer(&mocks.NewsMock{}, &mocks.PublisherMock{}, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing query parameter")
}

func TestServer_Trending(t *testing.T) {
	news := &mocks.NewsMock{
		TrendingFunc: func(ctx context.Context, count int) ([]domain.TrendingTopic, error) {
			return []domain.TrendingTopic{{Topic: "elections", Frequency: 12}}, nil
		},
	}
	srv := testServer(news, &mocks.PublisherMock{}, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trending?count=3", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "elections")
	require.Len(t, news.TrendingCalls(), 1)
	assert.Equal(t, 3, news.TrendingCalls()[0].Count)
}

func TestServer_Stats(t *testing.T) {
	publisher := &mocks.PublisherMock{
		StatsFunc: func(days int) domain.PostingStats {
			return domain.PostingStats{TotalPosts: 4, PlatformCounts: map[string]int{"twitter": 4}}
		},
	}
	srv := testServer(&mocks.NewsMock{}, publisher, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats?days=30", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.PostingStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.TotalPosts)
	require.Len(t, publisher.StatsCalls(), 1)
	assert.Equal(t, 30, publisher.StatsCalls()[0].Days)
}

func TestServer_Post(t *testing.T) {
	cache := &mocks.CacheMock{
		GetFunc: func(id string) (domain.Article, bool) {
			if id == "known" {
				return domain.Article{ID: "known", Title: "Cached Story"}, true
			}
			return domain.Article{}, false
		},
	}
	publisher := &mocks.PublisherMock{
		PostFunc: func(ctx context.Context, article domain.Article, platforms []string) map[string]domain.PostResult {
			return map[string]domain.PostResult{"twitter": {Success: true, PostID: "twitter_1"}}
		},
	}
	srv := testServer(&mocks.NewsMock{}, publisher, cache)

	body := strings.NewReader(`{"article_id": "known", "platforms": ["twitter"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/post", body)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool                         `json:"success"`
		Results map[string]domain.PostResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Results["twitter"].Success)

	calls := publisher.PostCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Cached Story", calls[0].Article.Title)
	assert.Equal(t, []string{"twitter"}, calls[0].Platforms)
}

func TestServer_PostBadRequests(t *testing.T) {
	cache := &mocks.CacheMock{
		GetFunc: func(id string) (domain.Article, bool) { return domain.Article{}, false },
	}
	srv := testServer(&mocks.NewsMock{}, &mocks.PublisherMock{}, cache)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", "{broken", http.StatusBadRequest},
		{"missing article id", `{}`, http.StatusBadRequest},
		{"unknown article", `{"article_id": "nope"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/post", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestServer_Ping(t *testing.T) {
	srv := testServer(&mocks.NewsMock{}, &mocks.PublisherMock{}, &mocks.CacheMock{})

	req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	cfg := &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) {
			return fmt.Sprintf("127.0.0.1:%d", port), 30 * time.Second
		},
	}
	srv := New(cfg, &mocks.NewsMock{}, &mocks.PublisherMock{}, &mocks.CacheMock{}, "1.0.0", false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// wait for the server to come up
	var resp *http.Response
	require.Eventually(t, func() bool {
		var derr error
		resp, derr = http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port)) //nolint:noctx // test probe
		return derr == nil
	}, 2*time.Second, 20*time.Millisecond)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestIntParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?n=7&bad=x&neg=-2", http.NoBody)

	assert.Equal(t, 7, intParam(req, "n", 10))
	assert.Equal(t, 10, intParam(req, "missing", 10))
	assert.Equal(t, 10, intParam(req, "bad", 10))
	assert.Equal(t, 10, intParam(req, "neg", 10))
}

func TestSplitParam(t *testing.T) {
	assert.Nil(t, splitParam(""))
	assert.Equal(t, []string{"a", "b"}, splitParam("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitParam(" a , ,b "))
}
