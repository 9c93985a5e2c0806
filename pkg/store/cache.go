package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	jsoniter "github.com/json-iterator/go"

	"github.com/umputun/newspost/pkg/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ArticleCache is a file-backed store of fetched articles keyed by
// fingerprint. Single writer, safe for concurrent use.
type ArticleCache struct {
	path string

	mu          sync.Mutex
	articles    map[string]domain.Article
	lastUpdated time.Time
}

// cacheFile is the persisted representation. last_updated stays a string on
// the wire, legacy files carry zone-less timestamps.
type cacheFile struct {
	Articles    map[string]domain.Article `json:"articles"`
	LastUpdated string                    `json:"last_updated"`
}

// NewArticleCache opens the cache at path. A missing or unreadable file is
// not fatal, the cache starts empty (fail-open). Files written by earlier
// versions of the tool with zone-less timestamps load unchanged.
func NewArticleCache(path string) *ArticleCache {
	c := &ArticleCache{path: path, articles: map[string]domain.Article{}}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read article cache %s, starting empty: %v", path, err)
		}
		return c
	}

	var cf cacheFile
	if err := json.Unmarshal(data, &cf); err != nil {
		lgr.Printf("[WARN] can't parse article cache %s, starting empty: %v", path, err)
		return c
	}
	if cf.Articles != nil {
		c.articles = cf.Articles
	}
	if cf.LastUpdated != "" {
		ts, err := domain.ParseTimestamp(cf.LastUpdated)
		if err != nil {
			lgr.Printf("[WARN] bad last_updated in %s: %v", path, err)
		}
		c.lastUpdated = ts
	}
	return c
}

// Get returns a cached article by id
func (c *ArticleCache) Get(id string) (domain.Article, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.articles[id]
	return a, ok
}

// Put upserts an article. Re-ingestion with an unchanged published timestamp
// is a no-op, the existing record wins. Returns true if the cache changed.
func (c *ArticleCache) Put(article domain.Article) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.articles[article.ID]; ok && existing.Published == article.Published {
		return false
	}
	c.articles[article.ID] = article
	return true
}

// PurgeExpired removes entries older than expiry, judged by the published
// timestamp. Entries with unparseable timestamps are retained (fail-open).
// Rewrites the backing file, returns the number of evicted entries.
func (c *ArticleCache) PurgeExpired(now time.Time, expiry time.Duration) int {
	c.mu.Lock()
	evicted := 0
	for id, a := range c.articles {
		ts, ok := domain.ParsePublished(a.Published)
		if !ok {
			continue // can't tell the age, keep it for now
		}
		if now.Sub(ts) > expiry {
			delete(c.articles, id)
			evicted++
		}
	}
	c.lastUpdated = now
	c.mu.Unlock()

	if err := c.Persist(); err != nil {
		lgr.Printf("[WARN] can't persist article cache after purge: %v", err)
	}
	return evicted
}

// All returns all cached articles, newest first by published timestamp with
// unparseable dates last.
func (c *ArticleCache) All() []domain.Article {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := make([]domain.Article, 0, len(c.articles))
	for _, a := range c.articles {
		res = append(res, a)
	}
	sort.Slice(res, func(i, j int) bool {
		ti, iok := domain.ParsePublished(res[i].Published)
		tj, jok := domain.ParsePublished(res[j].Published)
		switch {
		case iok && jok && !ti.Equal(tj):
			return ti.After(tj)
		case iok != jok:
			return iok
		default:
			return res[i].ID < res[j].ID
		}
	})
	return res
}

// Len returns the number of cached articles
func (c *ArticleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.articles)
}

// Persist writes the cache to the backing file atomically
func (c *ArticleCache) Persist() error {
	c.mu.Lock()
	lu := c.lastUpdated
	if lu.IsZero() {
		lu = time.Now()
	}
	cf := cacheFile{Articles: c.articles, LastUpdated: lu.Format(time.RFC3339)}
	data, err := json.MarshalIndent(cf, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal article cache: %w", err)
	}
	return writeFileAtomic(c.path, data)
}

// writeFileAtomic writes via a temp file in the same directory and renames it
// over the target, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
