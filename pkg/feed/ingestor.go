package feed

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/content"
	"github.com/umputun/newspost/pkg/domain"
	"github.com/umputun/newspost/pkg/ranker"
	"github.com/umputun/newspost/pkg/store"
)

//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor

// Extractor extracts full content from article URLs
type Extractor interface {
	Extract(ctx context.Context, url string) (*content.Extracted, error)
}

// searchPoolSize is how many recent articles search and trending draw from
const searchPoolSize = 50

// Ingestor parses configured feeds into articles, consulting the article
// cache to avoid re-extracting unchanged entries.
type Ingestor struct {
	cache     *store.ArticleCache
	extractor Extractor
	parser    *gofeed.Parser
	sanitizer *bluemonday.Policy

	sources      []config.Source
	maxPerSource int
	minLength    int
	cacheExpiry  time.Duration
	concurrency  int

	now func() time.Time // replaced in tests
}

// Params holds ingestor dependencies and settings
type Params struct {
	Cache                *store.ArticleCache
	Extractor            Extractor
	Sources              []config.Source
	MaxArticlesPerSource int
	MinArticleLength     int
	CacheExpiry          time.Duration
	Concurrency          int
}

// NewIngestor creates an ingestor
func NewIngestor(p Params) *Ingestor {
	if p.MaxArticlesPerSource == 0 {
		p.MaxArticlesPerSource = 5
	}
	if p.Concurrency == 0 {
		p.Concurrency = 4
	}
	if p.CacheExpiry == 0 {
		p.CacheExpiry = time.Hour
	}
	return &Ingestor{
		cache:        p.Cache,
		extractor:    p.Extractor,
		parser:       gofeed.NewParser(),
		sanitizer:    bluemonday.StrictPolicy(),
		sources:      p.Sources,
		maxPerSource: p.MaxArticlesPerSource,
		minLength:    p.MinArticleLength,
		cacheExpiry:  p.CacheExpiry,
		concurrency:  p.Concurrency,
		now:          time.Now,
	}
}

// Ingest processes a single source, one pass per call. Cached entries with an
// unchanged published field are reused without extraction, everything else
// goes through the extractor and is kept only if long enough.
func (n *Ingestor) Ingest(ctx context.Context, src config.Source) ([]domain.Article, error) {
	if src.Type != "rss" {
		return nil, fmt.Errorf("unsupported source type %q for %s", src.Type, src.Name)
	}

	var parsed *gofeed.Feed
	retrier := repeater.NewBackoff(3, 500*time.Millisecond, repeater.WithMaxDelay(5*time.Second))
	err := retrier.Do(ctx, func() error {
		f, ferr := n.parser.ParseURLWithContext(src.URL, ctx)
		if ferr != nil {
			return ferr
		}
		parsed = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	entries := parsed.Items
	if len(entries) > n.maxPerSource { // truncation policy, not a per-article filter
		entries = entries[:n.maxPerSource]
	}

	var articles []domain.Article
	for _, entry := range entries {
		if entry.Link == "" {
			lgr.Printf("[DEBUG] skipping entry without link in %s", src.Name)
			continue
		}
		id := domain.Fingerprint(entry.Link)

		// reuse the cached article when the feed still reports the same
		// published value, this is the primary cost-saving device
		if cached, ok := n.cache.Get(id); ok && entry.Published != "" && entry.Published == cached.Published {
			articles = append(articles, cached)
			continue
		}

		published := entry.Published
		if published == "" {
			published = n.now().Format(time.RFC3339)
		}

		article := domain.Article{
			ID:         id,
			Title:      entry.Title,
			URL:        entry.Link,
			Source:     src.Name,
			Published:  published,
			Summary:    n.cleanSummary(entry.Description),
			Categories: entry.Categories,
		}

		extracted, err := n.extractor.Extract(ctx, entry.Link)
		if err != nil {
			lgr.Printf("[WARN] can't extract %s: %v", entry.Link, err)
			continue
		}
		article.Content = extracted.Content
		article.ImageURL = extracted.ImageURL
		article.Author = extracted.Author

		// length measured in runes, byte counts over-report non-ascii text
		if chars := utf8.RuneCountInString(article.Content); chars < n.minLength {
			lgr.Printf("[DEBUG] dropping short article %s (%d chars)", entry.Link, chars)
			continue
		}

		n.cache.Put(article)
		articles = append(articles, article)
	}

	return articles, nil
}

// Crawl purges expired cache entries, ingests all sources, filters by
// categories and returns up to maxArticles newest first. The cache is flushed
// at the end of every cycle. A failing source never fails the crawl.
func (n *Ingestor) Crawl(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
	if evicted := n.cache.PurgeExpired(n.now(), n.cacheExpiry); evicted > 0 {
		lgr.Printf("[DEBUG] evicted %d expired cache entries", evicted)
	}

	results := make([][]domain.Article, len(n.sources))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i, src := range n.sources {
		g.Go(func() error {
			articles, err := n.Ingest(gctx, src)
			if err != nil {
				lgr.Printf("[WARN] can't ingest %s: %v", src.Name, err)
				return nil // single source failure doesn't abort the cycle
			}
			mu.Lock()
			results[i] = articles
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Article
	for _, r := range results {
		all = append(all, r...)
	}

	if len(categories) > 0 {
		all = filterByCategories(all, categories)
	}

	sort.SliceStable(all, func(i, j int) bool {
		ti, iok := domain.ParsePublished(all[i].Published)
		tj, jok := domain.ParsePublished(all[j].Published)
		if iok && jok {
			return ti.After(tj)
		}
		return iok
	})

	if maxArticles > 0 && len(all) > maxArticles {
		all = all[:maxArticles]
	}

	if err := n.cache.Persist(); err != nil {
		lgr.Printf("[WARN] can't persist article cache: %v", err)
	}

	return all, nil
}

// Search crawls a recent pool and ranks it against the query
func (n *Ingestor) Search(ctx context.Context, query string, maxArticles int) ([]domain.Article, error) {
	pool, err := n.Crawl(ctx, nil, searchPoolSize)
	if err != nil {
		return nil, err
	}
	return ranker.Search(query, pool, maxArticles), nil
}

// Trending crawls a recent pool and surfaces trending topics from it
func (n *Ingestor) Trending(ctx context.Context, count int) ([]domain.TrendingTopic, error) {
	pool, err := n.Crawl(ctx, nil, searchPoolSize)
	if err != nil {
		return nil, err
	}
	return ranker.Trending(pool, count), nil
}

// cleanSummary strips markup from a feed summary, they regularly carry HTML
func (n *Ingestor) cleanSummary(s string) string {
	return strings.TrimSpace(html.UnescapeString(n.sanitizer.Sanitize(s)))
}

// filterByCategories keeps articles matching any of the requested categories,
// either as a declared category or as a substring of title/content
func filterByCategories(articles []domain.Article, categories []string) []domain.Article {
	var res []domain.Article
	for _, a := range articles {
		if matchesCategories(a, categories) {
			res = append(res, a)
		}
	}
	return res
}

func matchesCategories(a domain.Article, categories []string) bool {
	title := strings.ToLower(a.Title)
	body := strings.ToLower(a.Content)
	for _, cat := range categories {
		want := strings.ToLower(cat)
		for _, have := range a.Categories {
			if strings.ToLower(have) == want {
				return true
			}
		}
		if strings.Contains(title, want) || strings.Contains(body, want) {
			return true
		}
	}
	return false
}
