package domain

import (
	"crypto/md5" //nolint:gosec // md5 used as a url fingerprint, not for security
	"encoding/hex"
	"time"
)

// Article represents a single news article collected from a feed source.
// Published keeps the raw feed value; change detection compares it verbatim
// and expiry parses it best-effort.
type Article struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Source     string   `json:"source"`
	Published  string   `json:"published"`
	Summary    string   `json:"summary,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Content    string   `json:"content,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	Author     string   `json:"author,omitempty"`
}

// Ref returns a short reference to the article, used in trending topics,
// schedules and posting results.
func (a Article) Ref() ArticleRef {
	return ArticleRef{ID: a.ID, Title: a.Title, URL: a.URL, Source: a.Source}
}

// ArticleRef is a compact article reference
type ArticleRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// TrendingTopic is a word or short phrase ranked by frequency across a recent
// article corpus, with at least one supporting article attached.
type TrendingTopic struct {
	Topic           string       `json:"topic"`
	Frequency       int          `json:"frequency"`
	RelatedArticles []ArticleRef `json:"related_articles"`
}

// Fingerprint returns the stable article id for a canonical URL. Two fetches
// of the same URL always produce the same id.
func Fingerprint(url string) string {
	sum := md5.Sum([]byte(url)) //nolint:gosec // not used for security
	return hex.EncodeToString(sum[:])
}

// publishedLayouts covers timestamps seen in the wild: RFC3339 from atom
// feeds and the RFC1123 family from classic RSS.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePublished parses a raw published timestamp. Callers treat a failure as
// "unknown age" and fail open.
func ParsePublished(s string) (time.Time, bool) {
	for _, layout := range publishedLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
