package store

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newspost/pkg/domain"
)

// PostingHistory is an append-only file-backed log of posts per platform,
// used to enforce daily caps and minimum intervals. Records are never
// mutated after creation.
type PostingHistory struct {
	path string

	mu          sync.Mutex
	posts       []domain.PostRecord
	lastUpdated time.Time
}

// historyFile is the persisted representation. last_updated stays a string
// on the wire, legacy files carry zone-less timestamps.
type historyFile struct {
	Posts       []domain.PostRecord `json:"posts"`
	LastUpdated string              `json:"last_updated"`
}

// NewPostingHistory opens the history at path. A missing or unreadable file
// is not fatal, the history starts empty (fail-open). Files written by
// earlier versions of the tool with zone-less timestamps load unchanged,
// keeping daily caps and intervals intact across the upgrade.
func NewPostingHistory(path string) *PostingHistory {
	h := &PostingHistory{path: path}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read posting history %s, starting empty: %v", path, err)
		}
		return h
	}

	var hf historyFile
	if err := json.Unmarshal(data, &hf); err != nil {
		lgr.Printf("[WARN] can't parse posting history %s, starting empty: %v", path, err)
		return h
	}
	h.posts = hf.Posts
	if hf.LastUpdated != "" {
		ts, err := domain.ParseTimestamp(hf.LastUpdated)
		if err != nil {
			lgr.Printf("[WARN] bad last_updated in %s: %v", path, err)
		}
		h.lastUpdated = ts
	}
	return h
}

// Add appends a record to the history
func (h *PostingHistory) Add(rec domain.PostRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.posts = append(h.posts, rec)
	h.lastUpdated = rec.Timestamp
}

// CountOnDay returns how many posts went to the platform on the day of now
func (h *PostingHistory) CountOnDay(platform string, now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	day := now.Format("2006-01-02")
	count := 0
	for _, p := range h.posts {
		if p.Platform == platform && p.Timestamp.Format("2006-01-02") == day {
			count++
		}
	}
	return count
}

// LastPost returns the most recent record for the platform
func (h *PostingHistory) LastPost(platform string) (domain.PostRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.posts) - 1; i >= 0; i-- {
		if h.posts[i].Platform == platform {
			return h.posts[i], true
		}
	}
	return domain.PostRecord{}, false
}

// HasArticle reports whether the article was ever posted to any platform
func (h *PostingHistory) HasArticle(articleID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, p := range h.posts {
		if p.ArticleID == articleID {
			return true
		}
	}
	return false
}

// Since returns records at or after the cutoff, in append order
func (h *PostingHistory) Since(cutoff time.Time) []domain.PostRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var res []domain.PostRecord
	for _, p := range h.posts {
		if !p.Timestamp.Before(cutoff) {
			res = append(res, p)
		}
	}
	return res
}

// Len returns the number of records
func (h *PostingHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.posts)
}

// Persist writes the history to the backing file atomically
func (h *PostingHistory) Persist() error {
	h.mu.Lock()
	lu := h.lastUpdated
	if lu.IsZero() {
		lu = time.Now()
	}
	hf := historyFile{Posts: h.posts, LastUpdated: lu.Format(time.RFC3339)}
	if hf.Posts == nil {
		hf.Posts = []domain.PostRecord{}
	}
	data, err := json.MarshalIndent(hf, "", "  ")
	h.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal posting history: %w", err)
	}
	return writeFileAtomic(h.path, data)
}
