package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/domain"
	"github.com/umputun/newspost/pkg/poster"
	"github.com/umputun/newspost/pkg/store"
)

//go:generate moq -out mocks/crawler.go -pkg mocks -skip-ensure -fmt goimports . Crawler
//go:generate moq -out mocks/formatter.go -pkg mocks -skip-ensure -fmt goimports . Formatter
//go:generate moq -out mocks/rewriter.go -pkg mocks -skip-ensure -fmt goimports . Rewriter

// goodTimeWindow is how close to a configured best time counts as good
const goodTimeWindow = 30 * time.Minute

// dueWindow is how far past the scheduled time a post still fires
const dueWindow = 5 * time.Minute

// Crawler provides fresh articles for posting
type Crawler interface {
	Crawl(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error)
}

// Formatter renders an article into platform post text
type Formatter interface {
	Format(ctx context.Context, article domain.Article, platform string, pcfg config.Platform) string
}

// Rewriter optionally rewrites article summaries before posting
type Rewriter interface {
	RewriteSummary(ctx context.Context, title, summary string) (string, error)
}

// Registry resolves platform names to posters
type Registry interface {
	Get(name string) (poster.Poster, bool)
	Names() []string
}

// Scheduler gates and executes posts across platforms. All rate-limiting
// state is derived from the posting history and config, there are no
// in-memory timers.
type Scheduler struct {
	crawler   Crawler
	formatter Formatter
	registry  Registry
	rewriter  Rewriter // optional
	history   *store.PostingHistory
	cache     *store.ArticleCache

	platforms map[string]config.Platform
	posting   config.Posting

	now func() time.Time // replaced in tests
}

// Params holds scheduler dependencies and settings
type Params struct {
	Crawler   Crawler
	Formatter Formatter
	Registry  Registry
	Rewriter  Rewriter
	History   *store.PostingHistory
	Cache     *store.ArticleCache
	Platforms map[string]config.Platform
	Posting   config.Posting
}

// NewScheduler creates a posting scheduler
func NewScheduler(p Params) *Scheduler {
	return &Scheduler{
		crawler:   p.Crawler,
		formatter: p.Formatter,
		registry:  p.Registry,
		rewriter:  p.Rewriter,
		history:   p.History,
		cache:     p.Cache,
		platforms: p.Platforms,
		posting:   p.Posting,
		now:       time.Now,
	}
}

// CanPostNow reports whether the platform can receive a post now, judged
// only by the daily cap and the minimum interval from the posting history.
func (s *Scheduler) CanPostNow(platform string) bool {
	now := s.now()

	if s.history.CountOnDay(platform, now) >= s.posting.MaxPostsPerDay {
		return false
	}

	if last, ok := s.history.LastPost(platform); ok {
		if now.Sub(last.Timestamp) < time.Duration(s.posting.MinIntervalMinutes)*time.Minute {
			return false
		}
	}
	return true
}

// IsGoodPostingTime reports whether the current time of day is within 30
// minutes of any configured best time. No configured best times means any
// time is good (fail-open).
func (s *Scheduler) IsGoodPostingTime() bool {
	if len(s.posting.BestTimes) == 0 {
		return true
	}

	now := s.now()
	current := now.Hour()*60 + now.Minute()
	for _, bt := range s.posting.BestTimes {
		minutes, err := config.ParseBestTime(bt)
		if err != nil {
			lgr.Printf("[WARN] ignoring invalid best time %q: %v", bt, err)
			continue
		}
		diff := current - minutes
		if diff < 0 {
			diff = -diff
		}
		if time.Duration(diff)*time.Minute <= goodTimeWindow {
			return true
		}
	}
	return false
}

// Post posts the article to the requested platforms, all enabled ones when
// none given. Gating failures are returned as per-platform skip reasons, a
// failing platform never aborts the others. A successful post is recorded
// and the history persisted immediately.
//
// Direct posting deliberately does not dedup by article id, only rate
// limiting applies here. The trending driver is the one consulting history
// for repeats.
func (s *Scheduler) Post(ctx context.Context, article domain.Article, platforms []string) map[string]domain.PostResult {
	if len(platforms) == 0 {
		platforms = s.enabledPlatforms()
	}

	rewritten := false
	results := map[string]domain.PostResult{}

	for _, platform := range platforms {
		pcfg, ok := s.platforms[platform]
		if !ok || !pcfg.Enabled {
			results[platform] = domain.PostResult{Error: fmt.Sprintf("platform %s is not enabled", platform)}
			continue
		}
		if !s.CanPostNow(platform) {
			results[platform] = domain.PostResult{Error: fmt.Sprintf("posting limit reached for %s", platform)}
			continue
		}
		if !s.IsGoodPostingTime() {
			results[platform] = domain.PostResult{Error: "not an optimal posting time"}
			continue
		}

		client, ok := s.registry.Get(platform)
		if !ok {
			results[platform] = domain.PostResult{Error: fmt.Sprintf("unsupported platform: %s", platform)}
			continue
		}

		// one rewrite per article, shared across platforms
		if s.rewriter != nil && !rewritten && article.Summary != "" {
			rewritten = true
			if summary, err := s.rewriter.RewriteSummary(ctx, article.Title, article.Summary); err == nil {
				article.Summary = summary
			} else {
				lgr.Printf("[WARN] can't rewrite summary for %q: %v", article.Title, err)
			}
		}

		text := s.formatter.Format(ctx, article, platform, pcfg)

		imageURL := ""
		if pcfg.IncludeImage || pcfg.RequireImage {
			imageURL = article.ImageURL
		}

		res, err := client.Post(ctx, text, imageURL)
		if err != nil {
			results[platform] = domain.PostResult{Error: err.Error()}
			continue
		}
		results[platform] = res

		if res.Success {
			s.history.Add(domain.PostRecord{
				ArticleID: article.ID,
				Platform:  platform,
				PostID:    res.PostID,
				URL:       res.URL,
				Timestamp: s.now(),
			})
			// persist right away, a successful post is never lost
			if err := s.history.Persist(); err != nil {
				lgr.Printf("[ERROR] can't persist posting history: %v", err)
			}
		}
	}
	return results
}

// PostTrending crawls fresh articles and posts up to count of them, skipping
// anything already present in the posting history for any platform.
func (s *Scheduler) PostTrending(ctx context.Context, categories []string, count int, platforms []string) ([]domain.PostOutcome, error) {
	if count <= 0 {
		count = 1
	}
	// fetch more than needed in case some are already posted or fail
	articles, err := s.crawler.Crawl(ctx, categories, count*2)
	if err != nil {
		return nil, fmt.Errorf("crawl for posting: %w", err)
	}

	var outcomes []domain.PostOutcome
	posted := 0
	for _, article := range articles {
		if s.history.HasArticle(article.ID) {
			continue
		}

		results := s.Post(ctx, article, platforms)
		success := false
		for _, r := range results {
			if r.Success {
				success = true
				break
			}
		}

		outcomes = append(outcomes, domain.PostOutcome{Article: article.Ref(), Results: results, Success: success})
		if success {
			posted++
		}
		if posted >= count {
			break
		}
	}
	return outcomes, nil
}

// BuildDailySchedule pairs not-yet-posted candidates with best-time slots.
// Slots already in the past move to the next calendar day. The schedule holds
// at most min(candidates, postsPerDay, len(bestTimes)) entries.
func (s *Scheduler) BuildDailySchedule(ctx context.Context, categories []string, postsPerDay int, platforms []string) (*domain.DailySchedule, error) {
	if postsPerDay <= 0 {
		postsPerDay = s.posting.MaxPostsPerDay
	}

	bestTimes := s.posting.BestTimes
	if len(bestTimes) == 0 {
		// evenly spaced times over the day
		bestTimes = make([]string, 0, postsPerDay)
		for i := 0; i < postsPerDay; i++ {
			bestTimes = append(bestTimes, fmt.Sprintf("%02d:00", i*24/postsPerDay))
		}
	}

	articles, err := s.crawler.Crawl(ctx, categories, postsPerDay*2)
	if err != nil {
		return nil, fmt.Errorf("crawl for schedule: %w", err)
	}

	var candidates []domain.Article
	for _, a := range articles {
		if !s.history.HasArticle(a.ID) {
			candidates = append(candidates, a)
		}
	}

	if len(platforms) == 0 {
		platforms = s.enabledPlatforms()
	}

	now := s.now()
	schedule := &domain.DailySchedule{Date: now.Format("2006-01-02")}

	n := min(len(candidates), postsPerDay, len(bestTimes))
	for i := 0; i < n; i++ {
		minutes, err := config.ParseBestTime(bestTimes[i%len(bestTimes)])
		if err != nil {
			lgr.Printf("[WARN] ignoring invalid best time %q: %v", bestTimes[i%len(bestTimes)], err)
			continue
		}
		slot := time.Date(now.Year(), now.Month(), now.Day(), minutes/60, minutes%60, 0, 0, now.Location())
		if slot.Before(now) {
			slot = slot.AddDate(0, 0, 1) // calendar-correct, handles month/year rollover
		}
		schedule.Posts = append(schedule.Posts, domain.ScheduledPost{
			Article:       candidates[i].Ref(),
			ScheduledTime: slot,
			Platforms:     platforms,
		})
	}
	return schedule, nil
}

// Run executes the continuous posting loop, building a schedule and firing
// due posts every interval until the context is canceled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	lgr.Printf("[INFO] posting scheduler started, checking every %v", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// run immediately on start
	s.postDue(ctx)

	for {
		select {
		case <-ctx.Done():
			lgr.Printf("[INFO] posting scheduler stopped")
			return nil
		case <-ticker.C:
			s.postDue(ctx)
		}
	}
}

// postDue builds the current schedule and posts everything inside the due
// window. Failures are logged, never fatal to the loop.
func (s *Scheduler) postDue(ctx context.Context) {
	schedule, err := s.BuildDailySchedule(ctx, nil, 0, nil)
	if err != nil {
		lgr.Printf("[ERROR] can't build daily schedule: %v", err)
		return
	}

	now := s.now()
	for _, post := range schedule.Posts {
		wait := post.ScheduledTime.Sub(now)
		if wait < 0 || wait > dueWindow {
			continue
		}

		article, ok := s.cache.Get(post.Article.ID)
		if !ok {
			lgr.Printf("[WARN] scheduled article %s not in cache, skipping", post.Article.ID)
			continue
		}

		lgr.Printf("[INFO] posting scheduled article %q", article.Title)
		results := s.Post(ctx, article, post.Platforms)
		for platform, res := range results {
			if res.Success {
				lgr.Printf("[INFO] posted %q to %s: %s", article.Title, platform, res.URL)
				continue
			}
			lgr.Printf("[WARN] skipped %s for %q: %s", platform, article.Title, res.Error)
		}
	}
}

// Stats aggregates posting history over the last days, joining article data
// from the cache when still present.
func (s *Scheduler) Stats(days int) domain.PostingStats {
	if days <= 0 {
		days = 7
	}
	cutoff := s.now().AddDate(0, 0, -days)
	recent := s.history.Since(cutoff)

	stats := domain.PostingStats{
		TotalPosts:     len(recent),
		PlatformCounts: map[string]int{},
		DayCounts:      map[string]int{},
	}
	for _, p := range recent {
		stats.PlatformCounts[p.Platform]++
		stats.DayCounts[p.Timestamp.Format("2006-01-02")]++
	}

	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Timestamp.After(recent[j].Timestamp) })
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, p := range recent {
		rp := domain.RecentPost{Platform: p.Platform, Timestamp: p.Timestamp, URL: p.URL}
		if article, ok := s.cache.Get(p.ArticleID); ok {
			ref := article.Ref()
			rp.Article = &ref
		} else {
			rp.ArticleID = p.ArticleID
		}
		stats.RecentPosts = append(stats.RecentPosts, rp)
	}
	return stats
}

// Platforms returns the platform names with a registered client, sorted
func (s *Scheduler) Platforms() []string {
	return s.registry.Names()
}

// enabledPlatforms returns enabled platform names, sorted for determinism
func (s *Scheduler) enabledPlatforms() []string {
	var names []string
	for name, cfg := range s.platforms {
		if cfg.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
