package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/domain"
	"github.com/umputun/newspost/pkg/poster"
	"github.com/umputun/newspost/pkg/scheduler/mocks"
	"github.com/umputun/newspost/pkg/store"
)

// fakePoster records posts and can be told to fail
type fakePoster struct {
	posts []string
	fail  error
}

func (f *fakePoster) Post(_ context.Context, text, _ string) (domain.PostResult, error) {
	if f.fail != nil {
		return domain.PostResult{}, f.fail
	}
	f.posts = append(f.posts, text)
	id := len(f.posts)
	return domain.PostResult{Success: true, PostID: fmt.Sprintf("fake_%d", id), URL: fmt.Sprintf("https://fake/%d", id)}, nil
}

type testEnv struct {
	sched     *Scheduler
	history   *store.PostingHistory
	cache     *store.ArticleCache
	registry  *poster.Registry
	poster    *fakePoster
	crawler   *mocks.CrawlerMock
	formatter *mocks.FormatterMock
}

func newTestEnv(t *testing.T, posting config.Posting) *testEnv {
	t.Helper()

	dir := t.TempDir()
	history := store.NewPostingHistory(filepath.Join(dir, "history.json"))
	cache := store.NewArticleCache(filepath.Join(dir, "cache.json"))

	fake := &fakePoster{}
	registry := poster.NewRegistry()
	registry.Register("twitter", fake)

	crawler := &mocks.CrawlerMock{
		CrawlFunc: func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
			return nil, nil
		},
	}
	formatter := &mocks.FormatterMock{
		FormatFunc: func(ctx context.Context, article domain.Article, platform string, pcfg config.Platform) string {
			return "formatted: " + article.Title
		},
	}

	sched := NewScheduler(Params{
		Crawler:   crawler,
		Formatter: formatter,
		Registry:  registry,
		History:   history,
		Cache:     cache,
		Platforms: map[string]config.Platform{"twitter": {Enabled: true, MaxLength: 280}},
		Posting:   posting,
	})

	return &testEnv{sched: sched, history: history, cache: cache, registry: registry,
		poster: fake, crawler: crawler, formatter: formatter}
}

func TestScheduler_CanPostNow_DailyCap(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 2, MinIntervalMinutes: 0})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	assert.True(t, env.sched.CanPostNow("twitter"))

	env.history.Add(domain.PostRecord{ArticleID: "a1", Platform: "twitter", Timestamp: now.Add(-3 * time.Hour)})
	assert.True(t, env.sched.CanPostNow("twitter"))

	env.history.Add(domain.PostRecord{ArticleID: "a2", Platform: "twitter", Timestamp: now.Add(-2 * time.Hour)})
	assert.False(t, env.sched.CanPostNow("twitter"), "daily cap reached")

	// yesterday's posts don't count
	env.sched.now = func() time.Time { return now.AddDate(0, 0, 1) }
	assert.True(t, env.sched.CanPostNow("twitter"))
}

func TestScheduler_CanPostNow_MinInterval(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10, MinIntervalMinutes: 30})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	env.history.Add(domain.PostRecord{ArticleID: "a1", Platform: "twitter", Timestamp: now.Add(-10 * time.Minute)})
	assert.False(t, env.sched.CanPostNow("twitter"), "too soon after the last post")

	env.sched.now = func() time.Time { return now.Add(25 * time.Minute) }
	assert.True(t, env.sched.CanPostNow("twitter"))
}

func TestScheduler_IsGoodPostingTime(t *testing.T) {
	tests := []struct {
		name      string
		bestTimes []string
		now       string
		want      bool
	}{
		{"no best times is always good", nil, "03:17", true},
		{"within window before", []string{"12:00"}, "11:35", true},
		{"within window after", []string{"12:00"}, "12:30", true},
		{"outside window", []string{"12:00"}, "13:00", false},
		{"second best time matches", []string{"8:00", "17:00"}, "17:15", true},
		{"invalid entry skipped", []string{"bogus", "12:00"}, "12:10", true},
		{"only invalid entries", []string{"bogus"}, "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10, BestTimes: tt.bestTimes})
			var hh, mm int
			_, err := fmt.Sscanf(tt.now, "%d:%d", &hh, &mm)
			require.NoError(t, err)
			env.sched.now = func() time.Time { return time.Date(2025, 6, 1, hh, mm, 0, 0, time.UTC) }
			assert.Equal(t, tt.want, env.sched.IsGoodPostingTime())
		})
	}
}

func TestScheduler_Post(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	article := domain.Article{ID: "a1", Title: "Big News", URL: "https://example.com/1"}

	results := env.sched.Post(context.Background(), article, nil)
	require.Contains(t, results, "twitter")
	assert.True(t, results["twitter"].Success)
	require.Len(t, env.poster.posts, 1)
	assert.Equal(t, "formatted: Big News", env.poster.posts[0])

	// success recorded and persisted
	assert.True(t, env.history.HasArticle("a1"))
	last, ok := env.history.LastPost("twitter")
	require.True(t, ok)
	assert.Equal(t, "a1", last.ArticleID)
}

func TestScheduler_PostSkipReasons(t *testing.T) {
	t.Run("platform not enabled", func(t *testing.T) {
		env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
		results := env.sched.Post(context.Background(), domain.Article{ID: "a1"}, []string{"facebook"})
		assert.Contains(t, results["facebook"].Error, "not enabled")
	})

	t.Run("rate limited", func(t *testing.T) {
		env := newTestEnv(t, config.Posting{MaxPostsPerDay: 1})
		now := time.Now()
		env.history.Add(domain.PostRecord{ArticleID: "prev", Platform: "twitter", Timestamp: now})
		results := env.sched.Post(context.Background(), domain.Article{ID: "a1"}, nil)
		assert.Contains(t, results["twitter"].Error, "posting limit reached")
		assert.Empty(t, env.poster.posts)
	})

	t.Run("bad posting time", func(t *testing.T) {
		env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10, BestTimes: []string{"12:00"}})
		env.sched.now = func() time.Time { return time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC) }
		results := env.sched.Post(context.Background(), domain.Article{ID: "a1"}, nil)
		assert.Contains(t, results["twitter"].Error, "not an optimal posting time")
	})

	t.Run("client failure", func(t *testing.T) {
		env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
		env.poster.fail = errors.New("credentials not configured")
		results := env.sched.Post(context.Background(), domain.Article{ID: "a1"}, nil)
		assert.False(t, results["twitter"].Success)
		assert.Contains(t, results["twitter"].Error, "credentials not configured")
		assert.False(t, env.history.HasArticle("a1"), "failed posts are not recorded")
	})
}

func TestScheduler_PostNoArticleDedup(t *testing.T) {
	// direct posting doesn't consult history for the article id, only
	// rate limits apply
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	article := domain.Article{ID: "a1", Title: "Repeat"}

	results := env.sched.Post(context.Background(), article, nil)
	assert.True(t, results["twitter"].Success)

	results = env.sched.Post(context.Background(), article, nil)
	assert.True(t, results["twitter"].Success, "same article posts again directly")
	assert.Len(t, env.poster.posts, 2)
}

func TestScheduler_PostRewritesSummaryOnce(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})

	rewriter := &mocks.RewriterMock{
		RewriteSummaryFunc: func(ctx context.Context, title, summary string) (string, error) {
			return "rewritten " + summary, nil
		},
	}
	env.sched.rewriter = rewriter

	second := &fakePoster{}
	env.registry.Register("facebook", second)
	env.sched.platforms["facebook"] = config.Platform{Enabled: true}

	var seen []string
	env.formatter.FormatFunc = func(ctx context.Context, article domain.Article, platform string, pcfg config.Platform) string {
		seen = append(seen, article.Summary)
		return article.Title
	}

	article := domain.Article{ID: "a1", Title: "News", Summary: "original"}
	env.sched.Post(context.Background(), article, []string{"twitter", "facebook"})

	require.Len(t, rewriter.RewriteSummaryCalls(), 1, "one rewrite shared across platforms")
	require.Len(t, seen, 2)
	assert.Equal(t, "rewritten original", seen[0])
	assert.Equal(t, "rewritten original", seen[1])
}

func TestScheduler_PostRewriteFailureKeepsOriginal(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	env.sched.rewriter = &mocks.RewriterMock{
		RewriteSummaryFunc: func(ctx context.Context, title, summary string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}

	var got string
	env.formatter.FormatFunc = func(ctx context.Context, article domain.Article, platform string, pcfg config.Platform) string {
		got = article.Summary
		return article.Title
	}

	env.sched.Post(context.Background(), domain.Article{ID: "a1", Title: "News", Summary: "original"}, nil)
	assert.Equal(t, "original", got)
}

func TestScheduler_PostTrending(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return []domain.Article{
			{ID: "posted-before", Title: "Old"},
			{ID: "fresh-1", Title: "Fresh One"},
			{ID: "fresh-2", Title: "Fresh Two"},
		}, nil
	}
	env.history.Add(domain.PostRecord{ArticleID: "posted-before", Platform: "twitter", Timestamp: time.Now().Add(-48 * time.Hour)})

	outcomes, err := env.sched.PostTrending(context.Background(), nil, 1, nil)
	require.NoError(t, err)

	require.Len(t, outcomes, 1, "stops after enough successes")
	assert.Equal(t, "fresh-1", outcomes[0].Article.ID, "already posted article skipped")
	assert.True(t, outcomes[0].Success)

	calls := env.crawler.CrawlCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 2, calls[0].MaxArticles, "fetches double the requested count")
}

func TestScheduler_PostTrendingCrawlError(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return nil, errors.New("all feeds down")
	}

	_, err := env.sched.PostTrending(context.Background(), nil, 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crawl for posting")
}

func TestScheduler_BuildDailySchedule(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 3, BestTimes: []string{"9:00", "15:00", "20:00"}})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return []domain.Article{
			{ID: "a1", Title: "One"},
			{ID: "a2", Title: "Two"},
			{ID: "a3", Title: "Three"},
		}, nil
	}

	schedule, err := env.sched.BuildDailySchedule(context.Background(), nil, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", schedule.Date)
	require.Len(t, schedule.Posts, 3)

	// 9:00 is already past noon, so it rolls to tomorrow
	assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), schedule.Posts[0].ScheduledTime)
	assert.Equal(t, time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC), schedule.Posts[1].ScheduledTime)
	assert.Equal(t, time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC), schedule.Posts[2].ScheduledTime)
	assert.Equal(t, []string{"twitter"}, schedule.Posts[0].Platforms)
}

func TestScheduler_BuildDailyScheduleMonthRollover(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 1, BestTimes: []string{"8:00"}})
	now := time.Date(2025, 6, 30, 23, 0, 0, 0, time.UTC) // last day of the month
	env.sched.now = func() time.Time { return now }

	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return []domain.Article{{ID: "a1", Title: "One"}}, nil
	}

	schedule, err := env.sched.BuildDailySchedule(context.Background(), nil, 0, nil)
	require.NoError(t, err)
	require.Len(t, schedule.Posts, 1)
	assert.Equal(t, time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC), schedule.Posts[0].ScheduledTime,
		"past-due slot moves to the next calendar day")
}

func TestScheduler_BuildDailyScheduleLimits(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 5, BestTimes: []string{"9:00", "15:00"}})
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return []domain.Article{
			{ID: "a1"}, {ID: "a2"}, {ID: "a3"}, {ID: "a4"},
		}, nil
	}

	schedule, err := env.sched.BuildDailySchedule(context.Background(), nil, 0, nil)
	require.NoError(t, err)
	assert.Len(t, schedule.Posts, 2, "limited by the number of best times")
}

func TestScheduler_BuildDailyScheduleSkipsPosted(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 5, BestTimes: []string{"9:00", "15:00", "20:00"}})
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return []domain.Article{{ID: "posted"}, {ID: "new"}}, nil
	}
	env.history.Add(domain.PostRecord{ArticleID: "posted", Platform: "twitter", Timestamp: now.Add(-time.Hour)})

	schedule, err := env.sched.BuildDailySchedule(context.Background(), nil, 0, nil)
	require.NoError(t, err)
	require.Len(t, schedule.Posts, 1)
	assert.Equal(t, "new", schedule.Posts[0].Article.ID)
}

func TestScheduler_Platforms(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	env.registry.Register("facebook", &fakePoster{})

	assert.Equal(t, []string{"facebook", "twitter"}, env.sched.Platforms())
}

func TestScheduler_Stats(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10})
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	env.cache.Put(domain.Article{ID: "cached", Title: "Still Cached", URL: "https://example.com/c"})

	env.history.Add(domain.PostRecord{ArticleID: "cached", Platform: "twitter", URL: "https://t/1", Timestamp: now.Add(-time.Hour)})
	env.history.Add(domain.PostRecord{ArticleID: "evicted", Platform: "facebook", URL: "https://f/1", Timestamp: now.Add(-2 * time.Hour)})
	env.history.Add(domain.PostRecord{ArticleID: "ancient", Platform: "twitter", URL: "https://t/0", Timestamp: now.AddDate(0, 0, -10)})

	stats := env.sched.Stats(7)
	assert.Equal(t, 2, stats.TotalPosts, "records outside the window excluded")
	assert.Equal(t, map[string]int{"twitter": 1, "facebook": 1}, stats.PlatformCounts)
	assert.Equal(t, map[string]int{"2025-06-10": 2}, stats.DayCounts)

	require.Len(t, stats.RecentPosts, 2)
	assert.Equal(t, "twitter", stats.RecentPosts[0].Platform, "most recent first")
	require.NotNil(t, stats.RecentPosts[0].Article, "cached article joined")
	assert.Equal(t, "Still Cached", stats.RecentPosts[0].Article.Title)
	assert.Nil(t, stats.RecentPosts[1].Article)
	assert.Equal(t, "evicted", stats.RecentPosts[1].ArticleID, "evicted article keeps the bare id")
}

func TestScheduler_Run(t *testing.T) {
	env := newTestEnv(t, config.Posting{MaxPostsPerDay: 10, BestTimes: []string{"12:01"}})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	env.sched.now = func() time.Time { return now }

	article := domain.Article{ID: "a1", Title: "Due Soon"}
	env.cache.Put(article)
	env.crawler.CrawlFunc = func(ctx context.Context, categories []string, maxArticles int) ([]domain.Article, error) {
		return []domain.Article{article}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := env.sched.Run(ctx, 50*time.Millisecond)
	require.NoError(t, err)

	require.NotEmpty(t, env.poster.posts, "due post fired by the loop")
	assert.Equal(t, "formatted: Due Soon", env.poster.posts[0])
}
