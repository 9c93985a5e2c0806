package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/newspost/pkg/config"
	"github.com/umputun/newspost/pkg/content"
	"github.com/umputun/newspost/pkg/feed"
	"github.com/umputun/newspost/pkg/gen"
	"github.com/umputun/newspost/pkg/poster"
	"github.com/umputun/newspost/pkg/scheduler"
	"github.com/umputun/newspost/pkg/store"
	"github.com/umputun/newspost/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file (yaml or json)"`

	Platforms  []string      `short:"p" long:"platform" description:"platforms to post to, default all enabled"`
	Categories []string      `long:"category" description:"category filters for crawl and post"`
	Limit      int           `long:"limit" default:"10" description:"max articles for crawl and search"`
	Count      int           `long:"count" default:"5" description:"trending topics count"`
	Posts      int           `long:"posts" default:"1" description:"articles to post with the post command"`
	Days       int           `long:"days" default:"7" description:"stats period in days"`
	Interval   time.Duration `long:"interval" default:"5m" description:"scheduler check interval for the run command"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`

	Args struct {
		Command string   `positional-arg-name:"command" description:"crawl|search|trending|post|schedule|stats|run"`
		Query   []string `positional-arg-name:"query" description:"search query terms"`
	} `positional-args:"yes"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		lgr.Printf("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// app holds the wired components
type app struct {
	cfg      *config.Config
	cache    *store.ArticleCache
	history  *store.PostingHistory
	ingestor *feed.Ingestor
	sched    *scheduler.Scheduler
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config %s: %w", opts.Config, err)
	}

	// re-setup logging with platform credentials masked
	setupLog(opts.Debug, collectSecrets(cfg)...)
	lgr.Printf("[INFO] starting newspost version %s", revision)

	a := makeApp(cfg)

	switch opts.Args.Command {
	case "crawl":
		articles, err := a.ingestor.Crawl(ctx, opts.Categories, opts.Limit)
		if err != nil {
			return fmt.Errorf("crawl: %w", err)
		}
		lgr.Printf("[INFO] crawled %d articles", len(articles))
		return printJSON(articles)

	case "search":
		query := strings.Join(opts.Args.Query, " ")
		if query == "" {
			return fmt.Errorf("search requires query terms")
		}
		articles, err := a.ingestor.Search(ctx, query, opts.Limit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		lgr.Printf("[INFO] found %d articles for %q", len(articles), query)
		return printJSON(articles)

	case "trending":
		topics, err := a.ingestor.Trending(ctx, opts.Count)
		if err != nil {
			return fmt.Errorf("trending: %w", err)
		}
		return printJSON(topics)

	case "post":
		outcomes, err := a.sched.PostTrending(ctx, opts.Categories, opts.Posts, opts.Platforms)
		if err != nil {
			return fmt.Errorf("post: %w", err)
		}
		return printJSON(outcomes)

	case "schedule":
		schedule, err := a.sched.BuildDailySchedule(ctx, opts.Categories, 0, opts.Platforms)
		if err != nil {
			return fmt.Errorf("schedule: %w", err)
		}
		return printJSON(schedule)

	case "stats":
		return printJSON(a.sched.Stats(opts.Days))

	case "run":
		return runLoop(ctx, a, opts)

	case "":
		return fmt.Errorf("no command given, want crawl|search|trending|post|schedule|stats|run")

	default:
		return fmt.Errorf("unknown command %q", opts.Args.Command)
	}
}

// makeApp wires all components from the configuration
func makeApp(cfg *config.Config) *app {
	cache := store.NewArticleCache(cfg.CacheFile)
	history := store.NewPostingHistory(cfg.HistoryFile)

	extractor := content.NewExtractor(cfg.TimeoutDuration(), cfg.RequestDelayDuration(), cfg.MaxRetries, cfg.ExtractImages)

	ingestor := feed.NewIngestor(feed.Params{
		Cache:                cache,
		Extractor:            extractor,
		Sources:              cfg.NewsSources,
		MaxArticlesPerSource: cfg.MaxArticlesPerSource,
		MinArticleLength:     cfg.MinArticleLength,
		CacheExpiry:          cfg.CacheExpiry(),
		Concurrency:          cfg.CrawlConcurrency,
	})

	formatter := poster.NewFormatter(cfg.Content, cfg.Posting, ingestor)
	registry := poster.NewDefaultRegistry(cfg.Platforms)

	params := scheduler.Params{
		Crawler:   ingestor,
		Formatter: formatter,
		Registry:  registry,
		History:   history,
		Cache:     cache,
		Platforms: cfg.Platforms,
		Posting:   cfg.Posting,
	}
	if cfg.LLM.Enabled && cfg.Content.RewriteSummaries {
		params.Rewriter = gen.NewGenerator(cfg.LLM)
	}

	return &app{
		cfg:      cfg,
		cache:    cache,
		history:  history,
		ingestor: ingestor,
		sched:    scheduler.NewScheduler(params),
	}
}

// runLoop runs the continuous scheduler, plus the operator server when enabled
func runLoop(ctx context.Context, a *app, opts Opts) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.sched.Run(gctx, opts.Interval)
	})

	if a.cfg.Server.Enabled {
		srv := server.New(a.cfg, a.ingestor, a.sched, a.cache, revision, opts.Debug)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	return g.Wait()
}

// printJSON writes the command result to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// collectSecrets gathers credential values for log masking
func collectSecrets(cfg *config.Config) []string {
	var secrets []string
	add := func(vals ...string) {
		for _, v := range vals {
			if v != "" {
				secrets = append(secrets, v)
			}
		}
	}
	for _, p := range cfg.Platforms {
		add(p.APIKey, p.APISecret, p.AccessToken, p.TokenSecret, p.Password)
	}
	add(cfg.LLM.APIKey)
	return secrets
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
