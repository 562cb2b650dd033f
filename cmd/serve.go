package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hackerbrief/internal/ai"
	"hackerbrief/internal/config"
	"hackerbrief/internal/contentstore"
	"hackerbrief/internal/database"
	"hackerbrief/internal/extract"
	"hackerbrief/internal/hackernews"
	"hackerbrief/internal/metrics"
	"hackerbrief/internal/redisclient"
	"hackerbrief/internal/retry"
	"hackerbrief/internal/schedule"
	"hackerbrief/internal/window"
	"hackerbrief/worker"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the collector schedule and digest workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		setupLogging(cfg.App.LogLevel)

		// Redis-backed content store
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := contentstore.NewRedisStore(rdb)

		// Postgres repositories
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		db, err := database.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.EnsureSchema(ctx, db); err != nil {
			return err
		}
		postRepo := database.NewPostRepository(db)
		summaryRepo := database.NewSummaryRepository(db)
		userRepo := database.NewUserRepository(db)

		collector, err := buildCollector(cfg, store, postRepo)
		if err != nil {
			return err
		}

		mc, err := metrics.NewCollector()
		if err != nil {
			return err
		}
		collector.Metrics = mc
		if cfg.App.MetricsAddr != "" {
			go serveMetrics(cfg.App.MetricsAddr, mc)
		}

		// Hourly (by default) collection, overlapping triggers skipped
		sched := schedule.New(slog.Default())
		err = sched.Add(cfg.Collector.Schedule, func() {
			if _, err := collector.TryRun(ctx); err != nil {
				slog.Error("collector: scheduled run failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
		sched.Start(ctx)
		defer sched.Stop()

		builder, err := buildDigestBuilder(cfg, store, postRepo, summaryRepo, userRepo)
		if err != nil {
			return err
		}

		mgr := worker.NewManager(builder)

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			log.Printf("received signal: %s, shutting down", s)
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func buildCollector(cfg config.Config, store contentstore.Store, postRepo *database.PostRepository) (*worker.Collector, error) {
	reqTimeout, err := time.ParseDuration(cfg.Feed.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid feed request_timeout: %w", err)
	}
	runTimeout, err := time.ParseDuration(cfg.Collector.RunTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid collector run_timeout: %w", err)
	}
	extractTimeout, err := time.ParseDuration(cfg.Collector.ExtractTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid collector extract_timeout: %w", err)
	}

	feed := hackernews.NewClient(cfg.Feed.BaseAPI, reqTimeout)
	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.Feed.MaxRetries
	feed.SetRetryPolicy(policy)

	return &worker.Collector{
		Feed:             feed,
		Posts:            postRepo,
		Store:            store,
		Extractor:        extract.NewExtractor(nil),
		ScoreThreshold:   cfg.Collector.ScoreThreshold,
		Limit:            cfg.Collector.Limit,
		FetchConcurrency: cfg.Collector.FetchConcurrency,
		RunTimeout:       runTimeout,
		ExtractTimeout:   extractTimeout,
	}, nil
}

func buildDigestBuilder(
	cfg config.Config,
	store contentstore.Store,
	postRepo *database.PostRepository,
	summaryRepo *database.SummaryRepository,
	userRepo *database.UserRepository,
) (*worker.DigestBuilder, error) {
	winCfg, err := windowConfig(cfg.Window)
	if err != nil {
		return nil, err
	}
	interval, err := time.ParseDuration(cfg.Digest.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid digest interval: %w", err)
	}

	var summarizer ai.Summarizer
	if cfg.OpenAI.APIKey != "" {
		summarizer = ai.NewOpenAI(ai.Config{APIKey: cfg.OpenAI.APIKey, Model: cfg.OpenAI.Model, BaseURL: cfg.OpenAI.BaseURL})
	}

	return &worker.DigestBuilder{
		Engine:     window.NewEngine(postRepo, summaryRepo, userRepo, winCfg),
		Users:      userRepo,
		Prefs:      userRepo,
		Summaries:  summaryRepo,
		Store:      store,
		Summarizer: summarizer,
		Interval:   interval,
		OutputDir:  cfg.Digest.OutputDir,
	}, nil
}

func windowConfig(cfg config.WindowConfig) (window.Config, error) {
	out := window.Config{
		GroupSize:       cfg.GroupSize,
		MaxPostsPerUser: cfg.MaxPostsPerUser,
		MinScore:        cfg.MinScore,
	}
	if cfg.MaxPostAge != "" {
		age, err := time.ParseDuration(cfg.MaxPostAge)
		if err != nil {
			return window.Config{}, fmt.Errorf("invalid window max_post_age: %w", err)
		}
		out.MaxPostAge = age
	}
	return out, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func serveMetrics(addr string, mc *metrics.Collector) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mc.Handler())
	slog.Info("metrics: listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics: server stopped", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
