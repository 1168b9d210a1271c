package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viralcal/viralcal/app/aggregator"
	"github.com/viralcal/viralcal/app/api"
	"github.com/viralcal/viralcal/app/cfg"
	"github.com/viralcal/viralcal/app/database"
	"github.com/viralcal/viralcal/app/sources"
	"github.com/viralcal/viralcal/app/sources/googlenews"
	"github.com/viralcal/viralcal/app/sources/hackernews"
	"github.com/viralcal/viralcal/app/sources/newsapi"
	"github.com/viralcal/viralcal/app/sources/reddit"
	"github.com/viralcal/viralcal/app/sources/twitter"
	"github.com/viralcal/viralcal/app/storage"
	"github.com/viralcal/viralcal/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting ViralCal server", "version", appCfg.Version)

	// Remote store is optional: without credentials the service runs on the
	// local cache and mock data.
	var db *database.DB
	var eventRepo database.EventRepository
	var jobRepo database.JobRepository
	var summaryRepo database.SummaryRepository
	var sourceConfigRepo database.SourceConfigRepository
	var remoteWriter storage.RemoteWriter
	var remoteReader storage.EventReader

	if appCfg.RemoteStoreEnabled() {
		slog.Info("Connecting to database", "host", appCfg.DBHost, "name", appCfg.DBName)
		db, err = database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
			appCfg.DBPassword, appCfg.DBName)
		if err != nil {
			slog.Warn("Database unavailable, continuing with local cache only", "error", err)
		} else {
			defer db.Close()

			version, dirty, err := database.RunMigrations(db)
			if err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
			slog.Info("Database migrations applied", "version", version, "dirty", dirty)

			events := database.NewEventRepository(db)
			eventRepo = events
			remoteWriter = events
			remoteReader = events
			jobRepo = database.NewJobRepository(db)
			summaryRepo = database.NewSummaryRepository(db)
			sourceConfigRepo = database.NewSourceConfigRepository(db)
		}
	} else {
		slog.Info("Remote store disabled (DB_PASSWORD not set)")
	}

	// Source configuration files
	configCache := sources.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Warn("Failed to load source configurations, using defaults", "error", err)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	// Source clients: unconfigured clients stay registered and are skipped
	// with a warning at fetch time.
	redditClient := reddit.NewClient(appCfg.RedditUserAgent)
	clients := []sources.Client{
		redditClient,
		hackernews.NewClient(),
		newsapi.NewClient(appCfg.NewsAPIKey),
		twitter.NewClient(appCfg.TwitterBearerToken),
		googlenews.NewClient(),
	}

	agg := aggregator.New(clients)

	// Mirror the source registry into the remote store so operators can see
	// which sources exist and toggle them.
	if sourceConfigRepo != nil {
		syncCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		for _, client := range clients {
			config := configCache.GetConfig(client.Name())

			enabled := config.Settings.Enabled && client.Configured()
			existing, err := sourceConfigRepo.GetSourceConfig(syncCtx, client.Name())
			if err != nil {
				slog.Warn("Failed to read source config", "source", client.Name(), "error", err)
			} else if existing != nil && !existing.IsEnabled {
				// Operator toggles survive restarts.
				enabled = false
			}

			err = sourceConfigRepo.UpsertSourceConfig(syncCtx, database.SourceConfig{
				SourceType: client.Name(),
				IsEnabled:  enabled,
				Config: map[string]interface{}{
					"min_score":   config.Settings.MinScore,
					"max_results": config.Settings.MaxResults,
					"subreddits":  config.Subreddits,
					"timeframes":  config.Timeframes,
				},
				RateLimitRemaining: client.RateLimitStatus().Remaining,
			})
			if err != nil {
				slog.Warn("Failed to register source", "source", client.Name(), "error", err)
				continue
			}
			slog.Info("Registered source", "source", client.Name(), "configured", client.Configured())
		}
		cancel()
	}

	// Persistence: local-first writes, tiered reads
	localCache, err := storage.NewLocalCache(appCfg.CachePath)
	if err != nil {
		log.Fatalf("Failed to open local cache: %v", err)
	}
	slog.Info("Local cache opened", "path", appCfg.CachePath, "dates", localCache.Count())

	store := storage.NewStore(localCache, remoteWriter)

	providers := []storage.Provider{}
	if remoteReader != nil {
		providers = append(providers, storage.NewRemoteProvider(remoteReader))
	}
	providers = append(providers, localCache, storage.NewMockProvider())
	chain := storage.NewChain(providers...)

	// Background workers
	httpClient := &http.Client{Timeout: 30 * time.Second}
	scheduler := tasks.NewScheduler(agg, store, eventRepo, jobRepo, sourceConfigRepo, httpClient)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount)

	// HTTP server
	handler := api.NewHandler(chain, store, agg, configCache, scheduler,
		jobRepo, summaryRepo, sourceConfigRepo, redditClient,
		appCfg.ImportDelayMs, appCfg.ImportMinScore, appCfg.ImportMaxPosts)
	server := api.NewServer(handler, appCfg.APIAccessKey, appCfg.CronSecret)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
