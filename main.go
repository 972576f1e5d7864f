package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/cache"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/config"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/database"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/games"
	server "github.com/TechFernandesLTDA/futeba-dos-parcas/internal/http"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/metrics"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/milestone"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/notifier/slack"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/processor"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/pubsub"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/ranking"
	"github.com/TechFernandesLTDA/futeba-dos-parcas/internal/season"
	"github.com/charmbracelet/log"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	gamesStore := games.New(db)
	seasonStore := season.New(db)
	rankingStore := ranking.New(db)
	milestoneStore := milestone.New(db)
	counters := metrics.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var leaderboardCache cache.LeaderboardCache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		leaderboardCache, err = cache.New(cfg.Redis.Addr, cfg.Redis.Password, metricsSvc)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %s", err)
		}
		defer leaderboardCache.Close()
		log.Info("Leaderboard cache enabled", "addr", cfg.Redis.Addr)
	} else {
		log.Info("No REDIS_ADDR configured, leaderboard cache disabled")
	}

	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc, counters)
	pubsub := pubsub.New(cfg.ProjectID)
	evaluator := milestone.NewEvaluator(milestoneStore)
	processor := processor.New(gamesStore, seasonStore, rankingStore, evaluator, notifier, leaderboardCache, metricsSvc, pubsub)

	s := server.NewServer(
		gamesStore,
		seasonStore,
		rankingStore,
		milestoneStore,
		metricsSvc,
		counters,
		metricsHandler,
		cfg,
		notifier,
		processor,
		leaderboardCache,
		pubsub,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
