package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/feedherald/feedherald/app/api"
	"github.com/feedherald/feedherald/app/cfg"
	"github.com/feedherald/feedherald/app/config"
	"github.com/feedherald/feedherald/app/database"
	"github.com/feedherald/feedherald/app/feed"
	"github.com/feedherald/feedherald/app/notify"
	"github.com/feedherald/feedherald/app/state"
	"github.com/feedherald/feedherald/app/tasks"
)

func main() {
	// A missing .env is fine; all settings can come from the environment.
	_ = godotenv.Load()

	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting Feed Herald", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open item archive", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Item archive ready", "schema_version", version, "dirty", dirty)

	itemRepo := database.NewItemRepository(db)

	feeds := config.NewLoader(appCfg.FeedsFile)
	slog.Info("Watching feed list", "file", appCfg.FeedsFile, "feeds", len(feeds.Load()))

	historyStore := state.NewHistoryStore(appCfg.DataDir)
	groupStore := state.NewGroupStateStore(appCfg.DataDir)

	notifier, err := notify.NewDiscord(appCfg.WebhookURL)
	if err != nil {
		slog.Error("Invalid webhook URL", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)
	enricher := feed.NewEnricher(httpClient, appCfg.UserAgent)
	processor := feed.NewProcessor(fetcher, enricher, historyStore, groupStore, notifier, itemRepo)

	pollInterval := time.Duration(appCfg.PollInterval) * time.Second
	scheduler := tasks.NewScheduler(feeds, processor, pollInterval)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Poll scheduler started", "interval", pollInterval)

	apiHandler := api.NewHandler(feeds, itemRepo, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(apiHandler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
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
