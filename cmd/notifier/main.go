package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"jira_notify/internal/config"
	"jira_notify/internal/dedup"
	"jira_notify/internal/jira"
	"jira_notify/internal/notify"
	"jira_notify/internal/processor"
	"jira_notify/internal/scheduler"
	"jira_notify/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: notifier <config.json> [more.json ...]")
		os.Exit(1)
	}

	cfg, err := config.Load(os.Args[1:]...)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	sched := scheduler.New(cfg.Interval, log)
	httpClient := &http.Client{Timeout: 30 * time.Second}

	for _, feed := range cfg.Feeds {
		client := jira.New(httpClient, feed.JiraURL, feed.JiraUser, feed.JiraPass, feed.JiraQuery)
		sender := notify.NewWebhook(feed.SlackURL)
		tracker := dedup.New(store, feed.ID, feed.Cutoff)
		format := notify.Formatter{
			BaseURL: feed.JiraURL,
			Channel: feed.Channel,
			IconURL: feed.IconURL,
		}

		proc := processor.New(processor.Config{
			FeedID:   feed.ID,
			Delay:    feed.Delay,
			Disabled: feed.Disabled,
		}, client, sender, tracker, format, log)

		sched.Add(feed.ID, proc)
		log.Info("feed configured",
			"feed_id", feed.ID, "jira_url", feed.JiraURL, "disabled", feed.Disabled)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting notifier", "feeds", len(cfg.Feeds), "interval", cfg.Interval)

	sched.Run(ctx)

	log.Info("notifier stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
