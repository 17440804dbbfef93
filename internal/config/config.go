// Package config loads and resolves the process configuration from one
// or more JSON files. Files merge left to right; the residual top-level
// configuration then merges into every feed, so shared settings such as
// credentials or the cutoff only need to be written once.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"jira_notify/internal/merge"
	"jira_notify/internal/model"
)

// Feed is one fully resolved polling target.
type Feed struct {
	ID        string
	Delay     time.Duration
	Cutoff    time.Time
	JiraURL   string
	JiraUser  string
	JiraPass  string
	JiraQuery string
	SlackURL  string
	Channel   string
	IconURL   string
	Disabled  bool
}

// Config holds the application configuration.
type Config struct {
	DatabasePath string
	LogLevel     string
	Interval     time.Duration
	Feeds        []Feed
}

type envOverrides struct {
	DatabasePath string `env:"DATABASE_PATH"`
	LogLevel     string `env:"LOG_LEVEL"`
}

// Load reads and merges the given JSON configuration files, then
// resolves every feed. Missing required feed fields and an empty feed
// list are startup-time fatal errors.
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration files given")
	}

	var merged any
	for _, path := range paths {
		data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if _, ok := doc.(map[string]any); !ok {
			return nil, fmt.Errorf("config %s: root must be an object", path)
		}
		merged = merge.Merge(merged, doc)
	}
	root := merged.(map[string]any)

	cfg := &Config{
		DatabasePath: "./data/notifier.db",
		LogLevel:     "info",
		Interval:     time.Minute,
	}
	if v, ok := root["db"].(string); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := root["log_level"].(string); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := root["interval"]; ok {
		d, err := parseDelay(v)
		if err != nil {
			return nil, fmt.Errorf("interval: %w", err)
		}
		cfg.Interval = d
	}

	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if o.DatabasePath != "" {
		cfg.DatabasePath = o.DatabasePath
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}

	rawFeeds, _ := root["feeds"].([]any)
	if len(rawFeeds) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	// The remaining top-level keys are defaults for every feed.
	base := map[string]any{}
	for k, v := range root {
		switch k {
		case "feeds", "db", "log_level", "interval":
		default:
			base[k] = v
		}
	}
	if _, ok := base["cutoff"]; !ok {
		base["cutoff"] = model.FormatTime(time.Now())
	}

	for i, raw := range rawFeeds {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("feed %d: not an object", i)
		}
		feed, err := resolveFeed(merge.Merge(base, entry).(map[string]any))
		if err != nil {
			return nil, fmt.Errorf("feed %d: %w", i, err)
		}
		cfg.Feeds = append(cfg.Feeds, feed)
	}

	return cfg, nil
}

func resolveFeed(m map[string]any) (Feed, error) {
	feed := Feed{
		ID:        stringKey(m, "id"),
		JiraURL:   stringKey(m, "jira_url"),
		JiraUser:  stringKey(m, "jira_user"),
		JiraPass:  stringKey(m, "jira_pass"),
		JiraQuery: stringKey(m, "jira_query"),
		SlackURL:  stringKey(m, "slack_url"),
		Channel:   stringKey(m, "channel"),
		IconURL:   stringKey(m, "icon_url"),
	}
	if v, ok := m["disabled"].(bool); ok {
		feed.Disabled = v
	}

	if feed.ID == "" {
		return Feed{}, fmt.Errorf("no id in feed")
	}
	if feed.JiraURL == "" {
		return Feed{}, fmt.Errorf("no jira_url in feed")
	}
	if feed.SlackURL == "" {
		return Feed{}, fmt.Errorf("no slack_url in feed")
	}

	rawDelay, ok := m["delay"]
	if !ok {
		return Feed{}, fmt.Errorf("no delay in feed")
	}
	delay, err := parseDelay(rawDelay)
	if err != nil {
		return Feed{}, fmt.Errorf("delay: %w", err)
	}
	feed.Delay = delay

	rawCutoff := stringKey(m, "cutoff")
	if rawCutoff == "" {
		return Feed{}, fmt.Errorf("no cutoff in feed")
	}
	cutoff, err := model.ParseTime(rawCutoff)
	if err != nil {
		return Feed{}, fmt.Errorf("cutoff: %w", err)
	}
	feed.Cutoff = cutoff

	return feed, nil
}

// parseDelay accepts either a JSON number of milliseconds or a Go
// duration string such as "30s". A zero value would disable the
// outbound throttle or spin the polling loop, so only positive
// durations are accepted.
func parseDelay(v any) (time.Duration, error) {
	switch tv := v.(type) {
	case float64:
		if tv <= 0 {
			return 0, fmt.Errorf("non-positive duration %v", tv)
		}
		return time.Duration(tv) * time.Millisecond, nil
	case string:
		d, err := time.ParseDuration(tv)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", tv, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("non-positive duration %q", tv)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("unsupported duration value %v", v)
	}
}

func stringKey(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}
