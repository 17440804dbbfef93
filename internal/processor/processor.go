// Package processor walks one feed payload and turns previously unseen
// issue activity into notifications, recording what has been notified
// so a later pass never repeats it.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jira_notify/internal/dedup"
	"jira_notify/internal/iterate"
	"jira_notify/internal/model"
	"jira_notify/internal/notify"
)

// Fetcher retrieves one feed payload from the tracker.
type Fetcher interface {
	Search(ctx context.Context) (*model.SearchResult, error)
}

// Config carries the per-feed settings the processor needs.
type Config struct {
	FeedID string
	// Delay throttles outbound messages after each delivery.
	Delay time.Duration
	// Disabled suppresses delivery but still records markers.
	Disabled bool
}

// Processor runs complete passes for a single feed. All entity
// processing within a pass is strictly sequential.
type Processor struct {
	cfg     Config
	fetcher Fetcher
	sender  notify.Sender
	tracker *dedup.Tracker
	format  notify.Formatter
	log     *slog.Logger
}

// New creates a Processor for one configured feed.
func New(cfg Config, fetcher Fetcher, sender notify.Sender, tracker *dedup.Tracker, format notify.Formatter, log *slog.Logger) *Processor {
	return &Processor{
		cfg:     cfg,
		fetcher: fetcher,
		sender:  sender,
		tracker: tracker,
		format:  format,
		log:     log,
	}
}

// Run executes one pass: fetch the payload and process every issue in
// it. Fetch and parse failures abort the pass; a failure on one issue
// is logged and does not block its siblings.
func (p *Processor) Run(ctx context.Context) error {
	result, err := p.fetcher.Search(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	return p.Process(ctx, result)
}

// Process walks the issues of an already fetched payload.
func (p *Processor) Process(ctx context.Context, result *model.SearchResult) error {
	it := iterate.New[model.Issue](nil)
	return it.Each(ctx, result.Issues, func(issue model.Issue) error {
		if err := p.processIssue(ctx, &issue); err != nil {
			p.log.Warn("process issue",
				"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "error", err)
		}
		return nil
	})
}

// processIssue handles the creation notification and then the issue's
// contents. A marker write failure aborts the issue; a delivery failure
// on the creation notification does not.
func (p *Processor) processIssue(ctx context.Context, issue *model.Issue) error {
	created, err := model.ParseTime(issue.Fields.Created)
	if err != nil {
		return fmt.Errorf("issue created: %w", err)
	}

	ok, err := p.tracker.ShouldProcess(ctx, dedup.KindCreated, issue.ID, created)
	if err != nil {
		return err
	}
	if ok {
		if err := p.notify(ctx, issue, issue.Fields.Creator, "created"); err != nil {
			p.log.Warn("notify creation",
				"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "error", err)
		}
		if err := p.tracker.MarkProcessed(ctx, dedup.KindCreated, issue.ID, created); err != nil {
			return err
		}
	} else {
		p.log.Debug("skip creation",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "created", issue.Fields.Created)
	}

	if err := p.processHistories(ctx, issue); err != nil {
		p.log.Warn("process history",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "error", err)
	}
	if err := p.processComments(ctx, issue); err != nil {
		p.log.Warn("process comments",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "error", err)
	}
	return nil
}

// processHistories marks every new changelog entry, collapses their
// authors to a first-seen-order set and sends one "updated"
// notification per author. One changelog batch may carry several field
// changes by the same author; only one message per author is wanted.
func (p *Processor) processHistories(ctx context.Context, issue *model.Issue) error {
	if issue.Changelog == nil || len(issue.Changelog.Histories) == 0 {
		return nil
	}

	var authors []*model.Author
	it := iterate.New(func(err error, h model.History, index int) {
		p.log.Warn("history entry",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "index", index, "error", err)
	})
	err := it.Each(ctx, issue.Changelog.Histories, func(h model.History) error {
		author, err := p.processHistory(ctx, issue, h)
		if err != nil {
			return err
		}
		if author == nil {
			return nil
		}
		for _, a := range authors {
			if a.Identity() == author.Identity() {
				return nil
			}
		}
		authors = append(authors, author)
		return nil
	})
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		return nil
	}

	nit := iterate.New(func(err error, a *model.Author, index int) {
		p.log.Warn("notify update",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "index", index, "error", err)
	})
	return nit.Each(ctx, authors, func(a *model.Author) error {
		return p.notify(ctx, issue, a, "updated")
	})
}

// processHistory returns the entry's author when it has not been seen
// before, marking it immediately; the notification happens later, once
// per unique author.
func (p *Processor) processHistory(ctx context.Context, issue *model.Issue, h model.History) (*model.Author, error) {
	ts, err := model.ParseTime(h.Created)
	if err != nil {
		return nil, fmt.Errorf("history created: %w", err)
	}

	ok, err := p.tracker.ShouldProcess(ctx, dedup.KindHistory, h.ID, ts)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.log.Debug("skip history",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "history_id", h.ID)
		return nil, nil
	}

	if err := p.tracker.MarkProcessed(ctx, dedup.KindHistory, h.ID, ts); err != nil {
		return nil, err
	}
	p.log.Info("issue history",
		"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "history_id", h.ID)
	return h.Author, nil
}

func (p *Processor) processComments(ctx context.Context, issue *model.Issue) error {
	if issue.Fields.Comment == nil || len(issue.Fields.Comment.Comments) == 0 {
		return nil
	}

	it := iterate.New(func(err error, c model.Comment, index int) {
		p.log.Warn("comment entry",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "index", index, "error", err)
	})
	return it.Each(ctx, issue.Fields.Comment.Comments, func(c model.Comment) error {
		return p.processComment(ctx, issue, c)
	})
}

func (p *Processor) processComment(ctx context.Context, issue *model.Issue, c model.Comment) error {
	author := c.UpdateAuthor
	if author == nil {
		author = c.Author
	}
	raw := c.Updated
	if raw == "" {
		raw = c.Created
	}
	ts, err := model.ParseTime(raw)
	if err != nil {
		return fmt.Errorf("comment updated: %w", err)
	}

	ok, err := p.tracker.ShouldProcess(ctx, dedup.KindCommented, c.ID, ts)
	if err != nil {
		return err
	}
	if !ok {
		p.log.Debug("skip comment",
			"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "comment_id", c.ID)
		return nil
	}

	p.log.Info("issue comment",
		"feed_id", p.cfg.FeedID, "issue_key", issue.Key, "comment_id", c.ID)
	if err := p.notify(ctx, issue, author, "commented on"); err != nil {
		return err
	}
	return p.tracker.MarkProcessed(ctx, dedup.KindCommented, c.ID, ts)
}

// notify builds and delivers one notification, then waits the
// throttle delay. Disabled feeds skip delivery and the delay.
func (p *Processor) notify(ctx context.Context, issue *model.Issue, author *model.Author, action string) error {
	n := p.format.Build(issue, author, action)
	if p.cfg.Disabled {
		return nil
	}
	if err := p.sender.Send(ctx, n); err != nil {
		return err
	}
	if p.cfg.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.Delay):
		}
	}
	return nil
}
