// Package dedup answers whether a given version of an entity has
// already been notified for a feed, and records that it has.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jira_notify/internal/model"
	"jira_notify/internal/storage"
)

// Kind is the dedup-tracked entity kind.
type Kind string

// Tracked entity kinds.
const (
	KindCreated   Kind = "created"
	KindCommented Kind = "commented"
	KindHistory   Kind = "history"
)

// Tracker scopes dedup checks to a single feed. The cutoff is the
// baseline used when no marker exists for an entity yet.
type Tracker struct {
	store  storage.Storage
	feedID string
	cutoff time.Time
}

// New creates a Tracker for feedID with the given cutoff baseline.
func New(store storage.Storage, feedID string, cutoff time.Time) *Tracker {
	return &Tracker{store: store, feedID: feedID, cutoff: cutoff}
}

// ShouldProcess reports whether the entity version at current is newer
// than what was last processed. A missing marker compares against the
// feed cutoff instead. Store failures other than a read miss propagate.
func (t *Tracker) ShouldProcess(ctx context.Context, kind Kind, id string, current time.Time) (bool, error) {
	baseline := t.cutoff

	value, err := t.store.GetMarker(ctx, t.key(kind, id))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// first encounter, keep the cutoff baseline
	case err != nil:
		return false, fmt.Errorf("read marker: %w", err)
	default:
		baseline, err = model.ParseTime(value)
		if err != nil {
			return false, fmt.Errorf("stored marker: %w", err)
		}
	}

	return current.After(baseline), nil
}

// MarkProcessed records current as the last processed version of the
// entity. Callers only invoke it after ShouldProcess returned true for
// the same timestamp, which keeps stored markers monotonic.
func (t *Tracker) MarkProcessed(ctx context.Context, kind Kind, id string, current time.Time) error {
	if err := t.store.PutMarker(ctx, t.key(kind, id), model.FormatTime(current)); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}

func (t *Tracker) key(kind Kind, id string) string {
	return t.feedID + ":" + string(kind) + ":" + id
}
