package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMarkerMissing(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	_, err := s.GetMarker(ctx, "feed:created:10001")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutAndGetMarker(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	key := "feed:created:10001"
	if err := s.PutMarker(ctx, key, "2024-01-02T00:00:00Z"); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetMarker(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff("2024-01-02T00:00:00Z", got); diff != "" {
		t.Errorf("marker mismatch (-want +got):\n%s", diff)
	}
}

func TestPutMarkerOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	key := "feed:commented:77"
	if err := s.PutMarker(ctx, key, "2024-01-02T00:00:00Z"); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := s.PutMarker(ctx, key, "2024-01-03T00:00:00Z"); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := s.GetMarker(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff("2024-01-03T00:00:00Z", got); diff != "" {
		t.Errorf("marker mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkersIsolatedByKey(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	if err := s.PutMarker(ctx, "alpha:created:1", "2024-01-02T00:00:00Z"); err != nil {
		t.Fatalf("put: %v", err)
	}

	_, err := s.GetMarker(ctx, "beta:created:1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other feed, got %v", err)
	}
	_, err = s.GetMarker(ctx, "alpha:commented:1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other kind, got %v", err)
	}
}
