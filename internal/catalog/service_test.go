package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/config"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

type stubLoader struct {
	snap  pricing.Snapshot
	err   error
	calls int
}

func (s *stubLoader) LoadSnapshot(ctx context.Context, now time.Time) (pricing.Snapshot, error) {
	s.calls++
	if s.err != nil {
		return pricing.Snapshot{}, s.err
	}
	return s.snap, nil
}

func newTestService(t *testing.T, loader *stubLoader, ttl time.Duration) *service {
	t.Helper()
	svc, err := NewService(loader, logger.New(logger.Options{ServiceName: "test"}), config.PricingConfig{SnapshotTTL: ttl})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc.(*service)
}

func TestSnapshotCachedWithinTTL(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{snap: pricing.Snapshot{Discounts: []models.Discount{{ID: uuid.New()}}}}
	svc := newTestService(t, loader, time.Minute)

	now := time.Now()
	svc.nowFn = func() time.Time { return now }

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one load within ttl, got %d", loader.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("post-ttl snapshot: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, got %d calls", loader.calls)
	}
}

func TestSnapshotServesStaleOnRefreshFailure(t *testing.T) {
	t.Parallel()

	discountID := uuid.New()
	loader := &stubLoader{snap: pricing.Snapshot{Discounts: []models.Discount{{ID: discountID}}}}
	svc := newTestService(t, loader, time.Minute)

	now := time.Now()
	svc.nowFn = func() time.Time { return now }

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("prime snapshot: %v", err)
	}

	loader.err = errors.New("db down")
	now = now.Add(2 * time.Minute)

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("stale snapshot should still be served, got %v", err)
	}
	if len(snap.Discounts) != 1 || snap.Discounts[0].ID != discountID {
		t.Fatal("expected the previously loaded snapshot")
	}
}

func TestSnapshotFailsWhenNeverLoaded(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: errors.New("db down")}
	svc := newTestService(t, loader, time.Minute)

	if _, err := svc.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error with no snapshot to fall back on")
	}
}
