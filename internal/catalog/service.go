package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/config"
	"github.com/brewtab/ordering-backend/pkg/logger"
)

type snapshotLoader interface {
	LoadSnapshot(ctx context.Context, now time.Time) (pricing.Snapshot, error)
}

// Service exposes the discount catalog as an immutable snapshot, refreshed
// at most once per TTL. Every refresh swaps the whole snapshot in at once;
// a half-updated discounts/associations pair is never visible.
type Service interface {
	Snapshot(ctx context.Context) (pricing.Snapshot, error)
	Refresh(ctx context.Context) error
}

type service struct {
	loader snapshotLoader
	logg   *logger.Logger
	ttl    time.Duration
	nowFn  func() time.Time

	mu       sync.RWMutex
	current  pricing.Snapshot
	loadedAt time.Time
}

// NewService builds the catalog snapshot service.
func NewService(loader snapshotLoader, logg *logger.Logger, cfg config.PricingConfig) (Service, error) {
	if loader == nil {
		return nil, fmt.Errorf("snapshot loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &service{
		loader: loader,
		logg:   logg,
		ttl:    ttl,
		nowFn:  time.Now,
	}, nil
}

// Snapshot returns the cached snapshot, refreshing it when stale. When a
// refresh fails but a prior snapshot exists, the stale snapshot is served
// and the failure logged; pricing with slightly old catalog data beats
// failing the whole cart.
func (s *service) Snapshot(ctx context.Context) (pricing.Snapshot, error) {
	s.mu.RLock()
	fresh := !s.loadedAt.IsZero() && s.nowFn().Sub(s.loadedAt) < s.ttl
	snap := s.current
	loaded := !s.loadedAt.IsZero()
	s.mu.RUnlock()

	if fresh {
		return snap, nil
	}

	if err := s.Refresh(ctx); err != nil {
		if loaded {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "serving stale discount catalog snapshot")
			return snap, nil
		}
		return pricing.Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Refresh loads a new snapshot and swaps it in atomically.
func (s *service) Refresh(ctx context.Context) error {
	snap, err := s.loader.LoadSnapshot(ctx, s.nowFn())
	if err != nil {
		return fmt.Errorf("load discount snapshot: %w", err)
	}

	s.mu.Lock()
	s.current = snap
	s.loadedAt = s.nowFn()
	s.mu.Unlock()
	return nil
}
