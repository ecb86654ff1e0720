package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/brewtab/ordering-backend/pkg/config"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
)

type tableStore interface {
	FindActiveByCode(ctx context.Context, code string) (*models.VenueTable, error)
	ListActive(ctx context.Context) ([]models.VenueTable, error)
}

type sessionCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	TableSessionKey(sessionID string) string
}

// Service binds client sessions to physical tables. The binding lives in
// Redis with a TTL so an abandoned table frees itself without a cleanup
// job.
type Service interface {
	Claim(ctx context.Context, sessionID, code string) (*models.VenueTable, error)
	Current(ctx context.Context, sessionID string) (string, error)
	Release(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]models.VenueTable, error)
}

type service struct {
	store tableStore
	cache sessionCache
	ttl   time.Duration
}

// NewService builds the table session service.
func NewService(store tableStore, cache sessionCache, cfg config.TablesConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("table store required")
	}
	if cache == nil {
		return nil, fmt.Errorf("session cache required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("table session ttl must be positive")
	}
	return &service{store: store, cache: cache, ttl: cfg.SessionTTL}, nil
}

// Claim validates the scanned code and binds the session to the table,
// replacing any previous binding.
func (s *service) Claim(ctx context.Context, sessionID, code string) (*models.VenueTable, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table code required")
	}

	table, err := s.store.FindActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown table code")
	}

	if err := s.cache.Set(ctx, s.cache.TableSessionKey(sessionID), table.Code, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store table session")
	}
	return table, nil
}

// Current returns the table code bound to the session, or empty.
func (s *service) Current(ctx context.Context, sessionID string) (string, error) {
	code, err := s.cache.Get(ctx, s.cache.TableSessionKey(sessionID))
	if errors.Is(err, redislib.Nil) {
		return "", nil
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read table session")
	}
	return code, nil
}

// Release drops the session's table binding.
func (s *service) Release(ctx context.Context, sessionID string) error {
	if err := s.cache.Del(ctx, s.cache.TableSessionKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release table session")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.VenueTable, error) {
	return s.store.ListActive(ctx)
}
