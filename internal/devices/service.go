package devices

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
)

var knownPlatforms = map[string]struct{}{
	"ios":     {},
	"android": {},
	"web":     {},
}

type tokenStore interface {
	Upsert(ctx context.Context, token *models.DeviceToken) error
	FindBySession(ctx context.Context, sessionID string) (*models.DeviceToken, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

// Service manages push token registrations for order-status notifications.
type Service interface {
	Register(ctx context.Context, sessionID string, userID *uuid.UUID, token, platform string) (*models.DeviceToken, error)
	Unregister(ctx context.Context, sessionID string) error
	TokenForSession(ctx context.Context, sessionID string) (*models.DeviceToken, error)
}

type service struct {
	store tokenStore
}

// NewService builds the device token service.
func NewService(store tokenStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("token store required")
	}
	return &service{store: store}, nil
}

// Register stores the session's push token, replacing any previous one.
func (s *service) Register(ctx context.Context, sessionID string, userID *uuid.UUID, token, platform string) (*models.DeviceToken, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "push token required")
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if _, ok := knownPlatforms[platform]; !ok {
		platform = "unknown"
	}

	record := &models.DeviceToken{
		SessionID: sessionID,
		UserID:    userID,
		Token:     token,
		Platform:  platform,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) Unregister(ctx context.Context, sessionID string) error {
	return s.store.DeleteBySession(ctx, sessionID)
}

func (s *service) TokenForSession(ctx context.Context, sessionID string) (*models.DeviceToken, error) {
	return s.store.FindBySession(ctx, sessionID)
}
