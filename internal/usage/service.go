package usage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/db/models"
)

type usageStore interface {
	CountsForUser(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error)
	Create(ctx context.Context, records []models.DiscountUsage) error
}

// Service resolves usage history for limit checks and records new usage at
// order submission.
type Service interface {
	IdentityFor(ctx context.Context, userID *uuid.UUID, snap pricing.Snapshot) (pricing.Identity, error)
	RecordIntents(ctx context.Context, orderID uuid.UUID, intents []pricing.UsageIntent) error
}

type service struct {
	repo usageStore
}

// NewService builds the usage service.
func NewService(repo usageStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("usage repository required")
	}
	return &service{repo: repo}, nil
}

// IdentityFor assembles the engine identity for a request: the optional
// user plus their usage counts for every limit-bearing discount in the
// snapshot. Guests get an empty identity; limited discounts are filtered
// out downstream.
func (s *service) IdentityFor(ctx context.Context, userID *uuid.UUID, snap pricing.Snapshot) (pricing.Identity, error) {
	if userID == nil {
		return pricing.Identity{}, nil
	}

	var limited []uuid.UUID
	for _, d := range snap.Discounts {
		if d.PerUserLimit != nil {
			limited = append(limited, d.ID)
		}
	}
	if len(limited) == 0 {
		return pricing.Identity{UserID: userID}, nil
	}

	counts, err := s.repo.CountsForUser(ctx, *userID, limited)
	if err != nil {
		return pricing.Identity{}, fmt.Errorf("load usage counts: %w", err)
	}
	return pricing.Identity{UserID: userID, Usage: counts}, nil
}

// RecordIntents persists the usage records emitted at order submission.
func (s *service) RecordIntents(ctx context.Context, orderID uuid.UUID, intents []pricing.UsageIntent) error {
	if len(intents) == 0 {
		return nil
	}
	records := make([]models.DiscountUsage, 0, len(intents))
	for _, intent := range intents {
		records = append(records, models.DiscountUsage{
			DiscountID: intent.DiscountID,
			UserID:     intent.UserID,
			OrderID:    orderID,
			Amount:     intent.Amount,
		})
	}
	return s.repo.Create(ctx, records)
}
