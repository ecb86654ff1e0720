package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/db/models"
)

type stubStore struct {
	counts    map[uuid.UUID]int
	countsErr error
	created   []models.DiscountUsage
	createErr error

	requestedIDs []uuid.UUID
}

func (s *stubStore) CountsForUser(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	s.requestedIDs = discountIDs
	return s.counts, s.countsErr
}

func (s *stubStore) Create(ctx context.Context, records []models.DiscountUsage) error {
	s.created = append(s.created, records...)
	return s.createErr
}

func limitedDiscount(limit int) models.Discount {
	return models.Discount{ID: uuid.New(), PerUserLimit: &limit}
}

func TestIdentityForGuest(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubStore{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	identity, err := svc.IdentityFor(context.Background(), nil, pricing.Snapshot{})
	if err != nil {
		t.Fatalf("IdentityFor: %v", err)
	}
	if identity.UserID != nil {
		t.Fatal("guest identity should carry no user")
	}
}

func TestIdentityForQueriesOnlyLimitedDiscounts(t *testing.T) {
	t.Parallel()

	limited := limitedDiscount(1)
	unlimited := models.Discount{ID: uuid.New()}
	store := &stubStore{counts: map[uuid.UUID]int{limited.ID: 1}}
	svc, _ := NewService(store)

	userID := uuid.New()
	snap := pricing.Snapshot{Discounts: []models.Discount{limited, unlimited}}

	identity, err := svc.IdentityFor(context.Background(), &userID, snap)
	if err != nil {
		t.Fatalf("IdentityFor: %v", err)
	}
	if len(store.requestedIDs) != 1 || store.requestedIDs[0] != limited.ID {
		t.Fatalf("expected counts query for the limited discount only, got %v", store.requestedIDs)
	}
	if identity.Usage[limited.ID] != 1 {
		t.Fatalf("expected usage count 1, got %d", identity.Usage[limited.ID])
	}
}

func TestIdentityForSkipsQueryWithoutLimitedDiscounts(t *testing.T) {
	t.Parallel()

	store := &stubStore{countsErr: errors.New("should not be called")}
	svc, _ := NewService(store)

	userID := uuid.New()
	snap := pricing.Snapshot{Discounts: []models.Discount{{ID: uuid.New()}}}

	if _, err := svc.IdentityFor(context.Background(), &userID, snap); err != nil {
		t.Fatalf("IdentityFor: %v", err)
	}
	if store.requestedIDs != nil {
		t.Fatal("no counts query expected without limited discounts")
	}
}

func TestRecordIntents(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	svc, _ := NewService(store)

	orderID := uuid.New()
	userID := uuid.New()
	intents := []pricing.UsageIntent{
		{DiscountID: uuid.New(), UserID: userID},
		{DiscountID: uuid.New(), UserID: userID},
	}

	if err := svc.RecordIntents(context.Background(), orderID, intents); err != nil {
		t.Fatalf("RecordIntents: %v", err)
	}
	if len(store.created) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.created))
	}
	for _, rec := range store.created {
		if rec.OrderID != orderID || rec.UserID != userID {
			t.Fatalf("row not attributed correctly: %+v", rec)
		}
	}

	if err := svc.RecordIntents(context.Background(), orderID, nil); err != nil {
		t.Fatalf("empty intents should no-op, got %v", err)
	}
}
