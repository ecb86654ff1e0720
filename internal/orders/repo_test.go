package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
	"github.com/brewtab/ordering-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER,
  session_id TEXT NOT NULL,
  user_id TEXT,
  table_code TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'placed',
  currency TEXT NOT NULL DEFAULT 'USD',
  subtotal TEXT NOT NULL,
  discount_amount TEXT NOT NULL,
  total TEXT NOT NULL,
  notes TEXT,
  placed_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  line_total TEXT NOT NULL,
  discount_id TEXT,
  discount_amount TEXT NOT NULL DEFAULT '0',
  notes TEXT
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func newTestOrder(sessionID string, placedAt time.Time) *models.Order {
	return &models.Order{
		ID:             uuid.New(),
		SessionID:      sessionID,
		TableCode:      "T1",
		Status:         enums.OrderStatusPlaced,
		Currency:       enums.CurrencyUSD,
		Subtotal:       decimal.NewFromFloat(21.50),
		DiscountAmount: decimal.NewFromFloat(2.15),
		Total:          decimal.NewFromFloat(19.35),
		PlacedAt:       placedAt,
		Items: []models.OrderItem{
			{
				ID:             uuid.New(),
				ProductID:      uuid.New(),
				Name:           "House Lager",
				UnitPrice:      decimal.NewFromFloat(7.00),
				Quantity:       2,
				LineTotal:      decimal.NewFromFloat(14.00),
				DiscountAmount: decimal.NewFromFloat(1.40),
			},
			{
				ID:             uuid.New(),
				ProductID:      uuid.New(),
				Name:           "Pretzel",
				UnitPrice:      decimal.NewFromFloat(7.50),
				Quantity:       1,
				LineTotal:      decimal.NewFromFloat(7.50),
				DiscountAmount: decimal.NewFromFloat(0.75),
			},
		},
	}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder("sess-create", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, order.SessionID, found.SessionID)
	assert.Equal(t, enums.OrderStatusPlaced, found.Status)
	assert.Len(t, found.Items, 2)
	assert.True(t, found.Total.Equal(decimal.NewFromFloat(19.35)))

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepositoryListBySessionPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	older := newTestOrder("sess-list", base.Add(-2*time.Minute))
	newer := newTestOrder("sess-list", base)
	other := newTestOrder("sess-other", base)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, other))

	page, next, err := repo.ListBySession(ctx, "sess-list", pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, newer.ID, page[0].ID)
	require.NotEmpty(t, next)

	rest, next, err := repo.ListBySession(ctx, "sess-list", pagination.Params{Limit: 1, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, older.ID, rest[0].ID)
	assert.Empty(t, next)
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newTestOrder("sess-status", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusReady))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, enums.OrderStatusReady, found.Status)
}
