package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
)

// Repository persists cart records and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindActiveBySession loads the session's active cart with its items, or
// nil when the session has none yet.
func (r *Repository) FindActiveBySession(ctx context.Context, sessionID string) (*models.CartRecord, error) {
	var cart models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Where("session_id = ? AND status = ?", sessionID, enums.CartStatusActive).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a new cart record.
func (r *Repository) Create(ctx context.Context, cart *models.CartRecord) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

// SaveRecord persists the cart's own columns without touching items.
func (r *Repository) SaveRecord(ctx context.Context, cart *models.CartRecord) error {
	return r.db.WithContext(ctx).
		Model(&models.CartRecord{}).
		Where("id = ?", cart.ID).
		Updates(map[string]interface{}{
			"user_id":                      cart.UserID,
			"table_code":                   cart.TableCode,
			"status":                       cart.Status,
			"selected_general_discount_id": cart.SelectedGeneralDiscountID,
			"user_cleared_general":         cart.UserClearedGeneral,
		}).Error
}

// CreateItem inserts a line item.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SaveItem persists the mutable columns of a line item.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity":             item.Quantity,
			"notes":                item.Notes,
			"selected_discount_id": item.SelectedDiscountID,
		}).Error
}

// DeleteItem removes one line item.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

// DeleteItems removes every line item belonging to the cart.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}
