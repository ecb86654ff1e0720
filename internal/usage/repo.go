package usage

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewtab/ordering-backend/pkg/db/models"
)

// Repository persists and aggregates discount usage rows.
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

// CountsForUser returns the user's usage count per discount id. Discounts
// with no usage are absent from the map.
func (r *Repository) CountsForUser(ctx context.Context, userID uuid.UUID, discountIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := map[uuid.UUID]int{}
	if len(discountIDs) == 0 {
		return counts, nil
	}

	type row struct {
		DiscountID uuid.UUID
		Uses       int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.DiscountUsage{}).
		Select("discount_id, COUNT(*) AS uses").
		Where("user_id = ? AND discount_id IN ?", userID, discountIDs).
		Group("discount_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.DiscountID] = r.Uses
	}
	return counts, nil
}

// Create inserts usage rows in one batch.
func (r *Repository) Create(ctx context.Context, records []models.DiscountUsage) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&records).Error
}

// ListForUser returns the user's usage history, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.DiscountUsage, error) {
	var records []models.DiscountUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
