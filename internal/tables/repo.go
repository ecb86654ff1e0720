package tables

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brewtab/ordering-backend/pkg/db/models"
)

// Repository reads venue table definitions.
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

// FindActiveByCode loads an active table by its QR code, or nil.
func (r *Repository) FindActiveByCode(ctx context.Context, code string) (*models.VenueTable, error) {
	var table models.VenueTable
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", code, true).
		First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// ListActive returns every active table ordered by label.
func (r *Repository) ListActive(ctx context.Context) ([]models.VenueTable, error) {
	var tables []models.VenueTable
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("label ASC").
		Find(&tables).Error
	if err != nil {
		return nil, err
	}
	return tables, nil
}
