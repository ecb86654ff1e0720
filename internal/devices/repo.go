package devices

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/brewtab/ordering-backend/pkg/db/models"
)

// Repository persists push notification tokens.
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

// Upsert inserts or replaces the session's token registration.
func (r *Repository) Upsert(ctx context.Context, token *models.DeviceToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "token", "platform", "updated_at"}),
		}).
		Create(token).Error
}

// FindBySession loads the session's registration, or nil.
func (r *Repository) FindBySession(ctx context.Context, sessionID string) (*models.DeviceToken, error) {
	var token models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteBySession removes the session's registration.
func (r *Repository) DeleteBySession(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).
		Delete(&models.DeviceToken{}, "session_id = ?", sessionID).Error
}
