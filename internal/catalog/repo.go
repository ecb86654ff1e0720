package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/db/models"
)

// Repository reads the discount catalog. All reads for one snapshot happen
// inside a single transaction so discounts and associations stay mutually
// consistent.
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

// LoadSnapshot reads active in-window discounts and their association rows
// as one consistent view.
func (r *Repository) LoadSnapshot(ctx context.Context, now time.Time) (pricing.Snapshot, error) {
	var snap pricing.Snapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var discounts []models.Discount
		if err := tx.
			Joins("JOIN campaigns ON campaigns.id = discounts.campaign_id").
			Where("discounts.active = ?", true).
			Where("campaigns.active = ?", true).
			Where("campaigns.starts_at IS NULL OR campaigns.starts_at <= ?", now).
			Where("campaigns.ends_at IS NULL OR campaigns.ends_at >= ?", now).
			Order("discounts.id").
			Find(&discounts).Error; err != nil {
			return err
		}

		discountIDs := make([]uuid.UUID, 0, len(discounts))
		for _, d := range discounts {
			discountIDs = append(discountIDs, d.ID)
		}

		associations := map[uuid.UUID]pricing.Association{}
		if len(discountIDs) > 0 {
			var rows []models.CampaignAssociation
			if err := tx.Where("discount_id IN ?", discountIDs).Find(&rows).Error; err != nil {
				return err
			}
			for _, row := range rows {
				associations[row.DiscountID] = pricing.Association{
					ProductIDs:  row.ProductIDs.ToSet(),
					CategoryIDs: row.CategoryIDs.ToSet(),
				}
			}
		}

		snap = pricing.Snapshot{Discounts: discounts, Associations: associations}
		return nil
	})
	if err != nil {
		return pricing.Snapshot{}, err
	}
	return snap, nil
}
