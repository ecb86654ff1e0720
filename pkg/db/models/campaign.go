package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign owns a set of discounts and bounds their validity window.
type Campaign struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	Active    bool       `gorm:"column:active;not null;default:false"`
	StartsAt  *time.Time `gorm:"column:starts_at"`
	EndsAt    *time.Time `gorm:"column:ends_at"`
	Discounts []Discount `gorm:"foreignKey:CampaignID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// InWindow reports whether the campaign window covers the provided instant.
// A nil bound is open-ended.
func (c Campaign) InWindow(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}
