package models

import (
	"time"

	"github.com/google/uuid"
)

// VenueTable is a physical table with a printed QR code.
type VenueTable struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	Label     string    `gorm:"column:label;not null"`
	Seats     int       `gorm:"column:seats;not null;default:2"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
