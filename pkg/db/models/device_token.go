package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceToken maps a client session (and optionally a user) to a push
// notification token for order-status updates.
type DeviceToken struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID string     `gorm:"column:session_id;not null;uniqueIndex"`
	UserID    *uuid.UUID `gorm:"column:user_id;type:uuid"`
	Token     string     `gorm:"column:token;not null"`
	Platform  string     `gorm:"column:platform;not null;default:'unknown'"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
