package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountUsage records that a discount was applied for a user on an order.
// Rows feed the per-user limit checks; writes are advisory and never block
// order placement.
type DiscountUsage struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DiscountID uuid.UUID       `gorm:"column:discount_id;type:uuid;not null;index:idx_discount_usage_user"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index:idx_discount_usage_user"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
