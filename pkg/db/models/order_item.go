package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem persists one line of a submitted order, including the per-item
// discount that was applied when the order was priced.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name           string          `gorm:"column:name;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity       int             `gorm:"column:quantity;not null"`
	LineTotal      decimal.Decimal `gorm:"column:line_total;type:numeric(10,2);not null"`
	DiscountID     *uuid.UUID      `gorm:"column:discount_id;type:uuid"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	Notes          *string         `gorm:"column:notes"`
}
