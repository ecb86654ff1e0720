package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/pkg/enums"
)

// Order is a submitted, immutable snapshot of a cart at checkout time. The
// embedded totals are the PricingResult computed server-side at submission.
type Order struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    int64             `gorm:"column:order_number;autoIncrement;uniqueIndex"`
	SessionID      string            `gorm:"column:session_id;not null;index"`
	UserID         *uuid.UUID        `gorm:"column:user_id;type:uuid"`
	TableCode      string            `gorm:"column:table_code;not null"`
	Status         enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'placed'"`
	Currency       enums.Currency    `gorm:"column:currency;not null;default:'USD'"`
	Subtotal       decimal.Decimal   `gorm:"column:subtotal;type:numeric(10,2);not null"`
	DiscountAmount decimal.Decimal   `gorm:"column:discount_amount;type:numeric(10,2);not null"`
	Total          decimal.Decimal   `gorm:"column:total;type:numeric(10,2);not null"`
	Notes          *string           `gorm:"column:notes"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PlacedAt       time.Time         `gorm:"column:placed_at;autoCreateTime"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
