package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem snapshots one menu line inside a CartRecord. Price and flags are
// copied from the product at add time so a pricing pass never re-reads the
// menu mid-computation. Quantity is always >= 1; the mutator that would
// produce zero deletes the row instead.
type CartItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID             uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name               string          `gorm:"column:name;not null"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity           int             `gorm:"column:quantity;not null"`
	CategoryID         *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	IsNew              bool            `gorm:"column:is_new;not null;default:false"`
	IsPopular          bool            `gorm:"column:is_popular;not null;default:false"`
	Notes              *string         `gorm:"column:notes"`
	SelectedDiscountID *uuid.UUID      `gorm:"column:selected_discount_id;type:uuid"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
