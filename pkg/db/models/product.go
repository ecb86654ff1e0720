package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a menu entry the venue sells.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	CategoryID  *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	ImageURL    *string         `gorm:"column:image_url"`
	IsNew       bool            `gorm:"column:is_new;not null;default:false"`
	IsPopular   bool            `gorm:"column:is_popular;not null;default:false"`
	Available   bool            `gorm:"column:available;not null;default:true"`
	SortOrder   int             `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
