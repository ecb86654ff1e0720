package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/pkg/enums"
)

// Discount is a single pricing rule owned by a campaign. Rows are read-only
// from the engine's point of view; catalog data is externally authored and
// not guaranteed clean, so consumers must tolerate malformed filters.
type Discount struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CampaignID       uuid.UUID            `gorm:"column:campaign_id;type:uuid;not null"`
	Name             string               `gorm:"column:name;not null"`
	Kind             enums.DiscountKind   `gorm:"column:kind;type:discount_kind;not null"`
	Value            decimal.Decimal      `gorm:"column:value;type:numeric(10,2);not null"`
	Scope            enums.DiscountScope  `gorm:"column:scope;type:discount_scope;not null"`
	FilterType       enums.DiscountFilter `gorm:"column:filter_type;type:discount_filter;not null;default:'none'"`
	FilterProductID  *uuid.UUID           `gorm:"column:filter_product_id;type:uuid"`
	FilterCategoryID *uuid.UUID           `gorm:"column:filter_category_id;type:uuid"`
	Active           bool                 `gorm:"column:active;not null;default:false"`
	PerUserLimit     *int                 `gorm:"column:per_user_limit"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
