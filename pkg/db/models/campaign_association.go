package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/brewtab/ordering-backend/pkg/db/types"
)

// CampaignAssociation is the explicit whitelist row narrowing a discount to
// specific products and/or categories. When a row exists for a discount it
// overrides the discount's own filter entirely.
type CampaignAssociation struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DiscountID  uuid.UUID          `gorm:"column:discount_id;type:uuid;not null;uniqueIndex"`
	ProductIDs  dbtypes.UUIDArray  `gorm:"column:product_ids;type:uuid[]"`
	CategoryIDs dbtypes.UUIDArray  `gorm:"column:category_ids;type:uuid[]"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
