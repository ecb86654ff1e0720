package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/pkg/enums"
)

// CartRecord is the persisted cart ledger for one client session. The
// discount selection columns hold the durable half of the engine's
// SelectionState; they are written only through the cart service mutators.
type CartRecord struct {
	ID                        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID                 string           `gorm:"column:session_id;not null;index"`
	UserID                    *uuid.UUID       `gorm:"column:user_id;type:uuid"`
	TableCode                 *string          `gorm:"column:table_code"`
	Status                    enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	Currency                  enums.Currency   `gorm:"column:currency;not null;default:'USD'"`
	SelectedGeneralDiscountID *uuid.UUID       `gorm:"column:selected_general_discount_id;type:uuid"`
	UserClearedGeneral        bool             `gorm:"column:user_cleared_general;not null;default:false"`
	Items                     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt                 time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
