package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/pkg/db/models"
)

// LineItem is the engine's view of one cart line. Quantity is at least 1;
// the cart ledger deletes rows instead of storing a zero quantity.
type LineItem struct {
	ProductID  uuid.UUID
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	CategoryID *uuid.UUID
	IsNew      bool
	IsPopular  bool
}

// LineTotal returns unit price times quantity, unrounded.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Association whitelists the products and categories a discount may apply to.
// An association with both sets empty imposes no restriction.
type Association struct {
	ProductIDs  map[uuid.UUID]struct{}
	CategoryIDs map[uuid.UUID]struct{}
}

func (a Association) narrows() bool {
	return len(a.ProductIDs) > 0 || len(a.CategoryIDs) > 0
}

// Snapshot is an immutable view of the discount catalog taken for one
// pricing pass. Discounts and associations must come from the same read so
// eligibility decisions see a mutually consistent pair.
type Snapshot struct {
	Discounts    []models.Discount
	Associations map[uuid.UUID]Association
}

// DiscountByID returns the snapshot row for the given id, or nil.
func (s Snapshot) DiscountByID(id uuid.UUID) *models.Discount {
	for i := range s.Discounts {
		if s.Discounts[i].ID == id {
			return &s.Discounts[i]
		}
	}
	return nil
}

func (s Snapshot) associationFor(id uuid.UUID) *Association {
	if s.Associations == nil {
		return nil
	}
	if a, ok := s.Associations[id]; ok {
		return &a
	}
	return nil
}

// Identity carries the optional authenticated user plus their prior usage
// counts for limit-bearing discounts. A nil UserID means a guest session.
type Identity struct {
	UserID *uuid.UUID
	Usage  map[uuid.UUID]int
}

// allows reports whether per-user limits permit this discount for the
// current identity. Guests never qualify for limited discounts since their
// usage history cannot be verified.
func (id Identity) allows(d models.Discount) bool {
	if d.PerUserLimit == nil {
		return true
	}
	if id.UserID == nil {
		return false
	}
	return id.Usage[d.ID] < *d.PerUserLimit
}

// SelectionState records which discounts are applied to the active cart.
// It is a plain value owned by the hosting cart; all writes go through the
// mutators below so UserClearedGeneral stays consistent.
type SelectionState struct {
	GeneralDiscountID  *uuid.UUID
	UserClearedGeneral bool
	ProductDiscounts   map[uuid.UUID]uuid.UUID
}

// SelectGeneral applies an explicit general-discount choice and re-enables
// auto-selection for future passes.
func (s *SelectionState) SelectGeneral(discountID uuid.UUID) {
	id := discountID
	s.GeneralDiscountID = &id
	s.UserClearedGeneral = false
}

// ClearGeneral removes the general discount and pins the slot empty until
// the user explicitly selects again.
func (s *SelectionState) ClearGeneral() {
	s.GeneralDiscountID = nil
	s.UserClearedGeneral = true
}

// SelectProductDiscount applies an explicit per-item choice.
func (s *SelectionState) SelectProductDiscount(productID, discountID uuid.UUID) {
	if s.ProductDiscounts == nil {
		s.ProductDiscounts = make(map[uuid.UUID]uuid.UUID)
	}
	s.ProductDiscounts[productID] = discountID
}

// ClearProductDiscount removes the per-item choice for one product.
func (s *SelectionState) ClearProductDiscount(productID uuid.UUID) {
	delete(s.ProductDiscounts, productID)
}

// Reset returns the state to its initial empty form, used when the cart is
// cleared after order submission.
func (s *SelectionState) Reset() {
	s.GeneralDiscountID = nil
	s.UserClearedGeneral = false
	s.ProductDiscounts = nil
}

func (s SelectionState) clone() SelectionState {
	out := SelectionState{
		UserClearedGeneral: s.UserClearedGeneral,
	}
	if s.GeneralDiscountID != nil {
		id := *s.GeneralDiscountID
		out.GeneralDiscountID = &id
	}
	if len(s.ProductDiscounts) > 0 {
		out.ProductDiscounts = make(map[uuid.UUID]uuid.UUID, len(s.ProductDiscounts))
		for k, v := range s.ProductDiscounts {
			out.ProductDiscounts[k] = v
		}
	}
	return out
}

// Result is the computed price for one cart and selection. Total always
// equals Subtotal minus DiscountAmount exactly; rounding is applied to the
// discount amount once, at the end of the pipeline.
type Result struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal

	// Breakdown used for order persistence and usage intents.
	GeneralAmount decimal.Decimal
	ItemDiscounts map[uuid.UUID]ItemDiscount
}

// ItemDiscount is the applied per-item discount and its computed amount.
type ItemDiscount struct {
	DiscountID uuid.UUID
	Amount     decimal.Decimal
}

// UsageIntent describes one discount application to be recorded against a
// user at order submission. Persistence is advisory; a failed write must
// not roll back the order.
type UsageIntent struct {
	DiscountID uuid.UUID
	UserID     uuid.UUID
	Amount     decimal.Decimal
}
