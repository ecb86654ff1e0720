package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
)

// minorUnitPlaces is the rounding precision for the discount amount. Prices
// are stored at two decimal places already, so only the discount term can
// pick up extra precision (percentage math).
const minorUnitPlaces = 2

// computeDiscountAmount returns the amount one discount yields against a
// base. Fixed amounts never exceed the base; the result is clamped to
// [0, base] as a final guard either way.
func computeDiscountAmount(d models.Discount, base decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch d.Kind {
	case enums.DiscountKindPercentage:
		amount = base.Mul(d.Value).Div(decimal.NewFromInt(100))
	case enums.DiscountKindFixedAmount:
		amount = decimal.Min(d.Value, base)
	default:
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(base) {
		return base
	}
	return amount
}

// Price computes the cart total for the given selection. It reads the
// snapshot and selection without mutating either, so repeated calls over
// unchanged inputs return identical results.
//
// The general discount is applied against the sum of only the items it is
// eligible for, which differs from the full subtotal whenever an
// association narrows a nominally cart-wide discount. Rounding happens once
// on the combined discount amount; the total is derived by exact
// subtraction so Subtotal - DiscountAmount = Total always holds.
func Price(snap Snapshot, cart []LineItem, sel SelectionState) Result {
	subtotal := decimal.Zero
	for _, item := range cart {
		subtotal = subtotal.Add(item.LineTotal())
	}
	if !subtotal.IsPositive() {
		return Result{
			Subtotal:       decimal.Zero,
			DiscountAmount: decimal.Zero,
			Total:          decimal.Zero,
			GeneralAmount:  decimal.Zero,
		}
	}

	generalAmount := decimal.Zero
	if sel.GeneralDiscountID != nil {
		if d := snap.DiscountByID(*sel.GeneralDiscountID); d != nil {
			base := eligibleBase(*d, snap.associationFor(d.ID), cart)
			generalAmount = computeDiscountAmount(*d, base)
		}
	}

	itemDiscounts := make(map[uuid.UUID]ItemDiscount)
	productTotal := decimal.Zero
	for _, item := range cart {
		discountID, ok := sel.ProductDiscounts[item.ProductID]
		if !ok {
			continue
		}
		d := snap.DiscountByID(discountID)
		if d == nil {
			continue
		}
		amount := computeDiscountAmount(*d, item.LineTotal())
		itemDiscounts[item.ProductID] = ItemDiscount{DiscountID: d.ID, Amount: amount}
		productTotal = productTotal.Add(amount)
	}

	discountAmount := decimal.Min(generalAmount.Add(productTotal), subtotal)
	discountAmount = discountAmount.Round(minorUnitPlaces)

	return Result{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          subtotal.Sub(discountAmount),
		GeneralAmount:  generalAmount,
		ItemDiscounts:  itemDiscounts,
	}
}
