package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
)

// GeneralCandidate pairs a blanket cart-wide discount with the amount it
// would currently yield, so callers can present the list the same way the
// auto-selector ranks it.
type GeneralCandidate struct {
	Discount        models.Discount
	ProjectedAmount decimal.Decimal
}

// GeneralCandidates returns the pure general discounts available to this
// cart and identity, best value first. Ties are broken by lowest discount
// id so the ordering is deterministic across recomputations.
func GeneralCandidates(snap Snapshot, cart []LineItem, identity Identity) []GeneralCandidate {
	var out []GeneralCandidate
	for _, d := range snap.Discounts {
		assoc := snap.associationFor(d.ID)
		if !usable(d, identity) || !pureGeneral(d, assoc) {
			continue
		}
		base := eligibleBase(d, assoc, cart)
		out = append(out, GeneralCandidate{
			Discount:        d,
			ProjectedAmount: computeDiscountAmount(d, base),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		cmp := out[i].ProjectedAmount.Cmp(out[j].ProjectedAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return out[i].Discount.ID.String() < out[j].Discount.ID.String()
	})
	return out
}

// ProductCandidates returns the discounts eligible for one line item under
// the per-product rules, in catalog order.
func ProductCandidates(snap Snapshot, item LineItem, identity Identity) []models.Discount {
	var out []models.Discount
	for _, d := range snap.Discounts {
		assoc := snap.associationFor(d.ID)
		if !usable(d, identity) || pureGeneral(d, assoc) {
			continue
		}
		if isEligible(d, item, assoc) {
			out = append(out, d)
		}
	}
	return out
}

// Resolve reconciles the prior selection with the current snapshot and cart
// and runs the auto-selection policy. The input state is not mutated; the
// caller swaps in the returned value.
//
// General slot: a stale selection (discount gone, inactive, over-limit, or
// matching no item anymore) is cleared silently. Auto-selection then fills
// an empty slot with the highest-value pure general candidate, unless the
// user has explicitly cleared the slot, which pins it empty until they pick
// again. An explicitly chosen cart-scope discount narrowed by an
// association survives here even though it never appears among the
// auto-selection candidates.
//
// Per-item slots: a no-longer-eligible selection is dropped. An empty slot
// is filled only when exactly one candidate applies; with two or more the
// choice is left to the user.
func Resolve(snap Snapshot, cart []LineItem, identity Identity, prior SelectionState) SelectionState {
	state := prior.clone()

	if state.GeneralDiscountID != nil && !generalStillValid(snap, cart, identity, *state.GeneralDiscountID) {
		state.GeneralDiscountID = nil
	}
	if state.GeneralDiscountID == nil && !state.UserClearedGeneral {
		if candidates := GeneralCandidates(snap, cart, identity); len(candidates) > 0 {
			id := candidates[0].Discount.ID
			state.GeneralDiscountID = &id
		}
	}

	for _, item := range cart {
		candidates := ProductCandidates(snap, item, identity)
		// A narrowed cart-scope discount sitting in the general slot is
		// also reachable through the per-item path; keep it out of the
		// per-item slots so it is never counted twice.
		if state.GeneralDiscountID != nil {
			candidates = withoutDiscount(candidates, *state.GeneralDiscountID)
		}

		if selected, ok := state.ProductDiscounts[item.ProductID]; ok {
			if !containsDiscount(candidates, selected) {
				delete(state.ProductDiscounts, item.ProductID)
			}
			continue
		}
		if len(candidates) == 1 {
			state.SelectProductDiscount(item.ProductID, candidates[0].ID)
		}
	}

	// Drop per-item selections for products no longer in the cart.
	if len(state.ProductDiscounts) > 0 {
		inCart := make(map[uuid.UUID]struct{}, len(cart))
		for _, item := range cart {
			inCart[item.ProductID] = struct{}{}
		}
		for productID := range state.ProductDiscounts {
			if _, ok := inCart[productID]; !ok {
				delete(state.ProductDiscounts, productID)
			}
		}
	}

	return state
}

// generalStillValid keeps an existing general selection as long as it
// remains a usable cart-scope discount matching at least one line item.
func generalStillValid(snap Snapshot, cart []LineItem, identity Identity, discountID uuid.UUID) bool {
	d := snap.DiscountByID(discountID)
	if d == nil || d.Scope != enums.DiscountScopeCart || !usable(*d, identity) {
		return false
	}
	assoc := snap.associationFor(d.ID)
	for _, item := range cart {
		if isEligible(*d, item, assoc) {
			return true
		}
	}
	return false
}

func withoutDiscount(list []models.Discount, id uuid.UUID) []models.Discount {
	out := list[:0:0]
	for _, d := range list {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}

func containsDiscount(list []models.Discount, id uuid.UUID) bool {
	for _, d := range list {
		if d.ID == id {
			return true
		}
	}
	return false
}

// eligibleBase sums the line totals of the items a discount applies to.
func eligibleBase(d models.Discount, assoc *Association, cart []LineItem) decimal.Decimal {
	base := decimal.Zero
	for _, item := range cart {
		if isEligible(d, item, assoc) {
			base = base.Add(item.LineTotal())
		}
	}
	return base
}
