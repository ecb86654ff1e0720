package pricing

import (
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
)

// isEligible reports whether one discount applies to one line item. Pure
// predicate with no side effects; malformed catalog rows are never eligible
// rather than an error, since one bad row must not break pricing for the
// whole cart.
//
// When an association row exists it replaces the discount's own filter
// entirely. With both product and category sets non-empty the match is
// inclusive: the item qualifies if either set contains it. That mirrors the
// behavior the business has been running with; see DESIGN.md before
// changing it to AND semantics.
func isEligible(d models.Discount, item LineItem, assoc *Association) bool {
	if !d.Active {
		return false
	}

	if assoc != nil {
		productMatch := len(assoc.ProductIDs) == 0
		if !productMatch {
			_, productMatch = assoc.ProductIDs[item.ProductID]
		}
		categoryMatch := len(assoc.CategoryIDs) == 0
		if !categoryMatch && item.CategoryID != nil {
			_, categoryMatch = assoc.CategoryIDs[*item.CategoryID]
		}

		switch {
		case len(assoc.ProductIDs) > 0 && len(assoc.CategoryIDs) > 0:
			return productMatch || categoryMatch
		case len(assoc.ProductIDs) > 0:
			return productMatch
		case len(assoc.CategoryIDs) > 0:
			return categoryMatch
		default:
			return true
		}
	}

	switch d.FilterType {
	case enums.DiscountFilterNone:
		return true
	case enums.DiscountFilterProduct:
		if d.FilterProductID == nil {
			return false
		}
		return item.ProductID == *d.FilterProductID
	case enums.DiscountFilterCategory:
		if d.FilterCategoryID == nil || item.CategoryID == nil {
			return false
		}
		return *item.CategoryID == *d.FilterCategoryID
	case enums.DiscountFilterIsNew:
		return item.IsNew
	case enums.DiscountFilterIsPopular:
		return item.IsPopular
	default:
		return false
	}
}

// usable gates a discount into candidate lists at all: it must be active,
// carry a non-negative value, and clear its per-user limit for the current
// identity.
func usable(d models.Discount, identity Identity) bool {
	if !d.Active {
		return false
	}
	if d.Value.IsNegative() {
		return false
	}
	return identity.allows(d)
}

// pureGeneral reports whether a discount qualifies as a blanket cart-wide
// candidate: cart scope, no filter, and no association narrowing it to
// specific products or categories. Everything else is evaluated per item,
// even when its nominal scope says cart.
func pureGeneral(d models.Discount, assoc *Association) bool {
	if d.Scope != enums.DiscountScopeCart {
		return false
	}
	if d.FilterType != enums.DiscountFilterNone {
		return false
	}
	return assoc == nil || !assoc.narrows()
}
