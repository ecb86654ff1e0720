package pricing

import "sort"

// UsageIntents derives the discount-usage records to persist at order
// submission from a computed result. Guests produce no intents; there is no
// verified identity to attribute the usage to. Intents carry the amount each
// discount actually contributed, with the rounded cart-level amount split
// proportionally when the combined raw amount was clamped to the subtotal.
func UsageIntents(sel SelectionState, result Result, identity Identity) []UsageIntent {
	if identity.UserID == nil {
		return nil
	}

	raw := result.GeneralAmount
	for _, applied := range result.ItemDiscounts {
		raw = raw.Add(applied.Amount)
	}
	if !raw.IsPositive() {
		return nil
	}

	// Scale each contribution so the intents sum to the final rounded
	// discount amount even after clamping.
	scale := result.DiscountAmount.Div(raw)

	var out []UsageIntent
	if sel.GeneralDiscountID != nil && result.GeneralAmount.IsPositive() {
		out = append(out, UsageIntent{
			DiscountID: *sel.GeneralDiscountID,
			UserID:     *identity.UserID,
			Amount:     result.GeneralAmount.Mul(scale).Round(minorUnitPlaces),
		})
	}
	perItem := make([]UsageIntent, 0, len(result.ItemDiscounts))
	for _, applied := range result.ItemDiscounts {
		if !applied.Amount.IsPositive() {
			continue
		}
		perItem = append(perItem, UsageIntent{
			DiscountID: applied.DiscountID,
			UserID:     *identity.UserID,
			Amount:     applied.Amount.Mul(scale).Round(minorUnitPlaces),
		})
	}
	// Map iteration order is not stable; keep the emitted records
	// deterministic for an unchanged result.
	sort.Slice(perItem, func(i, j int) bool {
		return perItem[i].DiscountID.String() < perItem[j].DiscountID.String()
	})
	return append(out, perItem...)
}
