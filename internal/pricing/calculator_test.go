package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/pkg/enums"
)

func TestPriceTenPercentScenario(t *testing.T) {
	t.Parallel()

	drinks := uuid.New()
	cart := []LineItem{withCategory(item(uuid.New(), "10.00", 2), drinks)}
	d := percentDiscount("10")
	snap := snapshotOf(d)

	state := Resolve(snap, cart, Identity{}, SelectionState{})
	result := Price(snap, cart, state)

	assertMoney(t, "subtotal", result.Subtotal, "20.00")
	assertMoney(t, "discount", result.DiscountAmount, "2.00")
	assertMoney(t, "total", result.Total, "18.00")
}

func TestPriceFixedAmountClampedToSubtotal(t *testing.T) {
	t.Parallel()

	cart := []LineItem{item(uuid.New(), "10.00", 2)}
	d := fixedDiscount("50.00")
	snap := snapshotOf(d)

	state := Resolve(snap, cart, Identity{}, SelectionState{})
	result := Price(snap, cart, state)

	assertMoney(t, "discount", result.DiscountAmount, "20.00")
	assertMoney(t, "total", result.Total, "0.00")
}

func TestPriceEmptyCartShortCircuits(t *testing.T) {
	t.Parallel()

	d := percentDiscount("10")
	id := d.ID
	result := Price(snapshotOf(d), nil, SelectionState{GeneralDiscountID: &id})

	if !result.Subtotal.IsZero() || !result.DiscountAmount.IsZero() || !result.Total.IsZero() {
		t.Fatalf("empty cart should price to zero, got %+v", result)
	}
}

func TestPriceGeneralAgainstEligibleItemsOnly(t *testing.T) {
	t.Parallel()

	food := uuid.New()
	drinks := uuid.New()

	d := percentDiscount("10")
	snap := snapshotOf(d)
	snap.Associations[d.ID] = Association{CategoryIDs: idSet(food)}

	cart := []LineItem{
		withCategory(item(uuid.New(), "10.00", 1), food),
		withCategory(item(uuid.New(), "30.00", 1), drinks),
	}

	id := d.ID
	result := Price(snap, cart, SelectionState{GeneralDiscountID: &id})

	// 10% of the 10.00 food line, not of the 40.00 subtotal.
	assertMoney(t, "subtotal", result.Subtotal, "40.00")
	assertMoney(t, "discount", result.DiscountAmount, "1.00")
	assertMoney(t, "total", result.Total, "39.00")
}

func TestPricePerItemAndGeneralCombine(t *testing.T) {
	t.Parallel()

	targetProduct := uuid.New()
	general := percentDiscount("10")

	perItem := fixedDiscount("1.50")
	perItem.Scope = enums.DiscountScopeProductFiltered
	perItem.FilterType = enums.DiscountFilterProduct
	perItem.FilterProductID = &targetProduct

	cart := []LineItem{
		item(targetProduct, "5.00", 2),
		item(uuid.New(), "10.00", 1),
	}
	snap := snapshotOf(general, perItem)

	state := Resolve(snap, cart, Identity{}, SelectionState{})
	result := Price(snap, cart, state)

	// 10% of 20.00 plus 1.50 on the target line.
	assertMoney(t, "subtotal", result.Subtotal, "20.00")
	assertMoney(t, "discount", result.DiscountAmount, "3.50")
	assertMoney(t, "total", result.Total, "16.50")

	applied, ok := result.ItemDiscounts[targetProduct]
	if !ok || applied.DiscountID != perItem.ID {
		t.Fatalf("expected per-item breakdown for %s, got %+v", targetProduct, result.ItemDiscounts)
	}
	assertMoney(t, "item amount", applied.Amount, "1.50")
}

func TestPriceBoundsHold(t *testing.T) {
	t.Parallel()

	carts := [][]LineItem{
		{item(uuid.New(), "0.01", 1)},
		{item(uuid.New(), "3.33", 3), item(uuid.New(), "7.77", 2)},
		{item(uuid.New(), "99.99", 9)},
	}
	discounts := []snapshotBuilder{
		func() Snapshot { return snapshotOf(percentDiscount("33.33")) },
		func() Snapshot { return snapshotOf(fixedDiscount("10000.00")) },
		func() Snapshot { return snapshotOf(percentDiscount("100")) },
	}

	for _, cart := range carts {
		for _, build := range discounts {
			snap := build()
			state := Resolve(snap, cart, Identity{}, SelectionState{})
			result := Price(snap, cart, state)

			if result.DiscountAmount.IsNegative() {
				t.Fatalf("negative discount %s", result.DiscountAmount)
			}
			if result.DiscountAmount.GreaterThan(result.Subtotal) {
				t.Fatalf("discount %s exceeds subtotal %s", result.DiscountAmount, result.Subtotal)
			}
			if !result.Total.Equal(result.Subtotal.Sub(result.DiscountAmount)) {
				t.Fatalf("total %s != subtotal %s - discount %s", result.Total, result.Subtotal, result.DiscountAmount)
			}
		}
	}
}

type snapshotBuilder func() Snapshot

func TestPriceIdempotentOverUnchangedSnapshot(t *testing.T) {
	t.Parallel()

	targetProduct := uuid.New()
	general := percentDiscount("12.5")
	perItem := percentDiscount("7")
	perItem.Scope = enums.DiscountScopeProductFiltered
	perItem.FilterType = enums.DiscountFilterProduct
	perItem.FilterProductID = &targetProduct

	cart := []LineItem{
		item(targetProduct, "3.33", 3),
		item(uuid.New(), "8.10", 1),
	}
	snap := snapshotOf(general, perItem)

	first := Resolve(snap, cart, Identity{}, SelectionState{})
	second := Resolve(snap, cart, Identity{}, first)

	if (first.GeneralDiscountID == nil) != (second.GeneralDiscountID == nil) {
		t.Fatal("selection changed between identical passes")
	}
	if first.GeneralDiscountID != nil && *first.GeneralDiscountID != *second.GeneralDiscountID {
		t.Fatal("general selection drifted between identical passes")
	}

	r1 := Price(snap, cart, first)
	r2 := Price(snap, cart, second)
	if !r1.Subtotal.Equal(r2.Subtotal) || !r1.DiscountAmount.Equal(r2.DiscountAmount) || !r1.Total.Equal(r2.Total) {
		t.Fatalf("pricing not idempotent: %+v vs %+v", r1, r2)
	}
}

func TestComputeDiscountAmountGuards(t *testing.T) {
	t.Parallel()

	base := money("20.00")

	over := percentDiscount("150")
	if got := computeDiscountAmount(over, base); !got.Equal(base) {
		t.Fatalf("over-100%% percentage should clamp to base, got %s", got)
	}

	unknown := percentDiscount("10")
	unknown.Kind = enums.DiscountKind("mystery")
	if got := computeDiscountAmount(unknown, base); !got.IsZero() {
		t.Fatalf("unknown kind should yield zero, got %s", got)
	}

	if got := computeDiscountAmount(percentDiscount("10"), decimal.Zero); !got.IsZero() {
		t.Fatalf("zero base should yield zero, got %s", got)
	}
}

func assertMoney(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(money(want)) {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}
