package pricing

import (
	"testing"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
)

func snapshotOf(discounts ...models.Discount) Snapshot {
	return Snapshot{Discounts: discounts, Associations: map[uuid.UUID]Association{}}
}

func TestResolveAutoSelectsBestGeneral(t *testing.T) {
	t.Parallel()

	small := percentDiscount("5")
	big := percentDiscount("15")
	cart := []LineItem{item(uuid.New(), "10.00", 2)}

	state := Resolve(snapshotOf(small, big), cart, Identity{}, SelectionState{})
	if state.GeneralDiscountID == nil || *state.GeneralDiscountID != big.ID {
		t.Fatalf("expected %s auto-selected, got %v", big.ID, state.GeneralDiscountID)
	}
}

func TestResolveTieBreaksByLowestID(t *testing.T) {
	t.Parallel()

	a := percentDiscount("10")
	b := percentDiscount("10")
	want := a.ID
	if b.ID.String() < a.ID.String() {
		want = b.ID
	}

	cart := []LineItem{item(uuid.New(), "10.00", 1)}
	state := Resolve(snapshotOf(a, b), cart, Identity{}, SelectionState{})
	if state.GeneralDiscountID == nil || *state.GeneralDiscountID != want {
		t.Fatalf("tie should resolve to lowest id %s, got %v", want, state.GeneralDiscountID)
	}
}

func TestResolveRespectsUserClearedGeneral(t *testing.T) {
	t.Parallel()

	d := percentDiscount("20")
	cart := []LineItem{item(uuid.New(), "10.00", 1)}

	var state SelectionState
	state = Resolve(snapshotOf(d), cart, Identity{}, state)
	if state.GeneralDiscountID == nil {
		t.Fatal("expected auto-selection before the user clears")
	}

	state.ClearGeneral()
	state = Resolve(snapshotOf(d), cart, Identity{}, state)
	if state.GeneralDiscountID != nil {
		t.Fatal("auto-selection must not override an explicit clear")
	}

	// An explicit pick re-enables the slot.
	state.SelectGeneral(d.ID)
	state = Resolve(snapshotOf(d), cart, Identity{}, state)
	if state.GeneralDiscountID == nil || *state.GeneralDiscountID != d.ID {
		t.Fatal("explicit selection should survive the next resolve")
	}
}

func TestResolveClearsStaleGeneralSelection(t *testing.T) {
	t.Parallel()

	gone := percentDiscount("10")
	replacement := percentDiscount("5")
	cart := []LineItem{item(uuid.New(), "10.00", 1)}

	id := gone.ID
	prior := SelectionState{GeneralDiscountID: &id}

	state := Resolve(snapshotOf(replacement), cart, Identity{}, prior)
	if state.GeneralDiscountID == nil || *state.GeneralDiscountID != replacement.ID {
		t.Fatalf("stale selection should be cleared and replaced, got %v", state.GeneralDiscountID)
	}
}

func TestResolveKeepsExplicitNarrowedCartDiscount(t *testing.T) {
	t.Parallel()

	categoryID := uuid.New()
	narrowed := percentDiscount("10")
	snap := snapshotOf(narrowed)
	snap.Associations[narrowed.ID] = Association{CategoryIDs: idSet(categoryID)}

	cart := []LineItem{withCategory(item(uuid.New(), "8.00", 1), categoryID)}

	// Narrowed discounts are never auto-selected as general.
	state := Resolve(snap, cart, Identity{}, SelectionState{})
	if state.GeneralDiscountID != nil {
		t.Fatal("narrowed cart discount must not be auto-selected")
	}

	// But an explicit user pick of one is honored as long as it still
	// matches something in the cart.
	state.SelectGeneral(narrowed.ID)
	state = Resolve(snap, cart, Identity{}, state)
	if state.GeneralDiscountID == nil || *state.GeneralDiscountID != narrowed.ID {
		t.Fatal("explicitly selected narrowed discount should be kept")
	}
	for productID, discountID := range state.ProductDiscounts {
		if discountID == narrowed.ID {
			t.Fatalf("discount in the general slot must not also sit on item %s", productID)
		}
	}

	// Once no item matches the association, the selection is stale.
	mismatch := []LineItem{item(uuid.New(), "8.00", 1)}
	state = Resolve(snap, mismatch, Identity{}, state)
	if state.GeneralDiscountID != nil {
		t.Fatal("selection matching no items should be cleared")
	}
}

func TestResolvePerProductAutoSelection(t *testing.T) {
	t.Parallel()

	soloProduct := uuid.New()
	contestedProduct := uuid.New()

	solo := percentDiscount("10")
	solo.Scope = enums.DiscountScopeProductFiltered
	solo.FilterType = enums.DiscountFilterProduct
	solo.FilterProductID = &soloProduct

	first := percentDiscount("10")
	first.Scope = enums.DiscountScopeProductFiltered
	first.FilterType = enums.DiscountFilterProduct
	first.FilterProductID = &contestedProduct

	second := fixedDiscount("1.00")
	second.Scope = enums.DiscountScopeProductFiltered
	second.FilterType = enums.DiscountFilterProduct
	second.FilterProductID = &contestedProduct

	cart := []LineItem{
		item(soloProduct, "4.00", 1),
		item(contestedProduct, "6.00", 1),
	}

	state := Resolve(snapshotOf(solo, first, second), cart, Identity{}, SelectionState{})
	if got := state.ProductDiscounts[soloProduct]; got != solo.ID {
		t.Fatalf("single candidate should auto-select, got %v", got)
	}
	if _, ok := state.ProductDiscounts[contestedProduct]; ok {
		t.Fatal("two candidates must leave the slot for the user")
	}

	// An explicit pick among the contested pair sticks.
	state.SelectProductDiscount(contestedProduct, second.ID)
	state = Resolve(snapshotOf(solo, first, second), cart, Identity{}, state)
	if got := state.ProductDiscounts[contestedProduct]; got != second.ID {
		t.Fatalf("explicit per-item pick should survive, got %v", got)
	}
}

func TestResolveDropsIneligiblePerProductSelection(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	d := percentDiscount("10")
	d.Scope = enums.DiscountScopeProductFiltered
	d.FilterType = enums.DiscountFilterProduct
	d.FilterProductID = &productID

	cart := []LineItem{item(productID, "4.00", 1)}
	state := Resolve(snapshotOf(d), cart, Identity{}, SelectionState{})
	if state.ProductDiscounts[productID] != d.ID {
		t.Fatal("expected auto-selection")
	}

	d.Active = false
	state = Resolve(snapshotOf(d), cart, Identity{}, state)
	if _, ok := state.ProductDiscounts[productID]; ok {
		t.Fatal("deactivated discount should be dropped from the item")
	}
}

func TestResolveDropsSelectionsForRemovedItems(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	d := percentDiscount("10")
	d.Scope = enums.DiscountScopeProductFiltered
	d.FilterType = enums.DiscountFilterProduct
	d.FilterProductID = &productID

	cart := []LineItem{item(productID, "4.00", 1)}
	state := Resolve(snapshotOf(d), cart, Identity{}, SelectionState{})

	state = Resolve(snapshotOf(d), nil, Identity{}, state)
	if len(state.ProductDiscounts) != 0 {
		t.Fatal("selections for items no longer in the cart should be dropped")
	}
}

func TestResolvePerUserLimit(t *testing.T) {
	t.Parallel()

	limit := 1
	d := percentDiscount("10")
	d.PerUserLimit = &limit
	cart := []LineItem{item(uuid.New(), "10.00", 1)}

	exhausted := uuid.New()
	fresh := uuid.New()

	state := Resolve(snapshotOf(d), cart, Identity{UserID: &exhausted, Usage: map[uuid.UUID]int{d.ID: 1}}, SelectionState{})
	if state.GeneralDiscountID != nil {
		t.Fatal("discount at its per-user limit must be excluded")
	}

	state = Resolve(snapshotOf(d), cart, Identity{UserID: &fresh}, SelectionState{})
	if state.GeneralDiscountID == nil || *state.GeneralDiscountID != d.ID {
		t.Fatal("user without prior usage should get the discount")
	}

	// Guests have no verifiable history, so limited discounts are out.
	state = Resolve(snapshotOf(d), cart, Identity{}, SelectionState{})
	if state.GeneralDiscountID != nil {
		t.Fatal("guest sessions must not receive limited discounts")
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	d := percentDiscount("10")
	cart := []LineItem{item(uuid.New(), "10.00", 1)}
	prior := SelectionState{ProductDiscounts: map[uuid.UUID]uuid.UUID{}}

	_ = Resolve(snapshotOf(d), cart, Identity{}, prior)
	if prior.GeneralDiscountID != nil {
		t.Fatal("Resolve must return a new state, not write through the input")
	}
}

func TestGeneralCandidatesCategoryMismatchExcluded(t *testing.T) {
	t.Parallel()

	food := uuid.New()
	drinks := uuid.New()

	d := percentDiscount("10")
	snap := snapshotOf(d)
	snap.Associations[d.ID] = Association{CategoryIDs: idSet(food)}

	cart := []LineItem{withCategory(item(uuid.New(), "3.00", 2), drinks)}

	if got := GeneralCandidates(snap, cart, Identity{}); len(got) != 0 {
		t.Fatalf("narrowed discount must not appear as a general candidate, got %d", len(got))
	}
	result := Price(snap, cart, Resolve(snap, cart, Identity{}, SelectionState{}))
	if !result.DiscountAmount.IsZero() {
		t.Fatalf("expected zero discount, got %s", result.DiscountAmount)
	}
}
