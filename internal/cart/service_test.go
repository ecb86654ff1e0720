package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
)

type memCartStore struct {
	carts map[string]*models.CartRecord

	recordSaves int
	itemSaves   int
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: map[string]*models.CartRecord{}}
}

func (m *memCartStore) FindActiveBySession(ctx context.Context, sessionID string) (*models.CartRecord, error) {
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (m *memCartStore) Create(ctx context.Context, cart *models.CartRecord) error {
	cart.ID = uuid.New()
	stored := *cart
	m.carts[cart.SessionID] = &stored
	return nil
}

func (m *memCartStore) SaveRecord(ctx context.Context, cart *models.CartRecord) error {
	m.recordSaves++
	for _, stored := range m.carts {
		if stored.ID == cart.ID {
			stored.UserID = cart.UserID
			stored.TableCode = cart.TableCode
			stored.Status = cart.Status
			stored.SelectedGeneralDiscountID = cart.SelectedGeneralDiscountID
			stored.UserClearedGeneral = cart.UserClearedGeneral
			return nil
		}
	}
	return nil
}

func (m *memCartStore) CreateItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	for _, stored := range m.carts {
		if stored.ID == item.CartID {
			stored.Items = append(stored.Items, *item)
			return nil
		}
	}
	return nil
}

func (m *memCartStore) SaveItem(ctx context.Context, item *models.CartItem) error {
	m.itemSaves++
	for _, stored := range m.carts {
		for i := range stored.Items {
			if stored.Items[i].ID == item.ID {
				stored.Items[i].Quantity = item.Quantity
				stored.Items[i].Notes = item.Notes
				stored.Items[i].SelectedDiscountID = item.SelectedDiscountID
				return nil
			}
		}
	}
	return nil
}

func (m *memCartStore) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	for _, stored := range m.carts {
		for i := range stored.Items {
			if stored.Items[i].ID == itemID {
				stored.Items = append(stored.Items[:i], stored.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (m *memCartStore) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	for _, stored := range m.carts {
		if stored.ID == cartID {
			stored.Items = nil
		}
	}
	return nil
}

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.byID[id], nil
}

type stubCatalog struct {
	snap pricing.Snapshot
}

func (s *stubCatalog) Snapshot(ctx context.Context) (pricing.Snapshot, error) {
	return s.snap, nil
}

type stubIdentities struct{}

func (stubIdentities) IdentityFor(ctx context.Context, userID *uuid.UUID, snap pricing.Snapshot) (pricing.Identity, error) {
	return pricing.Identity{UserID: userID}, nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func activePercentDiscount(value string) models.Discount {
	return models.Discount{
		ID:         uuid.New(),
		CampaignID: uuid.New(),
		Kind:       enums.DiscountKindPercentage,
		Value:      money(value),
		Scope:      enums.DiscountScopeCart,
		FilterType: enums.DiscountFilterNone,
		Active:     true,
	}
}

type fixture struct {
	svc     Service
	store   *memCartStore
	product *models.Product
}

func newFixture(t *testing.T, discounts ...models.Discount) *fixture {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		Name:      "flat white",
		UnitPrice: money("10.00"),
		Available: true,
	}
	store := newMemCartStore()
	svc, err := NewService(
		store,
		&stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}},
		&stubCatalog{snap: pricing.Snapshot{Discounts: discounts, Associations: map[uuid.UUID]pricing.Association{}}},
		stubIdentities{},
		enums.CurrencyUSD,
		nil,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, store: store, product: product}
}

func TestAddItemPricesCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, activePercentDiscount("10"))

	quote, err := f.svc.AddItem(context.Background(), "sess-1", nil, f.product.ID, 2, nil)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if !quote.Result.Subtotal.Equal(money("20.00")) {
		t.Fatalf("subtotal = %s", quote.Result.Subtotal)
	}
	if !quote.Result.DiscountAmount.Equal(money("2.00")) {
		t.Fatalf("discount = %s", quote.Result.DiscountAmount)
	}
	if !quote.Result.Total.Equal(money("18.00")) {
		t.Fatalf("total = %s", quote.Result.Total)
	}

	// Auto-selection must land in durable storage.
	stored := f.store.carts["sess-1"]
	if stored.SelectedGeneralDiscountID == nil {
		t.Fatal("auto-selected general discount should be persisted")
	}
}

func TestAddItemMergesExistingLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 1, nil); err != nil {
		t.Fatalf("first add: %v", err)
	}
	quote, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 2, nil)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(quote.Cart.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(quote.Cart.Items))
	}
	if quote.Cart.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", quote.Cart.Items[0].Quantity)
	}
}

func TestAddItemRejectsUnknownOrUnavailable(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, uuid.New(), 1, nil); pkgerrors.As(err) == nil {
		t.Fatalf("expected coded error for unknown product, got %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 0, nil); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestQuantityZeroDeletesLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 2, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	quote, err := f.svc.UpdateItemQuantity(ctx, "sess-1", nil, f.product.ID, 0)
	if err != nil {
		t.Fatalf("UpdateItemQuantity: %v", err)
	}
	if len(quote.Cart.Items) != 0 {
		t.Fatal("zero quantity should delete the line")
	}
	if !quote.Result.Subtotal.IsZero() {
		t.Fatalf("empty cart should price to zero, got %s", quote.Result.Subtotal)
	}
}

func TestClearGeneralDiscountIsSticky(t *testing.T) {
	t.Parallel()

	f := newFixture(t, activePercentDiscount("10"))
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 1, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	quote, err := f.svc.ClearGeneralDiscount(ctx, "sess-1", nil)
	if err != nil {
		t.Fatalf("ClearGeneralDiscount: %v", err)
	}
	if quote.Selection.GeneralDiscountID != nil {
		t.Fatal("cleared slot should stay empty")
	}

	// A later read must not re-impose the discount.
	quote, err = f.svc.Get(ctx, "sess-1", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if quote.Selection.GeneralDiscountID != nil {
		t.Fatal("auto-selection must respect the explicit clear across loads")
	}
	if !quote.Result.DiscountAmount.IsZero() {
		t.Fatalf("no discount expected after clear, got %s", quote.Result.DiscountAmount)
	}
}

func TestSelectGeneralDiscountValidates(t *testing.T) {
	t.Parallel()

	d := activePercentDiscount("10")
	f := newFixture(t, d)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 1, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if _, err := f.svc.SelectGeneralDiscount(ctx, "sess-1", nil, uuid.New()); pkgerrors.As(err) == nil {
		t.Fatalf("unknown discount should be rejected, got %v", err)
	}

	quote, err := f.svc.SelectGeneralDiscount(ctx, "sess-1", nil, d.ID)
	if err != nil {
		t.Fatalf("SelectGeneralDiscount: %v", err)
	}
	if quote.Selection.GeneralDiscountID == nil || *quote.Selection.GeneralDiscountID != d.ID {
		t.Fatal("explicit selection should stick")
	}
}

func TestDiscountOptionsListsCandidates(t *testing.T) {
	t.Parallel()

	general := activePercentDiscount("10")
	perItem := activePercentDiscount("5")
	perItem.Scope = enums.DiscountScopeProductFiltered
	perItem.FilterType = enums.DiscountFilterIsPopular

	f := newFixture(t, general, perItem)
	f.product.IsPopular = true
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 1, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	options, err := f.svc.DiscountOptions(ctx, "sess-1", nil)
	if err != nil {
		t.Fatalf("DiscountOptions: %v", err)
	}
	if len(options.General) != 1 || options.General[0].Discount.ID != general.ID {
		t.Fatalf("expected the general candidate, got %+v", options.General)
	}
	if got := options.PerItem[f.product.ID]; len(got) != 1 || got[0].ID != perItem.ID {
		t.Fatalf("expected the per-item candidate, got %+v", got)
	}
}

func TestClearResetsSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, activePercentDiscount("10"))
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "sess-1", nil, f.product.ID, 1, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := f.svc.ClearGeneralDiscount(ctx, "sess-1", nil); err != nil {
		t.Fatalf("ClearGeneralDiscount: %v", err)
	}
	if err := f.svc.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	stored := f.store.carts["sess-1"]
	if len(stored.Items) != 0 {
		t.Fatal("clear should drop all items")
	}
	if stored.UserClearedGeneral {
		t.Fatal("clear should reset the sticky flag with the rest of the state")
	}
}
