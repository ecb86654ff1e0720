package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/internal/pricing"
	"github.com/brewtab/ordering-backend/pkg/db/models"
	"github.com/brewtab/ordering-backend/pkg/enums"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
	"github.com/brewtab/ordering-backend/pkg/metrics"
)

// CartStore is the persistence surface the service needs.
type CartStore interface {
	FindActiveBySession(ctx context.Context, sessionID string) (*models.CartRecord, error)
	Create(ctx context.Context, cart *models.CartRecord) error
	SaveRecord(ctx context.Context, cart *models.CartRecord) error
	CreateItem(ctx context.Context, item *models.CartItem) error
	SaveItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type catalogSource interface {
	Snapshot(ctx context.Context) (pricing.Snapshot, error)
}

type identityResolver interface {
	IdentityFor(ctx context.Context, userID *uuid.UUID, snap pricing.Snapshot) (pricing.Identity, error)
}

// Quote is a cart together with its resolved selection and computed price.
type Quote struct {
	Cart      *models.CartRecord
	Selection pricing.SelectionState
	Result    pricing.Result
}

// Options lists the discounts the session may currently choose from.
type Options struct {
	General  []pricing.GeneralCandidate
	PerItem  map[uuid.UUID][]models.Discount
	Selected pricing.SelectionState
}

// Service owns the cart ledger and its discount selection state.
type Service interface {
	Get(ctx context.Context, sessionID string, userID *uuid.UUID) (*Quote, error)
	AddItem(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID, quantity int, notes *string) (*Quote, error)
	UpdateItemQuantity(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID, quantity int) (*Quote, error)
	RemoveItem(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID) (*Quote, error)
	Clear(ctx context.Context, sessionID string) error

	SelectGeneralDiscount(ctx context.Context, sessionID string, userID *uuid.UUID, discountID uuid.UUID) (*Quote, error)
	ClearGeneralDiscount(ctx context.Context, sessionID string, userID *uuid.UUID) (*Quote, error)
	SelectItemDiscount(ctx context.Context, sessionID string, userID *uuid.UUID, productID, discountID uuid.UUID) (*Quote, error)
	ClearItemDiscount(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID) (*Quote, error)
	DiscountOptions(ctx context.Context, sessionID string, userID *uuid.UUID) (*Options, error)

	AttachTable(ctx context.Context, sessionID, tableCode string) error
	AttachUser(ctx context.Context, sessionID string, userID uuid.UUID) error
}

type service struct {
	store      CartStore
	products   productLoader
	catalog    catalogSource
	identities identityResolver
	currency   enums.Currency
	metrics    *metrics.PricingMetrics
}

// NewService builds the cart service. The metrics collector may be nil.
func NewService(store CartStore, products productLoader, catalog catalogSource, identities identityResolver, currency enums.Currency, pricingMetrics *metrics.PricingMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if identities == nil {
		return nil, fmt.Errorf("identity resolver required")
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("invalid currency %q", currency)
	}
	return &service{
		store:      store,
		products:   products,
		catalog:    catalog,
		identities: identities,
		currency:   currency,
		metrics:    pricingMetrics,
	}, nil
}

func (s *service) Get(ctx context.Context, sessionID string, userID *uuid.UUID) (*Quote, error) {
	cart, err := s.loadOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, cart, "get")
}

func (s *service) AddItem(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID, quantity int, notes *string) (*Quote, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.loadOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	if existing := findItem(cart, productID); existing != nil {
		existing.Quantity += quantity
		if notes != nil {
			existing.Notes = notes
		}
		if err := s.store.SaveItem(ctx, existing); err != nil {
			return nil, err
		}
		return s.quote(ctx, cart, "add_item")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Available {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available")
	}

	item := models.CartItem{
		CartID:     cart.ID,
		ProductID:  product.ID,
		Name:       product.Name,
		UnitPrice:  product.UnitPrice,
		Quantity:   quantity,
		CategoryID: product.CategoryID,
		IsNew:      product.IsNew,
		IsPopular:  product.IsPopular,
		Notes:      notes,
	}
	if err := s.store.CreateItem(ctx, &item); err != nil {
		return nil, err
	}
	cart.Items = append(cart.Items, item)
	return s.quote(ctx, cart, "add_item")
}

// UpdateItemQuantity sets the line's quantity. Zero or less deletes the
// line; the ledger never holds a zero-quantity item.
func (s *service) UpdateItemQuantity(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID, quantity int) (*Quote, error) {
	cart, err := s.requireCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, productID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	if quantity <= 0 {
		return s.removeItem(ctx, cart, item)
	}

	item.Quantity = quantity
	if err := s.store.SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return s.quote(ctx, cart, "update_item")
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID) (*Quote, error) {
	cart, err := s.requireCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	item := findItem(cart, productID)
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	return s.removeItem(ctx, cart, item)
}

func (s *service) removeItem(ctx context.Context, cart *models.CartRecord, item *models.CartItem) (*Quote, error) {
	if err := s.store.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}
	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ID != item.ID {
			kept = append(kept, it)
		}
	}
	cart.Items = kept
	return s.quote(ctx, cart, "remove_item")
}

// Clear empties the ledger and resets the selection to its initial state.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	cart, err := s.store.FindActiveBySession(ctx, sessionID)
	if err != nil || cart == nil {
		return err
	}
	if err := s.store.DeleteItems(ctx, cart.ID); err != nil {
		return err
	}
	cart.SelectedGeneralDiscountID = nil
	cart.UserClearedGeneral = false
	return s.store.SaveRecord(ctx, cart)
}

func (s *service) SelectGeneralDiscount(ctx context.Context, sessionID string, userID *uuid.UUID, discountID uuid.UUID) (*Quote, error) {
	return s.mutateSelection(ctx, sessionID, userID, func(state *pricing.SelectionState) {
		state.SelectGeneral(discountID)
	}, func(resolved pricing.SelectionState) error {
		if resolved.GeneralDiscountID == nil || *resolved.GeneralDiscountID != discountID {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount not applicable to this cart")
		}
		return nil
	})
}

func (s *service) ClearGeneralDiscount(ctx context.Context, sessionID string, userID *uuid.UUID) (*Quote, error) {
	return s.mutateSelection(ctx, sessionID, userID, func(state *pricing.SelectionState) {
		state.ClearGeneral()
	}, nil)
}

func (s *service) SelectItemDiscount(ctx context.Context, sessionID string, userID *uuid.UUID, productID, discountID uuid.UUID) (*Quote, error) {
	return s.mutateSelection(ctx, sessionID, userID, func(state *pricing.SelectionState) {
		state.SelectProductDiscount(productID, discountID)
	}, func(resolved pricing.SelectionState) error {
		if resolved.ProductDiscounts[productID] != discountID {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount not applicable to this item")
		}
		return nil
	})
}

// ClearItemDiscount drops the per-item choice. There is no sticky cleared
// flag for items; a sole remaining candidate will be auto-selected again on
// the next pass.
func (s *service) ClearItemDiscount(ctx context.Context, sessionID string, userID *uuid.UUID, productID uuid.UUID) (*Quote, error) {
	return s.mutateSelection(ctx, sessionID, userID, func(state *pricing.SelectionState) {
		state.ClearProductDiscount(productID)
	}, nil)
}

func (s *service) DiscountOptions(ctx context.Context, sessionID string, userID *uuid.UUID) (*Options, error) {
	quote, err := s.Get(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.IdentityFor(ctx, quote.Cart.UserID, snap)
	if err != nil {
		return nil, err
	}

	items := lineItems(quote.Cart.Items)
	perItem := make(map[uuid.UUID][]models.Discount, len(items))
	for _, item := range items {
		if candidates := pricing.ProductCandidates(snap, item, identity); len(candidates) > 0 {
			perItem[item.ProductID] = candidates
		}
	}
	return &Options{
		General:  pricing.GeneralCandidates(snap, items, identity),
		PerItem:  perItem,
		Selected: quote.Selection,
	}, nil
}

func (s *service) AttachTable(ctx context.Context, sessionID, tableCode string) error {
	code := strings.TrimSpace(tableCode)
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "table code required")
	}
	cart, err := s.loadOrCreate(ctx, sessionID, nil)
	if err != nil {
		return err
	}
	cart.TableCode = &code
	return s.store.SaveRecord(ctx, cart)
}

// AttachUser binds a freshly authenticated user to the session's cart so
// limit checks and usage attribution see the identity.
func (s *service) AttachUser(ctx context.Context, sessionID string, userID uuid.UUID) error {
	cart, err := s.loadOrCreate(ctx, sessionID, &userID)
	if err != nil {
		return err
	}
	if cart.UserID != nil && *cart.UserID == userID {
		return nil
	}
	cart.UserID = &userID
	return s.store.SaveRecord(ctx, cart)
}

func (s *service) loadOrCreate(ctx context.Context, sessionID string, userID *uuid.UUID) (*models.CartRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	cart, err := s.store.FindActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart = &models.CartRecord{
		SessionID: sessionID,
		UserID:    userID,
		Status:    enums.CartStatusActive,
		Currency:  s.currency,
	}
	if err := s.store.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) requireCart(ctx context.Context, sessionID string) (*models.CartRecord, error) {
	cart, err := s.store.FindActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for session")
	}
	return cart, nil
}

// mutateSelection applies one selection mutator, re-runs the resolve pass,
// optionally verifies the outcome, and persists whatever the pass settled
// on. Invalid choices never reach storage; the resolve pass simply refuses
// them and the verifier reports it.
func (s *service) mutateSelection(
	ctx context.Context,
	sessionID string,
	userID *uuid.UUID,
	mutate func(*pricing.SelectionState),
	verify func(pricing.SelectionState) error,
) (*Quote, error) {
	cart, err := s.requireCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID != nil && cart.UserID == nil {
		cart.UserID = userID
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.IdentityFor(ctx, cart.UserID, snap)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveRecompute("selection", time.Since(start))
	}()

	state := selectionFrom(cart)
	mutate(&state)
	resolved := pricing.Resolve(snap, lineItems(cart.Items), identity, state)
	if verify != nil {
		if err := verify(resolved); err != nil {
			return nil, err
		}
	}

	if err := s.persistSelection(ctx, cart, resolved); err != nil {
		return nil, err
	}
	return &Quote{
		Cart:      cart,
		Selection: resolved,
		Result:    pricing.Price(snap, lineItems(cart.Items), resolved),
	}, nil
}

// quote runs the full pipeline: snapshot, identity, resolve, persist any
// selection drift, price.
func (s *service) quote(ctx context.Context, cart *models.CartRecord, trigger string) (*Quote, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveRecompute(trigger, time.Since(start))
	}()

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.IdentityFor(ctx, cart.UserID, snap)
	if err != nil {
		return nil, err
	}

	resolved := pricing.Resolve(snap, lineItems(cart.Items), identity, selectionFrom(cart))
	if err := s.persistSelection(ctx, cart, resolved); err != nil {
		return nil, err
	}
	return &Quote{
		Cart:      cart,
		Selection: resolved,
		Result:    pricing.Price(snap, lineItems(cart.Items), resolved),
	}, nil
}

// persistSelection writes the resolved state back onto the record and its
// items, touching storage only for rows that actually changed.
func (s *service) persistSelection(ctx context.Context, cart *models.CartRecord, state pricing.SelectionState) error {
	recordChanged := cart.UserClearedGeneral != state.UserClearedGeneral ||
		!uuidPtrEqual(cart.SelectedGeneralDiscountID, state.GeneralDiscountID)
	if recordChanged {
		cart.SelectedGeneralDiscountID = copyUUIDPtr(state.GeneralDiscountID)
		cart.UserClearedGeneral = state.UserClearedGeneral
		if err := s.store.SaveRecord(ctx, cart); err != nil {
			return err
		}
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		var want *uuid.UUID
		if id, ok := state.ProductDiscounts[item.ProductID]; ok {
			want = &id
		}
		if uuidPtrEqual(item.SelectedDiscountID, want) {
			continue
		}
		item.SelectedDiscountID = copyUUIDPtr(want)
		if err := s.store.SaveItem(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// selectionFrom reassembles the engine's selection value from the durable
// columns.
func selectionFrom(cart *models.CartRecord) pricing.SelectionState {
	state := pricing.SelectionState{
		GeneralDiscountID:  copyUUIDPtr(cart.SelectedGeneralDiscountID),
		UserClearedGeneral: cart.UserClearedGeneral,
	}
	for _, item := range cart.Items {
		if item.SelectedDiscountID != nil {
			if state.ProductDiscounts == nil {
				state.ProductDiscounts = make(map[uuid.UUID]uuid.UUID)
			}
			state.ProductDiscounts[item.ProductID] = *item.SelectedDiscountID
		}
	}
	return state
}

func lineItems(items []models.CartItem) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.LineItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			CategoryID: item.CategoryID,
			IsNew:      item.IsNew,
			IsPopular:  item.IsPopular,
		})
	}
	return out
}

func findItem(cart *models.CartRecord, productID uuid.UUID) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	out := *id
	return &out
}
