package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brewtab/ordering-backend/pkg/db/models"
	pkgerrors "github.com/brewtab/ordering-backend/pkg/errors"
)

type menuStore interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListAvailableProducts(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Section is one category with its orderable products.
type Section struct {
	Category models.Category
	Products []models.Product
}

// Menu is the whole browsable menu, grouped and ordered for display.
// Products without a category land in the trailing Uncategorized slice.
type Menu struct {
	Sections      []Section
	Uncategorized []models.Product
}

// Service exposes menu browsing reads.
type Service interface {
	Menu(ctx context.Context) (*Menu, error)
	Product(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	store menuStore
}

// NewService builds the menu service.
func NewService(store menuStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("menu store required")
	}
	return &service{store: store}, nil
}

// Menu loads categories and available products and groups them. A single
// venue's menu is small enough to return whole; ordering follows the
// configured sort order on both levels.
func (s *service) Menu(ctx context.Context) (*Menu, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ListAvailableProducts(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]models.Product)
	var uncategorized []models.Product
	for _, p := range products {
		if p.CategoryID == nil {
			uncategorized = append(uncategorized, p)
			continue
		}
		byCategory[*p.CategoryID] = append(byCategory[*p.CategoryID], p)
	}

	menu := &Menu{Uncategorized: uncategorized}
	for _, c := range categories {
		section := Section{Category: c, Products: byCategory[c.ID]}
		if len(section.Products) == 0 {
			continue
		}
		menu.Sections = append(menu.Sections, section)
	}
	return menu, nil
}

func (s *service) Product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}
