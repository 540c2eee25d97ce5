package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/dukerupert/vanir/internal/repository"
)

// CatalogService provides read access to products, positions, and delivery
// options, with discounts already applied to the prices it returns.
type CatalogService interface {
	ListProducts(ctx context.Context, categoryID int64) ([]ProductListing, error)
	GetProduct(ctx context.Context, id int64) (*ProductDetail, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListDelivers(ctx context.Context) ([]domain.Deliver, error)
}

// ProductListing is a catalog page entry.
type ProductListing struct {
	Product  domain.Product
	MinPrice decimal.Decimal
}

// PositionOffer is one seller's listing with its effective price.
type PositionOffer struct {
	Position domain.ProductPosition

	// Price is the effective unit price after any discount.
	Price decimal.Decimal

	// Discounted reports whether an offer moved the price off list.
	Discounted bool
}

// ProductDetail is a product page: the product and all its seller positions.
type ProductDetail struct {
	Product   domain.Product
	Positions []PositionOffer
}

type catalogService struct {
	repo   repository.Querier
	engine *pricing.Engine
}

// NewCatalogService creates a CatalogService instance.
func NewCatalogService(repo repository.Querier, engine *pricing.Engine) CatalogService {
	return &catalogService{repo: repo, engine: engine}
}

func (s *catalogService) ListProducts(ctx context.Context, categoryID int64) ([]ProductListing, error) {
	rows, err := s.repo.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_products", "failed to list products")
	}
	listings := make([]ProductListing, len(rows))
	for i, r := range rows {
		listings[i] = ProductListing{Product: r.Product, MinPrice: r.MinPrice}
	}
	return listings, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, domain.Internal(err, "catalog.get_product", "failed to get product")
	}

	positions, err := s.repo.ListPositionsForProduct(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, "catalog.get_product", "failed to list positions")
	}

	detail := &ProductDetail{Product: product, Positions: make([]PositionOffer, len(positions))}
	for i, pos := range positions {
		price, err := s.engine.PositionPrice(ctx, pos)
		if err != nil {
			return nil, domain.Internal(err, "catalog.get_product", "failed to price position")
		}
		detail.Positions[i] = PositionOffer{
			Position:   pos,
			Price:      price,
			Discounted: !price.Equal(pos.Price.Round(2)),
		}
	}
	return detail, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_categories", "failed to list categories")
	}
	return categories, nil
}

func (s *catalogService) ListDelivers(ctx context.Context) ([]domain.Deliver, error) {
	delivers, err := s.repo.ListDelivers(ctx)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list_delivers", "failed to list delivery options")
	}
	return delivers, nil
}
