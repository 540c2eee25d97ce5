package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
)

const positionColumns = `
	pp.id, pp.product_id, pp.seller_id, p.category_id, p.title, s.title,
	pp.price, pp.quantity, pp.free_shipping, pp.created_at, pp.updated_at
FROM product_positions pp
JOIN products p ON p.id = pp.product_id
JOIN sellers s ON s.id = pp.seller_id`

func scanPosition(row pgx.Row) (domain.ProductPosition, error) {
	var pos domain.ProductPosition
	var price pgtype.Numeric
	err := row.Scan(
		&pos.ID, &pos.ProductID, &pos.SellerID, &pos.CategoryID,
		&pos.ProductTitle, &pos.SellerTitle,
		&price, &pos.Quantity, &pos.FreeShipping, &pos.CreatedAt, &pos.UpdatedAt,
	)
	if err != nil {
		return domain.ProductPosition{}, err
	}
	pos.Price = numericToDecimal(price)
	return pos, nil
}

const getPositionByID = `SELECT` + positionColumns + `
WHERE pp.id = $1 AND p.is_deleted = false`

// GetPositionByID fetches a single product position with its product and
// seller titles joined in.
func (q *Queries) GetPositionByID(ctx context.Context, id int64) (domain.ProductPosition, error) {
	return scanPosition(q.db.QueryRow(ctx, getPositionByID, id))
}

const listPositionsByIDs = `SELECT` + positionColumns + `
WHERE pp.id = ANY($1::bigint[]) AND p.is_deleted = false
ORDER BY pp.id`

// ListPositionsByIDs fetches the positions for a set of IDs. Positions that
// no longer exist are simply absent from the result.
func (q *Queries) ListPositionsByIDs(ctx context.Context, ids []int64) ([]domain.ProductPosition, error) {
	rows, err := q.db.Query(ctx, listPositionsByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []domain.ProductPosition
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

const listPositionsForProduct = `SELECT` + positionColumns + `
WHERE pp.product_id = $1 AND p.is_deleted = false
ORDER BY pp.price, pp.id`

// ListPositionsForProduct fetches all seller positions of one product,
// cheapest first.
func (q *Queries) ListPositionsForProduct(ctx context.Context, productID int64) ([]domain.ProductPosition, error) {
	rows, err := q.db.Query(ctx, listPositionsForProduct, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []domain.ProductPosition
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

const getProductByID = `
SELECT id, title, description, category_id, is_deleted, created_at, updated_at
FROM products
WHERE id = $1 AND is_deleted = false`

// GetProductByID fetches one product.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := q.db.QueryRow(ctx, getProductByID, id).Scan(
		&p.ID, &p.Title, &p.Description, &p.CategoryID,
		&p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// ProductListRow is a catalog listing entry: a product and the lowest price
// among its positions.
type ProductListRow struct {
	Product  domain.Product
	MinPrice decimal.Decimal
}

const listProducts = `
SELECT p.id, p.title, p.description, p.category_id, p.is_deleted,
	p.created_at, p.updated_at, COALESCE(MIN(pp.price), 0)
FROM products p
LEFT JOIN product_positions pp ON pp.product_id = p.id
WHERE p.is_deleted = false AND ($1::bigint = 0 OR p.category_id = $1)
GROUP BY p.id
ORDER BY p.id`

// ListProducts fetches the catalog, optionally filtered by category.
// A zero categoryID means all categories.
func (q *Queries) ListProducts(ctx context.Context, categoryID int64) ([]ProductListRow, error) {
	rows, err := q.db.Query(ctx, listProducts, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductListRow
	for rows.Next() {
		var r ProductListRow
		var minPrice pgtype.Numeric
		err := rows.Scan(
			&r.Product.ID, &r.Product.Title, &r.Product.Description,
			&r.Product.CategoryID, &r.Product.IsDeleted,
			&r.Product.CreatedAt, &r.Product.UpdatedAt, &minPrice,
		)
		if err != nil {
			return nil, err
		}
		r.MinPrice = numericToDecimal(minPrice)
		products = append(products, r)
	}
	return products, rows.Err()
}

const listCategories = `
SELECT id, title, parent_id, is_deleted
FROM categories
WHERE is_deleted = false
ORDER BY title`

// ListCategories fetches all live categories.
func (q *Queries) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.ParentID, &c.IsDeleted); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const listActiveOffers = `
SELECT o.id, o.description, o.priority, o.kind, o.value,
	o.date_start, o.date_end, o.is_active
FROM offers o
WHERE o.is_active = true
	AND o.date_start <= (($3::timestamptz) AT TIME ZONE 'UTC')::date
	AND o.date_end >= (($3::timestamptz) AT TIME ZONE 'UTC')::date
	AND (
		EXISTS (SELECT 1 FROM offer_products op WHERE op.offer_id = o.id AND op.product_id = $1)
		OR EXISTS (SELECT 1 FROM offer_categories oc WHERE oc.offer_id = o.id AND oc.category_id = $2)
	)
ORDER BY o.priority DESC, o.id`

// ListActiveOffers fetches the offers applicable to a product at the given
// moment, either directly or through its category. Results come back
// best-first: highest priority, then lowest ID.
func (q *Queries) ListActiveOffers(ctx context.Context, productID, categoryID int64, at time.Time) ([]domain.Offer, error) {
	rows, err := q.db.Query(ctx, listActiveOffers, productID, categoryID, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		var value pgtype.Numeric
		err := rows.Scan(
			&o.ID, &o.Description, &o.Priority, &o.Kind, &value,
			&o.DateStart, &o.DateEnd, &o.IsActive,
		)
		if err != nil {
			return nil, err
		}
		o.Value = numericToDecimal(value)
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
