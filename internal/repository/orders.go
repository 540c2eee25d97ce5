package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
)

const getDeliverByID = `
SELECT id, title, price, free_threshold, is_express
FROM delivers
WHERE id = $1`

// GetDeliverByID fetches one delivery option.
func (q *Queries) GetDeliverByID(ctx context.Context, id int64) (domain.Deliver, error) {
	return scanDeliver(q.db.QueryRow(ctx, getDeliverByID, id))
}

const listDelivers = `
SELECT id, title, price, free_threshold, is_express
FROM delivers
ORDER BY price, id`

// ListDelivers fetches all delivery options, cheapest first.
func (q *Queries) ListDelivers(ctx context.Context) ([]domain.Deliver, error) {
	rows, err := q.db.Query(ctx, listDelivers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var delivers []domain.Deliver
	for rows.Next() {
		d, err := scanDeliver(rows)
		if err != nil {
			return nil, err
		}
		delivers = append(delivers, d)
	}
	return delivers, rows.Err()
}

func scanDeliver(row pgx.Row) (domain.Deliver, error) {
	var d domain.Deliver
	var price, threshold pgtype.Numeric
	err := row.Scan(&d.ID, &d.Title, &price, &threshold, &d.IsExpress)
	if err != nil {
		return domain.Deliver{}, err
	}
	d.Price = numericToDecimal(price)
	d.FreeThreshold = numericToNullDecimal(threshold)
	return d, nil
}

// CreateOrderParams carries everything needed to insert an order row.
type CreateOrderParams struct {
	ClientID      *int64
	DeliverID     *int64
	DeliveryPrice decimal.Decimal
	Payment       domain.PaymentMethod
	Status        domain.OrderStatus
	Name          string
	Phone         string
	Email         string
	City          string
	Address       string
	Comment       string
}

const createOrder = `
INSERT INTO orders (
	client_id, deliver_id, delivery_price, payment, status,
	name, phone, email, city, address, comment
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, client_id, deliver_id, delivery_price, payment, status,
	name, phone, email, city, address, comment,
	is_paid, is_deleted, created_at, updated_at`

// CreateOrder inserts an order and returns the stored row.
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (domain.Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.ClientID, arg.DeliverID, decimalToNumeric(arg.DeliveryPrice),
		arg.Payment, arg.Status,
		arg.Name, arg.Phone, arg.Email, arg.City, arg.Address, arg.Comment,
	))
}

// CreateOrderItemParams carries one order line. Price is the line total.
type CreateOrderItemParams struct {
	OrderID    int64
	PositionID int64
	Price      decimal.Decimal
	Quantity   int32
}

const createOrderItem = `
INSERT INTO order_items (order_id, position_id, price, quantity)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, position_id, price, quantity`

// CreateOrderItem inserts one line of an order.
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error) {
	var item domain.OrderItem
	var price pgtype.Numeric
	err := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.PositionID, decimalToNumeric(arg.Price), arg.Quantity,
	).Scan(&item.ID, &item.OrderID, &item.PositionID, &price, &item.Quantity)
	if err != nil {
		return domain.OrderItem{}, err
	}
	item.Price = numericToDecimal(price)
	return item, nil
}

const getOrderByID = `
SELECT id, client_id, deliver_id, delivery_price, payment, status,
	name, phone, email, city, address, comment,
	is_paid, is_deleted, created_at, updated_at
FROM orders
WHERE id = $1 AND is_deleted = false`

// GetOrderByID fetches one order.
func (q *Queries) GetOrderByID(ctx context.Context, id int64) (domain.Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByID, id))
}

const listOrderItems = `
SELECT id, order_id, position_id, price, quantity
FROM order_items
WHERE order_id = $1
ORDER BY id`

// ListOrderItems fetches the lines of one order in insertion order.
func (q *Queries) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var price pgtype.Numeric
		err := rows.Scan(&item.ID, &item.OrderID, &item.PositionID, &price, &item.Quantity)
		if err != nil {
			return nil, err
		}
		item.Price = numericToDecimal(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

const listOrdersForClient = `
SELECT id, client_id, deliver_id, delivery_price, payment, status,
	name, phone, email, city, address, comment,
	is_paid, is_deleted, created_at, updated_at
FROM orders
WHERE client_id = $1 AND is_deleted = false
ORDER BY created_at DESC, id DESC`

// ListOrdersForClient fetches a customer's orders, newest first.
func (q *Queries) ListOrdersForClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	rows, err := q.db.Query(ctx, listOrdersForClient, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const listOrdersAwaitingPayment = `
SELECT id, client_id, deliver_id, delivery_price, payment, status,
	name, phone, email, city, address, comment,
	is_paid, is_deleted, created_at, updated_at
FROM orders
WHERE status = 'created' AND payment = 'online' AND is_deleted = false
ORDER BY id`

// ListOrdersAwaitingPayment fetches online-payment orders whose confirmation
// never ran, typically because the process stopped before draining them.
func (q *Queries) ListOrdersAwaitingPayment(ctx context.Context) ([]domain.Order, error) {
	rows, err := q.db.Query(ctx, listOrdersAwaitingPayment)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

const updateOrderPayment = `
UPDATE orders
SET status = $2, is_paid = $3, updated_at = now()
WHERE id = $1
RETURNING id, client_id, deliver_id, delivery_price, payment, status,
	name, phone, email, city, address, comment,
	is_paid, is_deleted, created_at, updated_at`

// UpdateOrderPayment records the outcome of a payment attempt.
func (q *Queries) UpdateOrderPayment(ctx context.Context, id int64, status domain.OrderStatus, isPaid bool) (domain.Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderPayment, id, status, isPaid))
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var deliveryPrice pgtype.Numeric
	err := row.Scan(
		&o.ID, &o.ClientID, &o.DeliverID, &deliveryPrice, &o.Payment, &o.Status,
		&o.Name, &o.Phone, &o.Email, &o.City, &o.Address, &o.Comment,
		&o.IsPaid, &o.IsDeleted, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.DeliveryPrice = numericToDecimal(deliveryPrice)
	return o, nil
}
