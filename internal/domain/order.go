package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order domain errors.
var (
	ErrOrderNotFound   = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrDeliverNotFound = &Error{Code: ENOTFOUND, Message: "Delivery option not found"}
)

// OrderStatus is the lifecycle state of an order. After creation the status
// is driven externally: the payment dispatcher moves created orders to paid
// or unpaid; fulfillment states are set by the back office.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusUnpaid    OrderStatus = "unpaid"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusReturned  OrderStatus = "returned"
)

// PaymentMethod selects how an order is paid.
type PaymentMethod string

const (
	// PaymentOnline pays with the customer's own card.
	PaymentOnline PaymentMethod = "online"
	// PaymentSomeone pays from a random third-party account.
	PaymentSomeone PaymentMethod = "someone"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch PaymentMethod(m) {
	case PaymentOnline, PaymentSomeone:
		return true
	}
	return false
}

// Deliver is a delivery option. FreeThreshold, when set, is the basket total
// at which non-express delivery becomes free for single-seller baskets.
type Deliver struct {
	ID            int64
	Title         string
	Price         decimal.Decimal
	FreeThreshold decimal.NullDecimal
	IsExpress     bool
}

// Order is a committed purchase. Guest orders have a nil ClientID.
// DeliveryPrice is computed at commit time, never user-supplied.
type Order struct {
	ID            int64
	ClientID      *int64
	DeliverID     *int64
	DeliveryPrice decimal.Decimal
	Payment       PaymentMethod
	Status        OrderStatus
	Name          string
	Phone         string
	Email         string
	City          string
	Address       string
	Comment       string
	IsPaid        bool
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one line of a committed order. Price is the line total
// (snapshotted unit price times quantity), not a unit price.
type OrderItem struct {
	ID         int64
	OrderID    int64
	PositionID int64
	Price      decimal.Decimal
	Quantity   int32
}

// OrderDetail aggregates an order with its items for display.
type OrderDetail struct {
	Order Order
	Items []OrderItem
}

// TotalPrice is the delivery price plus the sum of all item line totals.
func (d OrderDetail) TotalPrice() decimal.Decimal {
	total := d.Order.DeliveryPrice
	for _, item := range d.Items {
		total = total.Add(item.Price)
	}
	return total
}
