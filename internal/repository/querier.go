package repository

import (
	"context"
	"time"

	"github.com/dukerupert/vanir/internal/domain"
)

// Querier is the full query surface. Services depend on this interface (or a
// subset of it) rather than on *Queries so tests can substitute fakes.
type Querier interface {
	// Catalog
	GetPositionByID(ctx context.Context, id int64) (domain.ProductPosition, error)
	ListPositionsByIDs(ctx context.Context, ids []int64) ([]domain.ProductPosition, error)
	ListPositionsForProduct(ctx context.Context, productID int64) ([]domain.ProductPosition, error)
	GetProductByID(ctx context.Context, id int64) (domain.Product, error)
	ListProducts(ctx context.Context, categoryID int64) ([]ProductListRow, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListActiveOffers(ctx context.Context, productID, categoryID int64, at time.Time) ([]domain.Offer, error)

	// Delivery and orders
	GetDeliverByID(ctx context.Context, id int64) (domain.Deliver, error)
	ListDelivers(ctx context.Context) ([]domain.Deliver, error)
	CreateOrder(ctx context.Context, arg CreateOrderParams) (domain.Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (domain.OrderItem, error)
	GetOrderByID(ctx context.Context, id int64) (domain.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	ListOrdersForClient(ctx context.Context, clientID int64) ([]domain.Order, error)
	ListOrdersAwaitingPayment(ctx context.Context) ([]domain.Order, error)
	UpdateOrderPayment(ctx context.Context, id int64, status domain.OrderStatus, isPaid bool) (domain.Order, error)

	// Users
	CreateUser(ctx context.Context, arg CreateUserParams) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// Sessions
	CreateSession(ctx context.Context, token string, data []byte, expiresAt time.Time) (Session, error)
	GetSessionByToken(ctx context.Context, token string) (Session, error)
	UpdateSessionData(ctx context.Context, token string, data []byte) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

var _ Querier = (*Queries)(nil)
