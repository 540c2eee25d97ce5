package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/repository"
)

// OrderService provides read access to committed orders and records payment
// outcomes. Order creation happens in CheckoutService.
type OrderService interface {
	Get(ctx context.Context, id int64) (*domain.OrderDetail, error)
	ListForClient(ctx context.Context, clientID int64) ([]domain.Order, error)

	// SettlePayment moves an order to paid or unpaid. Called by the
	// payment dispatcher once a confirmation finishes.
	SettlePayment(ctx context.Context, orderID int64, paid bool) error
}

type orderService struct {
	repo repository.Querier
}

// NewOrderService creates an OrderService instance.
func NewOrderService(repo repository.Querier) OrderService {
	return &orderService{repo: repo}
}

func (s *orderService) Get(ctx context.Context, id int64) (*domain.OrderDetail, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}

	items, err := s.repo.ListOrderItems(ctx, id)
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to load order items")
	}
	return &domain.OrderDetail{Order: order, Items: items}, nil
}

func (s *orderService) ListForClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	orders, err := s.repo.ListOrdersForClient(ctx, clientID)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return orders, nil
}

func (s *orderService) SettlePayment(ctx context.Context, orderID int64, paid bool) error {
	status := domain.OrderStatusUnpaid
	if paid {
		status = domain.OrderStatusPaid
	}
	_, err := s.repo.UpdateOrderPayment(ctx, orderID, status, paid)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return domain.Internal(err, "order.settle_payment", "failed to update order")
	}
	return nil
}
