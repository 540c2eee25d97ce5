package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/dukerupert/vanir/internal/repository"
	"github.com/dukerupert/vanir/internal/session"
)

// CartService provides business logic for the session cart. The handler owns
// loading and saving the session; these methods only mutate it in memory.
type CartService interface {
	// AddItem puts a position in the cart, snapshotting its current
	// discounted price on first add. Quantity is a delta and may be
	// negative; with override set it replaces the line's quantity
	// instead. A resulting quantity of zero or less removes the line.
	AddItem(ctx context.Context, sess *session.Session, positionID int64, quantity int32, override bool) error

	// RemoveItem deletes a cart line.
	RemoveItem(sess *session.Session, positionID int64)

	// Summary joins cart lines with their live positions and totals them.
	// Lines whose position disappeared are pruned from the session.
	Summary(ctx context.Context, sess *session.Session) (*domain.CartSummary, error)

	// ClampToStock caps each line at the position's available stock,
	// removing lines that are out of stock entirely. Returns the lines
	// that changed.
	ClampToStock(ctx context.Context, sess *session.Session) ([]ClampedLine, error)

	// Clear empties the cart and the accumulated checkout fields.
	Clear(sess *session.Session)
}

// ClampedLine reports one cart adjustment made by ClampToStock.
type ClampedLine struct {
	PositionID int64
	Requested  int32
	Available  int32
}

type cartService struct {
	repo   repository.Querier
	engine *pricing.Engine
}

// NewCartService creates a CartService instance.
func NewCartService(repo repository.Querier, engine *pricing.Engine) CartService {
	return &cartService{repo: repo, engine: engine}
}

func (s *cartService) AddItem(ctx context.Context, sess *session.Session, positionID int64, quantity int32, override bool) error {
	if !override && quantity == 0 {
		return ErrInvalidQuantity
	}

	pos, err := s.repo.GetPositionByID(ctx, positionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPositionNotFound
	}
	if err != nil {
		return domain.Internal(err, "cart.add_item", "failed to load position")
	}

	price, err := s.engine.PositionPrice(ctx, pos)
	if err != nil {
		return domain.Internal(err, "cart.add_item", "failed to price position")
	}

	sess.AddToCart(positionID, quantity, price, override)
	return nil
}

func (s *cartService) RemoveItem(sess *session.Session, positionID int64) {
	sess.RemoveFromCart(positionID)
}

func (s *cartService) Summary(ctx context.Context, sess *session.Session) (*domain.CartSummary, error) {
	lines := sess.CartLines()
	if len(lines) == 0 {
		return &domain.CartSummary{}, nil
	}

	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.PositionID
	}
	positions, err := s.repo.ListPositionsByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Internal(err, "cart.summary", "failed to load positions")
	}
	byID := make(map[int64]domain.ProductPosition, len(positions))
	for _, pos := range positions {
		byID[pos.ID] = pos
	}

	summary := &domain.CartSummary{}
	sellers := make(map[int64]struct{})
	for _, line := range lines {
		pos, ok := byID[line.PositionID]
		if !ok {
			// The position was removed from sale since it was added.
			sess.RemoveFromCart(line.PositionID)
			continue
		}
		lineTotal := line.Price.Mul(decimal.NewFromInt32(line.Quantity))
		summary.Items = append(summary.Items, domain.CartItem{
			Position:   pos,
			Quantity:   line.Quantity,
			UnitPrice:  line.Price,
			TotalPrice: lineTotal,
		})
		summary.ProductsTotal = summary.ProductsTotal.Add(lineTotal)
		summary.ItemCount += int(line.Quantity)
		sellers[pos.SellerID] = struct{}{}
	}
	summary.SellerCount = len(sellers)
	return summary, nil
}

func (s *cartService) ClampToStock(ctx context.Context, sess *session.Session) ([]ClampedLine, error) {
	summary, err := s.Summary(ctx, sess)
	if err != nil {
		return nil, err
	}

	var clamped []ClampedLine
	for _, item := range summary.Items {
		if item.Quantity <= item.Position.Quantity {
			continue
		}
		clamped = append(clamped, ClampedLine{
			PositionID: item.Position.ID,
			Requested:  item.Quantity,
			Available:  item.Position.Quantity,
		})
		// AddToCart with override drops the line when stock is zero.
		sess.AddToCart(item.Position.ID, item.Position.Quantity, item.UnitPrice, true)
	}
	return clamped, nil
}

func (s *cartService) Clear(sess *session.Session) {
	sess.ResetCart()
}
