package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/payment"
	"github.com/dukerupert/vanir/internal/repository"
	"github.com/dukerupert/vanir/internal/session"
	"github.com/dukerupert/vanir/internal/shipping"
)

// CheckoutService drives the four-step checkout wizard. Steps accumulate
// fields in the session; Commit turns them into an order atomically.
type CheckoutService interface {
	// SubmitClientInfo handles step one. When the form carries a
	// password, a new account is created and the session identity
	// rotates, keeping the cart and the fields entered so far.
	SubmitClientInfo(ctx context.Context, sess *session.Session, form ClientInfoForm) error

	// ClientInfo returns the step-one fields for display. Blank contact
	// fields fall back to the signed-in account.
	ClientInfo(ctx context.Context, sess *session.Session) domain.CheckoutFields

	// Login signs an existing customer in during step one. The session
	// identity rotates; the guest's cart and checkout fields carry over.
	Login(ctx context.Context, sess *session.Session, email, password string) error

	// SubmitDelivery handles step two.
	SubmitDelivery(ctx context.Context, sess *session.Session, form DeliveryForm) error

	// SubmitPayment handles step three. The cart is capped at available
	// stock; any adjustments are returned so the page can report them.
	SubmitPayment(ctx context.Context, sess *session.Session, form PaymentForm) ([]ClampedLine, error)

	// Quote prices the order as it currently stands: the cart summary
	// plus the delivery cost for the chosen option.
	Quote(ctx context.Context, sess *session.Session) (*Quote, error)

	// Commit creates the order, its items, and empties the cart, all in
	// one transaction. Stock is not reserved; the step-three clamp is
	// the only stock guard, so a quantity that moved since then still
	// commits. A line whose position vanished fails with ErrStaleCart.
	Commit(ctx context.Context, sess *session.Session) (*domain.Order, error)

	// SubmitCard queues asynchronous payment confirmation for an order.
	SubmitCard(ctx context.Context, orderID int64, cardNumber string) error
}

// ClientInfoForm is the step-one form. Passwords are optional; when present
// they create an account.
type ClientInfoForm struct {
	Name      string
	Phone     string
	Email     string
	Password1 string
	Password2 string
}

// DeliveryForm is the step-two form.
type DeliveryForm struct {
	DeliverID int64
	City      string
	Address   string
}

// PaymentForm is the step-three form.
type PaymentForm struct {
	Payment string
	Comment string
}

// Quote is a priced view of the pending order.
type Quote struct {
	Summary       *domain.CartSummary
	Deliver       *domain.Deliver
	DeliveryPrice decimal.Decimal
	Total         decimal.Decimal
}

// PaymentQueue accepts payment confirmation jobs. Implemented by
// payment.Dispatcher.
type PaymentQueue interface {
	Submit(job payment.Job) bool
}

type checkoutService struct {
	db       repository.DB
	sessions *session.Manager
	cart     CartService
	users    UserService
	policy   *shipping.Policy
	payments PaymentQueue
	logger   *slog.Logger
}

// NewCheckoutService creates a CheckoutService instance.
func NewCheckoutService(
	db repository.DB,
	sessions *session.Manager,
	cart CartService,
	users UserService,
	policy *shipping.Policy,
	payments PaymentQueue,
	logger *slog.Logger,
) CheckoutService {
	return &checkoutService{
		db:       db,
		sessions: sessions,
		cart:     cart,
		users:    users,
		policy:   policy,
		payments: payments,
		logger:   logger,
	}
}

func (s *checkoutService) SubmitClientInfo(ctx context.Context, sess *session.Session, form ClientInfoForm) error {
	var verr error
	if strings.TrimSpace(form.Name) == "" {
		verr = domain.AddFieldError(verr, "name", "Name is required")
	}
	if strings.TrimSpace(form.Phone) == "" {
		verr = domain.AddFieldError(verr, "phone", "Phone is required")
	}
	email := strings.TrimSpace(form.Email)
	if email == "" || !strings.Contains(email, "@") {
		verr = domain.AddFieldError(verr, "email", "A valid email address is required")
	}
	if form.Password2 != "" && form.Password1 != form.Password2 {
		verr = domain.AddFieldError(verr, "password2", "Passwords do not match")
	}
	if verr != nil {
		return verr
	}

	// A filled confirmation field means signup; a lone password means
	// login with an existing account; neither means guest checkout.
	switch {
	case form.Password2 != "" && sess.UserID() == nil:
		user, err := s.users.Register(ctx, RegisterParams{
			Email:    email,
			FullName: form.Name,
			Phone:    form.Phone,
			Password: form.Password1,
		})
		if errors.Is(err, ErrEmailTaken) {
			return domain.AddFieldError(nil, "email", "A user with this email already exists")
		}
		if err != nil {
			return err
		}
		sess.SetUser(user.ID)
		if err := s.sessions.Rotate(ctx, sess); err != nil {
			return domain.Internal(err, "checkout.client_info", "failed to rotate session")
		}

	case form.Password1 != "" && sess.UserID() == nil:
		user, err := s.users.Authenticate(ctx, email, form.Password1)
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUserNotFound) {
			return domain.AddFieldError(nil, "password1", "Invalid email or password")
		}
		if err != nil {
			return err
		}
		sess.SetUser(user.ID)
		if err := s.sessions.Rotate(ctx, sess); err != nil {
			return domain.Internal(err, "checkout.client_info", "failed to rotate session")
		}
	}

	fields := sess.Checkout()
	fields.Name = strings.TrimSpace(form.Name)
	fields.Phone = strings.TrimSpace(form.Phone)
	fields.Email = email
	sess.SetCheckout(fields)
	return nil
}

func (s *checkoutService) ClientInfo(ctx context.Context, sess *session.Session) domain.CheckoutFields {
	fields := sess.Checkout()
	if fields.Name != "" && fields.Phone != "" && fields.Email != "" {
		return fields
	}
	id := sess.UserID()
	if id == nil {
		return fields
	}
	user, err := s.users.GetByID(ctx, *id)
	if err != nil {
		return fields
	}
	if fields.Name == "" {
		fields.Name = user.FullName
	}
	if fields.Phone == "" {
		fields.Phone = user.Phone
	}
	if fields.Email == "" {
		fields.Email = user.Email
	}
	return fields
}

func (s *checkoutService) Login(ctx context.Context, sess *session.Session, email, password string) error {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	sess.SetUser(user.ID)
	if err := s.sessions.Rotate(ctx, sess); err != nil {
		return domain.Internal(err, "checkout.login", "failed to rotate session")
	}

	// Prefill contact fields from the account where the guest left them
	// blank.
	fields := sess.Checkout()
	if fields.Name == "" {
		fields.Name = user.FullName
	}
	if fields.Phone == "" {
		fields.Phone = user.Phone
	}
	if fields.Email == "" {
		fields.Email = user.Email
	}
	sess.SetCheckout(fields)
	return nil
}

func (s *checkoutService) SubmitDelivery(ctx context.Context, sess *session.Session, form DeliveryForm) error {
	var verr error
	if strings.TrimSpace(form.City) == "" {
		verr = domain.AddFieldError(verr, "city", "City is required")
	}
	if strings.TrimSpace(form.Address) == "" {
		verr = domain.AddFieldError(verr, "address", "Address is required")
	}
	if form.DeliverID == 0 {
		verr = domain.AddFieldError(verr, "deliver", "Choose a delivery option")
	} else {
		_, err := s.db.GetDeliverByID(ctx, form.DeliverID)
		if errors.Is(err, pgx.ErrNoRows) {
			verr = domain.AddFieldError(verr, "deliver", "Choose a delivery option")
		} else if err != nil {
			return domain.Internal(err, "checkout.delivery", "failed to load delivery option")
		}
	}
	if verr != nil {
		return verr
	}

	fields := sess.Checkout()
	fields.DeliverID = form.DeliverID
	fields.City = strings.TrimSpace(form.City)
	fields.Address = strings.TrimSpace(form.Address)
	sess.SetCheckout(fields)
	return nil
}

func (s *checkoutService) SubmitPayment(ctx context.Context, sess *session.Session, form PaymentForm) ([]ClampedLine, error) {
	if !domain.ValidPaymentMethod(form.Payment) {
		return nil, domain.NewValidationError("checkout.payment", "payment", "Choose a payment method")
	}

	fields := sess.Checkout()
	fields.Payment = form.Payment
	fields.Comment = strings.TrimSpace(form.Comment)
	sess.SetCheckout(fields)

	clamped, err := s.cart.ClampToStock(ctx, sess)
	if err != nil {
		return nil, err
	}
	return clamped, nil
}

func (s *checkoutService) Quote(ctx context.Context, sess *session.Session) (*Quote, error) {
	summary, err := s.cart.Summary(ctx, sess)
	if err != nil {
		return nil, err
	}
	quote := &Quote{Summary: summary, Total: summary.ProductsTotal}

	fields := sess.Checkout()
	if fields.DeliverID == 0 {
		return quote, nil
	}
	deliver, err := s.db.GetDeliverByID(ctx, fields.DeliverID)
	if errors.Is(err, pgx.ErrNoRows) {
		return quote, nil
	}
	if err != nil {
		return nil, domain.Internal(err, "checkout.quote", "failed to load delivery option")
	}
	quote.Deliver = &deliver
	quote.DeliveryPrice = s.policy.DeliveryPrice(deliver, shipping.Basket{
		ProductsTotal: summary.ProductsTotal,
		SellerCount:   summary.SellerCount,
	})
	quote.Total = summary.ProductsTotal.Add(quote.DeliveryPrice)
	return quote, nil
}

func (s *checkoutService) Commit(ctx context.Context, sess *session.Session) (*domain.Order, error) {
	lineCount := len(sess.CartLines())
	summary, err := s.cart.Summary(ctx, sess)
	if err != nil {
		return nil, err
	}
	// Summary prunes lines whose position was withdrawn from sale. The
	// customer has to see the changed cart before we take the order.
	if len(summary.Items) < lineCount {
		return nil, ErrStaleCart
	}
	if len(summary.Items) == 0 {
		return nil, ErrEmptyCart
	}

	fields := sess.Checkout()
	if err := validateCommitFields(fields); err != nil {
		return nil, err
	}

	deliver, err := s.db.GetDeliverByID(ctx, fields.DeliverID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeliverNotFound
	}
	if err != nil {
		return nil, domain.Internal(err, "checkout.commit", "failed to load delivery option")
	}
	deliveryPrice := s.policy.DeliveryPrice(deliver, shipping.Basket{
		ProductsTotal: summary.ProductsTotal,
		SellerCount:   summary.SellerCount,
	})

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, "checkout.commit", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	order, err := tx.CreateOrder(ctx, repository.CreateOrderParams{
		ClientID:      sess.UserID(),
		DeliverID:     &deliver.ID,
		DeliveryPrice: deliveryPrice,
		Payment:       domain.PaymentMethod(fields.Payment),
		Status:        domain.OrderStatusCreated,
		Name:          fields.Name,
		Phone:         fields.Phone,
		Email:         fields.Email,
		City:          fields.City,
		Address:       fields.Address,
		Comment:       fields.Comment,
	})
	if err != nil {
		return nil, domain.Internal(err, "checkout.commit", "failed to create order")
	}

	for _, item := range summary.Items {
		_, err := tx.CreateOrderItem(ctx, repository.CreateOrderItemParams{
			OrderID:    order.ID,
			PositionID: item.Position.ID,
			Price:      item.TotalPrice,
			Quantity:   item.Quantity,
		})
		if err != nil {
			return nil, domain.Internal(err, "checkout.commit", "failed to create order item")
		}
	}

	// The cart reset rides in the same transaction as the order, so a
	// failure after this point leaves both untouched. The in-memory
	// session is only reset once the transaction commits.
	raw, err := sess.EncodeReset()
	if err != nil {
		return nil, domain.Internal(err, "checkout.commit", "failed to encode session")
	}
	if err := tx.UpdateSessionData(ctx, sess.Token(), raw); err != nil {
		return nil, domain.Internal(err, "checkout.commit", "failed to clear cart")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "checkout.commit", "failed to commit transaction")
	}
	sess.ResetCart()

	s.logger.Info("order committed",
		"order_id", order.ID,
		"items", len(summary.Items),
		"total", summary.ProductsTotal.Add(deliveryPrice),
		"payment", order.Payment,
	)
	return &order, nil
}

func (s *checkoutService) SubmitCard(ctx context.Context, orderID int64, cardNumber string) error {
	order, err := s.db.GetOrderByID(ctx, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return domain.Internal(err, "checkout.submit_card", "failed to load order")
	}
	if order.IsPaid {
		return domain.Conflict("checkout.submit_card", "Order is already paid")
	}

	if !s.payments.Submit(payment.Job{OrderID: orderID, CardNumber: cardNumber}) {
		return domain.Errorf(domain.ECONFLICT, "checkout.submit_card",
			"Payment processing is busy, please try again")
	}
	return nil
}

func validateCommitFields(fields domain.CheckoutFields) error {
	var verr error
	if fields.Name == "" {
		verr = domain.AddFieldError(verr, "name", "Name is required")
	}
	if fields.Phone == "" {
		verr = domain.AddFieldError(verr, "phone", "Phone is required")
	}
	if fields.Email == "" {
		verr = domain.AddFieldError(verr, "email", "Email is required")
	}
	if fields.DeliverID == 0 {
		verr = domain.AddFieldError(verr, "deliver", "Choose a delivery option")
	}
	if fields.City == "" {
		verr = domain.AddFieldError(verr, "city", "City is required")
	}
	if fields.Address == "" {
		verr = domain.AddFieldError(verr, "address", "Address is required")
	}
	if !domain.ValidPaymentMethod(fields.Payment) {
		verr = domain.AddFieldError(verr, "payment", "Choose a payment method")
	}
	return verr
}
