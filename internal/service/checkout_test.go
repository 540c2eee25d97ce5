package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/payment"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/dukerupert/vanir/internal/repository"
	"github.com/dukerupert/vanir/internal/session"
	"github.com/dukerupert/vanir/internal/shipping"
)

// ============================================================================
// Fakes
// ============================================================================

var errNotImplemented = errors.New("not implemented in fake")

// unimplementedQuerier provides failing defaults so fakes only spell out
// the queries they care about.
type unimplementedQuerier struct{}

func (unimplementedQuerier) GetPositionByID(ctx context.Context, id int64) (domain.ProductPosition, error) {
	return domain.ProductPosition{}, errNotImplemented
}
func (unimplementedQuerier) ListPositionsByIDs(ctx context.Context, ids []int64) ([]domain.ProductPosition, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) ListPositionsForProduct(ctx context.Context, productID int64) ([]domain.ProductPosition, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) GetProductByID(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{}, errNotImplemented
}
func (unimplementedQuerier) ListProducts(ctx context.Context, categoryID int64) ([]repository.ProductListRow, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) ListActiveOffers(ctx context.Context, productID, categoryID int64, at time.Time) ([]domain.Offer, error) {
	return nil, nil
}
func (unimplementedQuerier) GetDeliverByID(ctx context.Context, id int64) (domain.Deliver, error) {
	return domain.Deliver{}, errNotImplemented
}
func (unimplementedQuerier) ListDelivers(ctx context.Context) ([]domain.Deliver, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (domain.Order, error) {
	return domain.Order{}, errNotImplemented
}
func (unimplementedQuerier) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (domain.OrderItem, error) {
	return domain.OrderItem{}, errNotImplemented
}
func (unimplementedQuerier) GetOrderByID(ctx context.Context, id int64) (domain.Order, error) {
	return domain.Order{}, errNotImplemented
}
func (unimplementedQuerier) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) ListOrdersForClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) ListOrdersAwaitingPayment(ctx context.Context) ([]domain.Order, error) {
	return nil, errNotImplemented
}
func (unimplementedQuerier) UpdateOrderPayment(ctx context.Context, id int64, status domain.OrderStatus, isPaid bool) (domain.Order, error) {
	return domain.Order{}, errNotImplemented
}
func (unimplementedQuerier) CreateUser(ctx context.Context, arg repository.CreateUserParams) (domain.User, error) {
	return domain.User{}, errNotImplemented
}
func (unimplementedQuerier) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return domain.User{}, errNotImplemented
}
func (unimplementedQuerier) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return domain.User{}, errNotImplemented
}
func (unimplementedQuerier) CreateSession(ctx context.Context, token string, data []byte, expiresAt time.Time) (repository.Session, error) {
	return repository.Session{}, errNotImplemented
}
func (unimplementedQuerier) GetSessionByToken(ctx context.Context, token string) (repository.Session, error) {
	return repository.Session{}, errNotImplemented
}
func (unimplementedQuerier) UpdateSessionData(ctx context.Context, token string, data []byte) error {
	return errNotImplemented
}
func (unimplementedQuerier) DeleteSession(ctx context.Context, token string) error {
	return errNotImplemented
}
func (unimplementedQuerier) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return 0, errNotImplemented
}

// fakeStore is an in-memory repository.DB. Transactions stage their writes
// and only apply them on Commit, so rollback behavior is observable.
type fakeStore struct {
	unimplementedQuerier

	positions   map[int64]domain.ProductPosition
	delivers    map[int64]domain.Deliver
	users       map[int64]domain.User
	sessions    map[string][]byte
	orders      map[int64]domain.Order
	items       map[int64][]domain.OrderItem
	offers      []domain.Offer
	nextOrderID int64
	nextUserID  int64

	failOrderItems bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		positions:   make(map[int64]domain.ProductPosition),
		delivers:    make(map[int64]domain.Deliver),
		users:       make(map[int64]domain.User),
		sessions:    make(map[string][]byte),
		orders:      make(map[int64]domain.Order),
		items:       make(map[int64][]domain.OrderItem),
		nextOrderID: 1,
		nextUserID:  1,
	}
}

func (f *fakeStore) GetPositionByID(ctx context.Context, id int64) (domain.ProductPosition, error) {
	pos, ok := f.positions[id]
	if !ok {
		return domain.ProductPosition{}, pgx.ErrNoRows
	}
	return pos, nil
}

func (f *fakeStore) ListPositionsByIDs(ctx context.Context, ids []int64) ([]domain.ProductPosition, error) {
	var out []domain.ProductPosition
	for _, id := range ids {
		if pos, ok := f.positions[id]; ok {
			out = append(out, pos)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveOffers(ctx context.Context, productID, categoryID int64, at time.Time) ([]domain.Offer, error) {
	return f.offers, nil
}

func (f *fakeStore) GetDeliverByID(ctx context.Context, id int64) (domain.Deliver, error) {
	d, ok := f.delivers[id]
	if !ok {
		return domain.Deliver{}, pgx.ErrNoRows
	}
	return d, nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id int64) (domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return domain.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, arg repository.CreateUserParams) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == arg.Email {
			return domain.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := domain.User{
		ID:           f.nextUserID,
		Email:        arg.Email,
		FullName:     arg.FullName,
		Phone:        arg.Phone,
		PasswordHash: arg.PasswordHash,
	}
	f.nextUserID++
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (f *fakeStore) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeStore) CreateSession(ctx context.Context, token string, data []byte, expiresAt time.Time) (repository.Session, error) {
	f.sessions[token] = data
	return repository.Session{Token: token, Data: data, ExpiresAt: expiresAt}, nil
}

func (f *fakeStore) GetSessionByToken(ctx context.Context, token string) (repository.Session, error) {
	data, ok := f.sessions[token]
	if !ok {
		return repository.Session{}, pgx.ErrNoRows
	}
	return repository.Session{Token: token, Data: data}, nil
}

func (f *fakeStore) UpdateSessionData(ctx context.Context, token string, data []byte) error {
	f.sessions[token] = data
	return nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeStore) Begin(ctx context.Context) (repository.Tx, error) {
	return &fakeTx{
		store:        f,
		sessionWrite: make(map[string][]byte),
	}, nil
}

// fakeTx stages writes until Commit.
type fakeTx struct {
	unimplementedQuerier

	store        *fakeStore
	orders       []domain.Order
	items        []domain.OrderItem
	sessionWrite map[string][]byte
	committed    bool
	rolledBack   bool
}

func (t *fakeTx) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (domain.Order, error) {
	o := domain.Order{
		ID:            t.store.nextOrderID,
		ClientID:      arg.ClientID,
		DeliverID:     arg.DeliverID,
		DeliveryPrice: arg.DeliveryPrice,
		Payment:       arg.Payment,
		Status:        arg.Status,
		Name:          arg.Name,
		Phone:         arg.Phone,
		Email:         arg.Email,
		City:          arg.City,
		Address:       arg.Address,
		Comment:       arg.Comment,
	}
	t.store.nextOrderID++
	t.orders = append(t.orders, o)
	return o, nil
}

func (t *fakeTx) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (domain.OrderItem, error) {
	if t.store.failOrderItems {
		return domain.OrderItem{}, errors.New("insert failed")
	}
	item := domain.OrderItem{
		ID:         int64(len(t.items) + 1),
		OrderID:    arg.OrderID,
		PositionID: arg.PositionID,
		Price:      arg.Price,
		Quantity:   arg.Quantity,
	}
	t.items = append(t.items, item)
	return item, nil
}

func (t *fakeTx) UpdateSessionData(ctx context.Context, token string, data []byte) error {
	t.sessionWrite[token] = data
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	for _, o := range t.orders {
		t.store.orders[o.ID] = o
	}
	for _, item := range t.items {
		t.store.items[item.OrderID] = append(t.store.items[item.OrderID], item)
	}
	for token, data := range t.sessionWrite {
		t.store.sessions[token] = data
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

// fakePaymentQueue records submitted jobs.
type fakePaymentQueue struct {
	jobs []payment.Job
	full bool
}

func (q *fakePaymentQueue) Submit(job payment.Job) bool {
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

// ============================================================================
// Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type checkoutFixture struct {
	store    *fakeStore
	sessions *session.Manager
	cart     CartService
	queue    *fakePaymentQueue
	svc      CheckoutService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newFakeStore()
	logger := testLogger()
	sessions := session.NewManager(store, logger)
	engine := pricing.NewEngine(store)
	cart := NewCartService(store, engine)
	users := NewUserService(store)
	queue := &fakePaymentQueue{}
	svc := NewCheckoutService(store, sessions, cart, users, shipping.NewPolicy(), queue, logger)
	return &checkoutFixture{store: store, sessions: sessions, cart: cart, queue: queue, svc: svc}
}

func (f *checkoutFixture) seedTwoSellerCart(t *testing.T) *session.Session {
	t.Helper()
	f.store.positions[10] = domain.ProductPosition{
		ID: 10, ProductID: 1, SellerID: 1, ProductTitle: "Lamp", SellerTitle: "North",
		Price: dec("200"), Quantity: 5,
	}
	f.store.positions[20] = domain.ProductPosition{
		ID: 20, ProductID: 2, SellerID: 2, ProductTitle: "Mug", SellerTitle: "South",
		Price: dec("50"), Quantity: 5,
	}
	f.store.delivers[1] = domain.Deliver{
		ID: 1, Title: "Courier", Price: dec("500"),
		FreeThreshold: decimal.NullDecimal{Decimal: dec("200"), Valid: true},
	}

	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 1, false))
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 20, 1, false))
	sess.SetCheckout(domain.CheckoutFields{
		Name: "Ada Lovelace", Phone: "555-0100", Email: "ada@example.com",
		DeliverID: 1, City: "London", Address: "12 St James Sq",
		Payment: string(domain.PaymentOnline),
	})
	return sess
}

// ============================================================================
// Tests
// ============================================================================

func TestCommitCreatesOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)

	order, err := f.svc.Commit(context.Background(), sess)
	require.NoError(t, err)

	// Two sellers, so delivery is charged even above the threshold.
	assert.True(t, order.DeliveryPrice.Equal(dec("500")), "delivery price %s", order.DeliveryPrice)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	assert.Nil(t, order.ClientID)

	stored, ok := f.store.orders[order.ID]
	require.True(t, ok, "order must be persisted")
	assert.Equal(t, "Ada Lovelace", stored.Name)

	items := f.store.items[order.ID]
	require.Len(t, items, 2)
	assert.True(t, items[0].Price.Equal(dec("200")), "line total %s", items[0].Price)
	assert.True(t, items[1].Price.Equal(dec("50")), "line total %s", items[1].Price)

	// The cart is gone, both in memory and in the stored session.
	assert.Equal(t, 0, sess.CartLen())
	reloaded, err := f.sessions.Load(context.Background(), sess.Token())
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.CartLen())
}

func TestCommitEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)
	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)

	_, err = f.svc.Commit(context.Background(), sess)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCommitValidatesFields(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)
	sess.SetCheckout(domain.CheckoutFields{Name: "Ada Lovelace"})

	_, err := f.svc.Commit(context.Background(), sess)
	require.True(t, domain.IsValidationError(err), "got %v", err)
	fields := domain.GetValidationFields(err)
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "deliver")
	assert.Contains(t, fields, "payment")
	assert.NotContains(t, fields, "name")
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)
	f.store.failOrderItems = true

	_, err := f.svc.Commit(context.Background(), sess)
	require.Error(t, err)

	assert.Empty(t, f.store.orders, "no order may survive a failed commit")
	assert.Empty(t, f.store.items)

	assert.Equal(t, 2, sess.CartLen(), "in-memory cart must survive a failed commit")
	reloaded, err := f.sessions.Load(context.Background(), sess.Token())
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.CartLen(), "stored cart must survive a failed commit")
}

func TestCommitIgnoresStockShortfall(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)

	// Stock moved after the step-three clamp. The order is taken anyway;
	// the clamp is advisory, not a reservation.
	pos := f.store.positions[10]
	pos.Quantity = 0
	f.store.positions[10] = pos

	order, err := f.svc.Commit(context.Background(), sess)
	require.NoError(t, err)

	items := f.store.items[order.ID]
	require.Len(t, items, 2)
	assert.Equal(t, int32(0), f.store.positions[10].Quantity, "commit must not touch stock")
	assert.Equal(t, int32(5), f.store.positions[20].Quantity, "commit must not touch stock")
}

func TestCommitStaleCart(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)
	delete(f.store.positions, 20)

	_, err := f.svc.Commit(context.Background(), sess)
	assert.ErrorIs(t, err, ErrStaleCart)
	assert.Empty(t, f.store.orders)
	assert.Equal(t, 1, sess.CartLen(), "the vanished line is pruned, the rest stays")
}

func TestCommitFreeDeliverySingleSeller(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)
	// Drop the second seller's line; 200 meets the threshold.
	f.cart.RemoveItem(sess, 20)

	order, err := f.svc.Commit(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, order.DeliveryPrice.IsZero(), "delivery price %s", order.DeliveryPrice)
}

func TestSubmitPaymentClampsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)
	require.NoError(t, f.cart.AddItem(context.Background(), sess, 10, 9, false))

	clamped, err := f.svc.SubmitPayment(context.Background(), sess, PaymentForm{
		Payment: string(domain.PaymentOnline),
	})
	require.NoError(t, err)
	require.Len(t, clamped, 1)
	assert.Equal(t, int64(10), clamped[0].PositionID)
	assert.Equal(t, int32(10), clamped[0].Requested)
	assert.Equal(t, int32(5), clamped[0].Available)

	summary, err := f.cart.Summary(context.Background(), sess)
	require.NoError(t, err)
	for _, item := range summary.Items {
		if item.Position.ID == 10 {
			assert.Equal(t, int32(5), item.Quantity)
		}
	}
}

func TestSubmitClientInfoSignupRotatesSession(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := f.seedTwoSellerCart(t)
	oldToken := sess.Token()

	err := f.svc.SubmitClientInfo(context.Background(), sess, ClientInfoForm{
		Name: "Ada Lovelace", Phone: "555-0100", Email: "ada@example.com",
		Password1: "correcthorse", Password2: "correcthorse",
	})
	require.NoError(t, err)

	require.NotNil(t, sess.UserID())
	assert.NotEqual(t, oldToken, sess.Token(), "token must rotate on signup")
	assert.Equal(t, 2, sess.CartLen(), "cart must carry over the rotation")

	_, err = f.store.GetSessionByToken(context.Background(), oldToken)
	assert.ErrorIs(t, err, pgx.ErrNoRows, "old session row must be gone")
}

func TestSubmitClientInfoPasswordMismatch(t *testing.T) {
	f := newCheckoutFixture(t)
	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)

	err = f.svc.SubmitClientInfo(context.Background(), sess, ClientInfoForm{
		Name: "Ada", Phone: "1", Email: "ada@example.com",
		Password1: "correcthorse", Password2: "wronghorse",
	})
	require.True(t, domain.IsValidationError(err))
	assert.Contains(t, domain.GetValidationFields(err), "password2")
	assert.Nil(t, sess.UserID())
}

func TestSubmitClientInfoLonePasswordLogsIn(t *testing.T) {
	f := newCheckoutFixture(t)
	users := NewUserService(f.store)
	registered, err := users.Register(context.Background(), RegisterParams{
		Email: "ada@example.com", FullName: "Ada Lovelace", Password: "correcthorse",
	})
	require.NoError(t, err)

	sess := f.seedTwoSellerCart(t)
	oldToken := sess.Token()

	err = f.svc.SubmitClientInfo(context.Background(), sess, ClientInfoForm{
		Name: "Ada Lovelace", Phone: "555-0100", Email: "ada@example.com",
		Password1: "correcthorse",
	})
	require.NoError(t, err)

	require.NotNil(t, sess.UserID())
	assert.Equal(t, registered.ID, *sess.UserID())
	assert.NotEqual(t, oldToken, sess.Token(), "token must rotate on login")
	assert.Equal(t, 2, sess.CartLen(), "cart must carry over the rotation")
}

func TestSubmitClientInfoLonePasswordRejected(t *testing.T) {
	f := newCheckoutFixture(t)
	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)

	err = f.svc.SubmitClientInfo(context.Background(), sess, ClientInfoForm{
		Name: "Ada", Phone: "1", Email: "ada@example.com",
		Password1: "wronghorse",
	})
	require.True(t, domain.IsValidationError(err), "got %v", err)
	assert.Contains(t, domain.GetValidationFields(err), "password1")
	assert.Nil(t, sess.UserID())
}

func TestSubmitClientInfoDuplicateEmail(t *testing.T) {
	f := newCheckoutFixture(t)
	users := NewUserService(f.store)
	_, err := users.Register(context.Background(), RegisterParams{
		Email: "ada@example.com", FullName: "Ada Lovelace", Password: "correcthorse",
	})
	require.NoError(t, err)

	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)

	err = f.svc.SubmitClientInfo(context.Background(), sess, ClientInfoForm{
		Name: "Ada", Phone: "1", Email: "ada@example.com",
		Password1: "correcthorse", Password2: "correcthorse",
	})
	require.True(t, domain.IsValidationError(err), "got %v", err)
	assert.Contains(t, domain.GetValidationFields(err), "email")
	assert.Nil(t, sess.UserID())
}

func TestClientInfoPrefillsFromAccount(t *testing.T) {
	f := newCheckoutFixture(t)
	users := NewUserService(f.store)
	registered, err := users.Register(context.Background(), RegisterParams{
		Email: "ada@example.com", FullName: "Ada Lovelace", Phone: "555-0100",
		Password: "correcthorse",
	})
	require.NoError(t, err)

	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)
	sess.SetUser(registered.ID)

	fields := f.svc.ClientInfo(context.Background(), sess)
	assert.Equal(t, "Ada Lovelace", fields.Name)
	assert.Equal(t, "555-0100", fields.Phone)
	assert.Equal(t, "ada@example.com", fields.Email)

	// Fields already entered this checkout win over the account.
	sess.SetCheckout(domain.CheckoutFields{Name: "A. Byron", Email: "other@example.com"})
	fields = f.svc.ClientInfo(context.Background(), sess)
	assert.Equal(t, "A. Byron", fields.Name)
	assert.Equal(t, "555-0100", fields.Phone, "blank phone still falls back")
	assert.Equal(t, "other@example.com", fields.Email)
}

func TestClientInfoGuestGetsSessionFields(t *testing.T) {
	f := newCheckoutFixture(t)
	sess, err := f.sessions.New(context.Background())
	require.NoError(t, err)
	sess.SetCheckout(domain.CheckoutFields{Name: "Ada"})

	fields := f.svc.ClientInfo(context.Background(), sess)
	assert.Equal(t, "Ada", fields.Name)
	assert.Empty(t, fields.Phone)
	assert.Empty(t, fields.Email)
}

func TestLoginCarriesCartOver(t *testing.T) {
	f := newCheckoutFixture(t)
	users := NewUserService(f.store)
	_, err := users.Register(context.Background(), RegisterParams{
		Email: "ada@example.com", FullName: "Ada Lovelace", Password: "correcthorse",
	})
	require.NoError(t, err)

	sess := f.seedTwoSellerCart(t)
	oldToken := sess.Token()

	require.NoError(t, f.svc.Login(context.Background(), sess, "ada@example.com", "correcthorse"))
	require.NotNil(t, sess.UserID())
	assert.NotEqual(t, oldToken, sess.Token())
	assert.Equal(t, 2, sess.CartLen())
}

func TestSubmitCardQueuesJob(t *testing.T) {
	f := newCheckoutFixture(t)
	f.store.orders[7] = domain.Order{ID: 7, Payment: domain.PaymentOnline}

	require.NoError(t, f.svc.SubmitCard(context.Background(), 7, "4242 4242 4242 4242"))
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, int64(7), f.queue.jobs[0].OrderID)

	err := f.svc.SubmitCard(context.Background(), 99, "4242")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	f.store.orders[8] = domain.Order{ID: 8, IsPaid: true}
	err = f.svc.SubmitCard(context.Background(), 8, "4242")
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))

	f.queue.full = true
	err = f.svc.SubmitCard(context.Background(), 7, "4242")
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}
