// Package session stores per-browser state: the cart, the in-progress
// checkout fields, and the signed-in user. Sessions live in the database so
// checkout can clear the cart in the same transaction that commits the order.
package session

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/vanir/internal/domain"
)

// CartLine is one cart entry as stored in the session blob. Price is the
// unit price snapshotted when the line was first added; it does not move
// when offers change afterwards. Seq preserves insertion order across the
// JSON round trip.
type CartLine struct {
	Quantity int32           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Seq      int             `json:"seq"`
}

// CartEntry is a cart line joined with its position ID, in insertion order.
type CartEntry struct {
	PositionID int64
	Quantity   int32
	Price      decimal.Decimal
}

type sessionData struct {
	UserID   *int64                `json:"user_id,omitempty"`
	Cart     map[string]CartLine   `json:"cart,omitempty"`
	Checkout domain.CheckoutFields `json:"checkout"`
	NextSeq  int                   `json:"next_seq,omitempty"`
}

// Session is a loaded browser session. Mutations mark it dirty; the manager
// only writes dirty sessions back.
type Session struct {
	token string
	data  sessionData
	dirty bool
}

// Token returns the opaque session token for the cookie.
func (s *Session) Token() string { return s.token }

// UserID returns the signed-in user's ID, or nil for guests.
func (s *Session) UserID() *int64 { return s.data.UserID }

// SetUser marks the session as belonging to a user.
func (s *Session) SetUser(id int64) {
	s.data.UserID = &id
	s.dirty = true
}

// ClearUser signs the session out.
func (s *Session) ClearUser() {
	s.data.UserID = nil
	s.dirty = true
}

// Checkout returns the accumulated checkout fields.
func (s *Session) Checkout() domain.CheckoutFields { return s.data.Checkout }

// SetCheckout replaces the accumulated checkout fields.
func (s *Session) SetCheckout(f domain.CheckoutFields) {
	s.data.Checkout = f
	s.dirty = true
}

// AddToCart puts a position in the cart. When the line already exists the
// quantity is added to it, unless override is set, in which case the
// quantity replaces it. The price only snapshots on first add; override does
// not touch it. A resulting quantity of zero or less removes the line.
func (s *Session) AddToCart(positionID int64, quantity int32, price decimal.Decimal, override bool) {
	key := strconv.FormatInt(positionID, 10)
	line, exists := s.data.Cart[key]
	if !exists {
		line = CartLine{Price: price, Seq: s.data.NextSeq}
		s.data.NextSeq++
	}
	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	if line.Quantity <= 0 {
		s.RemoveFromCart(positionID)
		return
	}
	if s.data.Cart == nil {
		s.data.Cart = make(map[string]CartLine)
	}
	s.data.Cart[key] = line
	s.dirty = true
}

// RemoveFromCart deletes a cart line. Removing an absent line is a no-op.
func (s *Session) RemoveFromCart(positionID int64) {
	key := strconv.FormatInt(positionID, 10)
	if _, exists := s.data.Cart[key]; !exists {
		return
	}
	delete(s.data.Cart, key)
	s.dirty = true
}

// CartLines returns the cart in the order lines were first added.
func (s *Session) CartLines() []CartEntry {
	type seqEntry struct {
		entry CartEntry
		seq   int
	}
	lines := make([]seqEntry, 0, len(s.data.Cart))
	for key, line := range s.data.Cart {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		lines = append(lines, seqEntry{
			entry: CartEntry{PositionID: id, Quantity: line.Quantity, Price: line.Price},
			seq:   line.Seq,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].seq < lines[j].seq })

	entries := make([]CartEntry, len(lines))
	for i, l := range lines {
		entries[i] = l.entry
	}
	return entries
}

// CartLen is the total number of units in the cart, summed over lines.
func (s *Session) CartLen() int {
	n := 0
	for _, line := range s.data.Cart {
		n += int(line.Quantity)
	}
	return n
}

// ResetCart empties the cart and forgets the checkout fields.
func (s *Session) ResetCart() {
	s.data.Cart = nil
	s.data.Checkout = domain.CheckoutFields{}
	s.data.NextSeq = 0
	s.dirty = true
}

// Encode serializes the session blob for storage.
func (s *Session) Encode() ([]byte, error) {
	return json.Marshal(s.data)
}

// EncodeReset serializes the session as it will look after ResetCart,
// without mutating the live session. Checkout writes this inside the order
// transaction and resets the session only once the transaction commits, so
// a failed commit leaves the in-memory cart intact.
func (s *Session) EncodeReset() ([]byte, error) {
	data := s.data
	data.Cart = nil
	data.Checkout = domain.CheckoutFields{}
	data.NextSeq = 0
	return json.Marshal(data)
}

func decode(token string, raw []byte) (*Session, error) {
	s := &Session{token: token}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, err
	}
	return s, nil
}
