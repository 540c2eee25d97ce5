package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dukerupert/vanir/internal/repository"
)

// DefaultTTL is how long a session lives without being recreated.
const DefaultTTL = 30 * 24 * time.Hour

// Store is the session persistence the manager needs. Satisfied by
// repository.Querier.
type Store interface {
	CreateSession(ctx context.Context, token string, data []byte, expiresAt time.Time) (repository.Session, error)
	GetSessionByToken(ctx context.Context, token string) (repository.Session, error)
	UpdateSessionData(ctx context.Context, token string, data []byte) error
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Manager loads and saves sessions.
type Manager struct {
	store  Store
	logger *slog.Logger
	ttl    time.Duration
}

// NewManager creates a session manager with the default TTL.
func NewManager(store Store, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logger, ttl: DefaultTTL}
}

// Load fetches the session for a token. An empty, unknown, or expired token
// yields a fresh session instead of an error.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return m.New(ctx)
	}
	row, err := m.store.GetSessionByToken(ctx, token)
	if errors.Is(err, pgx.ErrNoRows) {
		return m.New(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	s, err := decode(row.Token, row.Data)
	if err != nil {
		// A corrupt blob should not lock the user out.
		m.logger.Warn("discarding undecodable session", "error", err)
		return m.New(ctx)
	}
	return s, nil
}

// New creates and persists an empty session with a fresh token.
func (m *Manager) New(ctx context.Context) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s := &Session{token: token}
	raw, err := s.Encode()
	if err != nil {
		return nil, err
	}
	if _, err := m.store.CreateSession(ctx, token, raw, time.Now().Add(m.ttl)); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

// Save writes the session back if anything changed.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if !s.dirty {
		return nil
	}
	raw, err := s.Encode()
	if err != nil {
		return err
	}
	if err := m.store.UpdateSessionData(ctx, s.token, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.dirty = false
	return nil
}

// Rotate moves the session's state under a fresh token, deleting the old
// row. Called when the signed-in identity changes so the old cookie value
// stops working, while the cart and checkout fields carry over.
func (m *Manager) Rotate(ctx context.Context, s *Session) error {
	token, err := generateToken()
	if err != nil {
		return err
	}
	raw, err := s.Encode()
	if err != nil {
		return err
	}
	if _, err := m.store.CreateSession(ctx, token, raw, time.Now().Add(m.ttl)); err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if err := m.store.DeleteSession(ctx, s.token); err != nil {
		m.logger.Warn("failed to delete rotated session", "error", err)
	}
	s.token = token
	s.dirty = false
	return nil
}

// Sweep deletes expired session rows.
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
