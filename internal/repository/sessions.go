package repository

import (
	"context"
	"time"
)

// Session is a stored browser session: an opaque token and a JSON blob.
// Sessions live in the same database as orders so that clearing the session
// cart can share a transaction with the order insert.
type Session struct {
	ID        int64
	Token     string
	Data      []byte
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

const createSession = `
INSERT INTO sessions (token, data, expires_at)
VALUES ($1, $2, $3)
RETURNING id, token, data, expires_at, created_at, updated_at`

// CreateSession inserts a new session row.
func (q *Queries) CreateSession(ctx context.Context, token string, data []byte, expiresAt time.Time) (Session, error) {
	var s Session
	err := q.db.QueryRow(ctx, createSession, token, data, expiresAt).Scan(
		&s.ID, &s.Token, &s.Data, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const getSessionByToken = `
SELECT id, token, data, expires_at, created_at, updated_at
FROM sessions
WHERE token = $1 AND expires_at > now()`

// GetSessionByToken fetches a live session. Expired sessions are treated as
// absent; a sweeper removes them eventually.
func (q *Queries) GetSessionByToken(ctx context.Context, token string) (Session, error) {
	var s Session
	err := q.db.QueryRow(ctx, getSessionByToken, token).Scan(
		&s.ID, &s.Token, &s.Data, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const updateSessionData = `
UPDATE sessions
SET data = $2, updated_at = now()
WHERE token = $1`

// UpdateSessionData replaces a session's JSON blob.
func (q *Queries) UpdateSessionData(ctx context.Context, token string, data []byte) error {
	_, err := q.db.Exec(ctx, updateSessionData, token, data)
	return err
}

const deleteSession = `DELETE FROM sessions WHERE token = $1`

// DeleteSession removes a session row.
func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.Exec(ctx, deleteSession, token)
	return err
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at <= now()`

// DeleteExpiredSessions sweeps sessions past their expiry. Returns the
// number of rows removed.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteExpiredSessions)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
