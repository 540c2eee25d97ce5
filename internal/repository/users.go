package repository

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
)

// CreateUserParams carries a new customer account.
type CreateUserParams struct {
	Email        string
	FullName     string
	Phone        string
	PasswordHash string
}

const createUser = `
INSERT INTO users (email, full_name, phone, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, email, full_name, phone, password_hash, created_at`

// CreateUser inserts a customer account. Duplicate emails fail with a
// unique-constraint violation.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, createUser,
		arg.Email, arg.FullName, arg.Phone, arg.PasswordHash,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, full_name, phone, password_hash, created_at
FROM users
WHERE lower(email) = lower($1)`

// GetUserByEmail fetches a user by email, case-insensitively.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, getUserByEmail, email).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}

const getUserByID = `
SELECT id, email, full_name, phone, password_hash, created_at
FROM users
WHERE id = $1`

// GetUserByID fetches one user.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, getUserByID, id).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.PasswordHash, &u.CreatedAt,
	)
	return u, err
}
