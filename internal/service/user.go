package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dukerupert/vanir/internal/auth"
	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/repository"
)

// UserService manages customer accounts.
type UserService interface {
	Register(ctx context.Context, params RegisterParams) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RegisterParams carries a signup request.
type RegisterParams struct {
	Email    string
	FullName string
	Phone    string
	Password string
}

type userService struct {
	repo repository.Querier
}

// NewUserService creates a UserService instance.
func NewUserService(repo repository.Querier) UserService {
	return &userService{repo: repo}
}

func (s *userService) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("user.register", "email", "A valid email address is required")
	}

	hash, err := auth.HashPassword(params.Password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, domain.NewValidationError("user.register", "password", auth.ErrPasswordTooShort.Error())
	}
	if err != nil {
		return nil, domain.Internal(err, "user.register", "failed to hash password")
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Email:        email,
		FullName:     strings.TrimSpace(params.FullName),
		Phone:        strings.TrimSpace(params.Phone),
		PasswordHash: hash,
	})
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, domain.Internal(err, "user.register", "failed to create user")
	}
	return &user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, domain.Internal(err, "user.authenticate", "failed to load user")
	}

	if err := auth.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, domain.Internal(err, "user.authenticate", "failed to verify password")
	}
	return &user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, domain.Internal(err, "user.get", "failed to load user")
	}
	return &user, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
