package service

import (
	"github.com/dukerupert/vanir/internal/domain"
)

// Catalog errors - use domain.ENOTFOUND
var (
	ErrProductNotFound  = domain.ErrProductNotFound
	ErrPositionNotFound = domain.ErrPositionNotFound
	ErrDeliverNotFound  = domain.ErrDeliverNotFound
	ErrOrderNotFound    = domain.ErrOrderNotFound
)

// Cart and checkout errors
var (
	ErrEmptyCart       = domain.ErrCartEmpty
	ErrInvalidQuantity = domain.ErrInvalidQuantity
	ErrStaleCart       = domain.ErrStaleCart
)

// Account errors
var (
	ErrUserNotFound       = domain.ErrUserNotFound
	ErrEmailTaken         = domain.ErrEmailTaken
	ErrInvalidCredentials = domain.ErrInvalidCredentials
)
