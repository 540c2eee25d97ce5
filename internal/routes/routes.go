// Package routes wires handlers onto the router.
package routes

import (
	"net/http"

	"github.com/dukerupert/vanir/internal/handler/storefront"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/router"
)

// Deps contains the handlers for all storefront routes.
type Deps struct {
	ProductHandler  *storefront.ProductHandler
	CartHandler     *storefront.CartHandler
	CheckoutHandler *storefront.CheckoutHandler
	PaymentHandler  *storefront.PaymentHandler
	OrderHandler    *storefront.OrderHandler
	AuthHandler     *storefront.AuthHandler

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler
}

// Register registers all storefront routes.
func Register(r *router.Router, deps Deps) {
	// Catalog
	r.Get("/", deps.ProductHandler.List)
	r.Get("/products", deps.ProductHandler.List)
	r.Get("/products/{id}", deps.ProductHandler.Detail)

	// Shopping cart
	r.Get("/cart", deps.CartHandler.View)
	r.Post("/cart/add", deps.CartHandler.Add)
	r.Post("/cart/remove", deps.CartHandler.Remove)

	// Authentication
	r.Get("/login", deps.AuthHandler.ShowLogin)
	r.Post("/login", deps.AuthHandler.Login)
	r.Post("/logout", deps.AuthHandler.Logout)

	// Checkout wizard
	r.Get("/checkout", deps.CheckoutHandler.Page)
	r.Post("/checkout", deps.CheckoutHandler.Submit)
	r.Post("/checkout/login", deps.CheckoutHandler.Login)

	// Payment
	r.Get("/payment/{id}", deps.PaymentHandler.Page)
	r.Post("/payment/{id}", deps.PaymentHandler.SubmitCard)
	r.Get("/payment/{id}/someone", deps.PaymentHandler.Someone)
	r.Get("/payment/{id}/status", deps.PaymentHandler.Status)

	// Orders
	r.Get("/orders/{id}", deps.OrderHandler.Detail)
	account := r.Group(middleware.RequireAuth)
	account.Get("/account/orders", deps.OrderHandler.List)

	// Operations
	r.Handle(http.MethodGet, "/metrics", deps.MetricsHandler)

	// Static assets
	r.Static("/static", "./web/static")
}
