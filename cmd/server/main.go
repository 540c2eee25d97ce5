package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/vanir/internal"
	"github.com/dukerupert/vanir/internal/cookie"
	"github.com/dukerupert/vanir/internal/handler"
	"github.com/dukerupert/vanir/internal/handler/storefront"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/payment"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/dukerupert/vanir/internal/repository"
	"github.com/dukerupert/vanir/internal/router"
	"github.com/dukerupert/vanir/internal/routes"
	"github.com/dukerupert/vanir/internal/service"
	"github.com/dukerupert/vanir/internal/session"
	"github.com/dukerupert/vanir/internal/shipping"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize repository and pricing engine
	store := repository.NewStore(pool)
	engine := pricing.NewEngine(store)
	policy := shipping.NewPolicy()

	// Initialize services
	catalogService := service.NewCatalogService(store, engine)
	cartService := service.NewCartService(store, engine)
	userService := service.NewUserService(store)
	orderService := service.NewOrderService(store)

	// Initialize session manager
	sessions := session.NewManager(store, logger)
	go sweepSessions(ctx, sessions, logger)

	// Initialize payment confirmation dispatcher
	paymentMetrics := payment.NewMetrics("vanir", prometheus.DefaultRegisterer)
	dispatcher := payment.NewDispatcher(orderService, payment.Config{
		Workers:   cfg.Payment.Workers,
		QueueSize: cfg.Payment.QueueSize,
		Delay:     cfg.Payment.Delay,
	}, logger, paymentMetrics)
	dispatcher.Start()

	checkoutService := service.NewCheckoutService(
		store,
		sessions,
		cartService,
		userService,
		policy,
		dispatcher,
		logger,
	)

	// Orders stuck in created with online payment never settle on their
	// own because card numbers are not retained. Surface them at startup.
	if pending, err := store.ListOrdersAwaitingPayment(ctx); err != nil {
		logger.Warn("failed to count orders awaiting payment", "error", err)
	} else if len(pending) > 0 {
		logger.Warn("orders awaiting payment confirmation", "count", len(pending))
	}

	// Load templates with renderer
	logger.Info("Loading templates...")
	renderer, err := handler.NewRenderer("web/templates")
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	logger.Info("Templates loaded successfully")

	// Initialize middleware
	metrics := middleware.NewMetrics("vanir")
	cookies := cookie.NewConfig(cfg.CookieSecure)

	// Build route dependencies
	deps := routes.Deps{
		ProductHandler:  storefront.NewProductHandler(catalogService, renderer),
		CartHandler:     storefront.NewCartHandler(cartService, renderer),
		CheckoutHandler: storefront.NewCheckoutHandler(checkoutService, catalogService, cartService, cookies, renderer),
		PaymentHandler:  storefront.NewPaymentHandler(orderService, checkoutService, cfg.BaseURL, renderer),
		OrderHandler:    storefront.NewOrderHandler(orderService, renderer),
		AuthHandler:     storefront.NewAuthHandler(userService, sessions, cookies, renderer),
		MetricsHandler:  metrics.Handler(),
	}

	// Create router and register routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.Sessions(sessions, cookies),
		middleware.WithUser(userService),
		middleware.WithRequestLogger(logger),
	)
	routes.Register(r, deps)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting storefront server", "address", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown: stop accepting requests, then drain the payment
	// queue so accepted confirmations still settle.
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Error("payment dispatcher drain failed", "error", err)
	}
	logger.Info("Shutdown complete")
	return nil
}

// sweepSessions deletes expired sessions once an hour.
func sweepSessions(ctx context.Context, sessions *session.Manager, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
