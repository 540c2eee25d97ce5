// Package payment confirms order payments asynchronously. Submitting a card
// never blocks the checkout request; a small worker pool settles each order
// as paid or unpaid.
package payment

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Job is one payment confirmation request.
type Job struct {
	OrderID    int64
	CardNumber string
}

// Settler records the outcome of a payment attempt. Implemented by the
// order service.
type Settler interface {
	SettlePayment(ctx context.Context, orderID int64, paid bool) error
}

// Config holds dispatcher configuration.
type Config struct {
	// Workers is the number of concurrent confirmation goroutines.
	Workers int

	// QueueSize is the submission buffer. When it is full, Submit drops
	// the job instead of blocking the checkout request.
	QueueSize int

	// SettleTimeout bounds each settlement database write.
	SettleTimeout time.Duration

	// Delay simulates provider latency before each confirmation.
	// Zero means confirm immediately.
	Delay time.Duration
}

// Metrics holds Prometheus collectors for the dispatcher.
type Metrics struct {
	submitted prometheus.Counter
	dropped   prometheus.Counter
	settled   *prometheus.CounterVec
}

// NewMetrics creates and registers dispatcher metrics.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "vanir"
	}
	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_jobs_submitted_total",
			Help:      "Total number of payment confirmations submitted",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_jobs_dropped_total",
			Help:      "Total number of payment confirmations dropped due to a full queue",
		}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_jobs_settled_total",
			Help:      "Total number of payment confirmations settled",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.submitted, m.dropped, m.settled)
	return m
}

// Dispatcher runs the confirmation worker pool.
type Dispatcher struct {
	config  Config
	settler Settler
	logger  *slog.Logger
	metrics *Metrics

	jobs chan Job
	wg   sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewDispatcher creates a dispatcher. Metrics may be nil to disable
// instrumentation.
func NewDispatcher(settler Settler, config Config, logger *slog.Logger, metrics *Metrics) *Dispatcher {
	if config.Workers == 0 {
		config.Workers = 2
	}
	if config.QueueSize == 0 {
		config.QueueSize = 64
	}
	if config.SettleTimeout == 0 {
		config.SettleTimeout = 10 * time.Second
	}
	return &Dispatcher{
		config:  config,
		settler: settler,
		logger:  logger,
		metrics: metrics,
		jobs:    make(chan Job, config.QueueSize),
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.logger.Info("payment dispatcher starting",
		"workers", d.config.Workers,
		"queue_size", d.config.QueueSize,
	)
	for i := 0; i < d.config.Workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

// Submit queues a payment confirmation. It never blocks: when the queue is
// full or the dispatcher has stopped, the job is dropped with a warning and
// false is returned, leaving the order in its created state.
func (d *Dispatcher) Submit(job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		d.logger.Warn("payment job rejected after shutdown", "order_id", job.OrderID)
		return false
	}
	select {
	case d.jobs <- job:
		if d.metrics != nil {
			d.metrics.submitted.Inc()
		}
		return true
	default:
		d.logger.Warn("payment queue full, dropping job", "order_id", job.OrderID)
		if d.metrics != nil {
			d.metrics.dropped.Inc()
		}
		return false
	}
}

// Stop refuses new jobs, drains the queue, and waits for in-flight
// confirmations, or gives up when the context expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.jobs)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.logger.Info("payment dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.process(job)
	}
}

func (d *Dispatcher) process(job Job) {
	if d.config.Delay > 0 {
		time.Sleep(d.config.Delay)
	}
	paid := CardQualifies(job.CardNumber)

	ctx, cancel := context.WithTimeout(context.Background(), d.config.SettleTimeout)
	defer cancel()
	if err := d.settler.SettlePayment(ctx, job.OrderID, paid); err != nil {
		d.logger.Error("failed to settle payment",
			"order_id", job.OrderID,
			"paid", paid,
			"error", err,
		)
		return
	}
	outcome := "unpaid"
	if paid {
		outcome = "paid"
	}
	if d.metrics != nil {
		d.metrics.settled.WithLabelValues(outcome).Inc()
	}
	d.logger.Info("payment settled", "order_id", job.OrderID, "outcome", outcome)
}

// CardQualifies is the toy confirmation rule: the card number, ignoring
// whitespace, must be all digits, even, and not end in zero. Anything else
// settles the order as unpaid.
func CardQualifies(cardNumber string) bool {
	num := strings.Join(strings.Fields(cardNumber), "")
	if num == "" {
		return false
	}
	for _, r := range num {
		if r < '0' || r > '9' {
			return false
		}
	}
	last := num[len(num)-1]
	return (last-'0')%2 == 0 && last != '0'
}
