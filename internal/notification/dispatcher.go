package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"bestea-be/internal/logger"
	"bestea-be/internal/metrics"
	"bestea-be/internal/order"

	"go.uber.org/zap"
)

type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff        time.Duration
	PublishTimeout time.Duration
}

func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:        2,
		QueueSize:      256,
		MaxAttempts:    3,
		Backoff:        200 * time.Millisecond,
		PublishTimeout: 5 * time.Second,
	}
}

type job struct {
	ctx context.Context
	msg Message
}

// Dispatcher implements order.Notifier by queueing events for background
// workers. Notify never blocks: a full queue is reported as ErrQueueFull.
type Dispatcher struct {
	publisher Publisher
	cfg       DispatcherConfig
	metrics   *metrics.Registry

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
}

var _ order.Notifier = (*Dispatcher)(nil)

func NewDispatcher(publisher Publisher, cfg DispatcherConfig, reg *metrics.Registry) *Dispatcher {
	def := DefaultDispatcherConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = def.PublishTimeout
	}
	if reg == nil {
		reg = metrics.Default
	}

	d := &Dispatcher{
		publisher: publisher,
		cfg:       cfg,
		metrics:   reg,
		queue:     make(chan job, cfg.QueueSize),
	}

	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.work()
	}
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, e order.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	// keep request values for logging, drop the request's cancellation
	j := job{ctx: context.WithoutCancel(ctx), msg: FromEvent(e)}

	select {
	case d.queue <- j:
		d.metrics.Counter("notifications_queued").Inc()
		return nil
	default:
		d.metrics.Counter("notifications_dropped").Inc()
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be published,
// or for ctx to end. The publisher is closed either way.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return d.publisher.Close()
	case <-ctx.Done():
		// Workers still blocked on the publisher fail fast once it is closed.
		return errors.Join(ctx.Err(), d.publisher.Close())
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	log := logger.FromCtx(j.ctx).With(
		zap.String("layer", "notification"),
		zap.String("type", j.msg.Type),
		zap.String("order_number", j.msg.OrderNumber),
	)

	backoff := d.cfg.Backoff
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(j.ctx, d.cfg.PublishTimeout)
		err := d.publisher.Publish(ctx, j.msg)
		cancel()

		if err == nil {
			d.metrics.Counter("notifications_published").Inc()
			return
		}

		if attempt >= d.cfg.MaxAttempts {
			d.metrics.Counter("notifications_failed").Inc()
			log.Error("giving up on notification", zap.Int("attempts", attempt), zap.Error(err))
			return
		}

		d.metrics.Counter("notification_retries").Inc()
		log.Warn("notification publish failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)
		time.Sleep(backoff)
		backoff *= 2
	}
}
