package events

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ibb-guide/internal/domain/notification"
	"ibb-guide/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

var _ notification.Dispatcher = (*AsyncDispatcher)(nil)

const (
	resultDelivered = "delivered"
	resultRetried   = "retried"
	resultFailed    = "failed"
	resultDropped   = "dropped"
)

type Option func(*AsyncDispatcher)

func WithQueueSize(n int) Option {
	return func(d *AsyncDispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(d *AsyncDispatcher) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithBackoff sets the first retry delay and the cap.
func WithBackoff(base, maxBackoff time.Duration) Option {
	return func(d *AsyncDispatcher) {
		d.baseDelay = base
		d.maxBackoff = maxBackoff
	}
}

func WithMetrics(m *metrics.Metrics) Option { return func(d *AsyncDispatcher) { d.metrics = m } }

// AsyncDispatcher queues events in memory and delivers them from a single
// worker, retrying failed publishes with exponential backoff. Delivery is
// at-least-once while the process is alive; Emit never blocks and never
// reports failure.
type AsyncDispatcher struct {
	pub     notification.Publisher
	log     *zap.Logger
	metrics *metrics.Metrics

	queueSize   int
	maxAttempts int
	baseDelay   time.Duration
	maxBackoff  time.Duration
	rnd         *rand.Rand

	mu       sync.RWMutex
	closed   bool
	queue    chan notification.Event
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewAsyncDispatcher(pub notification.Publisher, log *zap.Logger, opts ...Option) *AsyncDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &AsyncDispatcher{
		pub:         pub,
		log:         log,
		queueSize:   256,
		maxAttempts: 5,
		baseDelay:   time.Second,
		maxBackoff:  30 * time.Second,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, o := range opts {
		o(d)
	}
	d.queue = make(chan notification.Event, d.queueSize)
	go d.run()
	return d
}

func (d *AsyncDispatcher) Emit(_ context.Context, e notification.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher closed, event dropped", zap.String("event_id", e.EventID), zap.String("name", e.Name))
		d.count(e.Name, resultDropped)
		return
	}
	select {
	case d.queue <- e:
	default:
		d.log.Warn("notification queue full, event dropped",
			zap.String("event_id", e.EventID),
			zap.String("name", e.Name),
			zap.Int("queue_size", d.queueSize))
		d.count(e.Name, resultDropped)
	}
}

// Close stops accepting events and waits for the queue to drain. When ctx
// ends first, pending retries are abandoned.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.stopOnce.Do(func() { close(d.stop) })
		<-d.done
		return ctx.Err()
	}
}

func (d *AsyncDispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *AsyncDispatcher) deliver(e notification.Event) {
	for attempt := 1; ; attempt++ {
		err := d.pub.Publish(context.Background(), e)
		if err == nil {
			d.count(e.Name, resultDelivered)
			return
		}
		if attempt >= d.maxAttempts {
			d.log.Warn("notification delivery failed",
				zap.String("event_id", e.EventID),
				zap.String("name", e.Name),
				zap.Int("attempts", attempt),
				zap.Error(err))
			d.count(e.Name, resultFailed)
			return
		}
		d.count(e.Name, resultRetried)

		wait := backoff(attempt, d.baseDelay, d.maxBackoff) + jitter(d.rnd, d.baseDelay/2)
		d.log.Debug("retrying notification",
			zap.String("event_id", e.EventID),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-d.stop:
			t.Stop()
			d.count(e.Name, resultDropped)
			return
		}
	}
}

func (d *AsyncDispatcher) count(event, result string) {
	if d.metrics == nil {
		return
	}
	d.metrics.Notifications.WithLabelValues(event, result).Inc()
}
