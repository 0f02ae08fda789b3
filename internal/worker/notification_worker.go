package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/events"
)

const deliveryTimeout = 10 * time.Second

var (
	// ErrQueueFull is returned to the dispatcher when an event is dropped.
	ErrQueueFull = errors.New("notification queue full")
	// ErrStopped is returned for events published after Stop.
	ErrStopped = errors.New("notification worker stopped")
)

// NotificationHandler delivers the notifications for one event.
type NotificationHandler interface {
	EventTypes() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path.
// Events are buffered in a bounded queue; when it is full they are dropped.
type NotificationWorker struct {
	handler NotificationHandler
	queue   chan events.Event
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewNotificationWorker builds an idle worker; call Subscribe and Start.
func NewNotificationWorker(handler NotificationHandler, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		handler: handler,
		queue:   make(chan events.Event, queueSize),
		logger:  logger,
	}
}

// StartNotificationWorker wires handler to every event it understands and starts delivering.
func StartNotificationWorker(dispatcher events.Dispatcher, handler NotificationHandler, cfg config.NotificationConfig, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(handler, cfg.QueueSize, logger)
	w.Subscribe(dispatcher)
	w.Start(cfg.Workers)
	return w
}

// Subscribe routes the handler's event types into the queue.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range w.handler.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

// Start launches n delivery goroutines.
func (w *NotificationWorker) Start(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go w.run()
	}
	w.logger.Info("notification worker started", zap.Int("workers", n), zap.Int("queue_size", cap(w.queue)))
}

// Stop refuses new events and waits for queued ones to be delivered.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		w.logger.Warn("notification worker stopped before draining", zap.Int("pending", len(w.queue)))
		return ctx.Err()
	}
}

// Dropped counts events lost to a full queue.
func (w *NotificationWorker) Dropped() int64 {
	return w.dropped.Load()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrStopped
	}
	select {
	case w.queue <- event:
		return nil
	default:
		w.dropped.Add(1)
		return ErrQueueFull
	}
}

func (w *NotificationWorker) run() {
	defer w.wg.Done()
	for event := range w.queue {
		w.deliver(event)
	}
}

// deliver runs outside any request, so the handler gets its own deadline.
func (w *NotificationWorker) deliver(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("notification handler panicked",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.Any("panic", r))
		}
	}()

	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
