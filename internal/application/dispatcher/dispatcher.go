package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/voucher-flow/internal/domain/event"
)

// ErrClosed is returned by Dispatch after Close
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes lifecycle events to subscribed handlers. Handlers run
// synchronously, in registration order, on the caller's goroutine.
type Dispatcher interface {
	// Subscribe registers a named handler for one event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// SubscribeAll registers a named handler for every event type
	SubscribeAll(name string, handler Handler)

	// Unsubscribe removes a handler by name
	Unsubscribe(eventType event.Type, name string)

	// Dispatch runs every handler for evt. All handlers run even when one
	// fails; the failures are joined into the returned error.
	Dispatch(ctx context.Context, evt *event.Event) error

	// ListHandlers returns the handlers registered for eventType
	ListHandlers(eventType event.Type) []HandlerInfo

	// Close rejects further dispatches
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	closed   bool
	logger   Logger
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{
		Name:      name,
		EventType: eventType,
		Handler:   handler,
	})

	if d.logger != nil {
		d.logger.Info("Handler registered", "event_type", eventType, "handler_name", name)
	}
}

func (d *eventDispatcher) SubscribeAll(name string, handler Handler) {
	d.Subscribe(allEvents, name, handler)
}

func (d *eventDispatcher) Unsubscribe(eventType event.Type, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	handlers := d.handlers[eventType]
	filtered := handlers[:0:0]
	for _, h := range handlers {
		if h.Name != name {
			filtered = append(filtered, h)
		}
	}
	d.handlers[eventType] = filtered
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return ErrClosed
	}
	handlers := make([]HandlerInfo, 0, len(d.handlers[evt.Type])+len(d.handlers[allEvents]))
	handlers = append(handlers, d.handlers[evt.Type]...)
	handlers = append(handlers, d.handlers[allEvents]...)
	d.mu.RUnlock()

	var errs []error
	for _, info := range handlers {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			if d.logger != nil {
				d.logger.Error("Handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"voucher_id", evt.VoucherID,
					"handler_name", info.Name,
					"error", err,
				)
			}
			errs = append(errs, fmt.Errorf("handler %s failed: %w", info.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (d *eventDispatcher) ListHandlers(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]HandlerInfo, len(d.handlers[eventType]))
	for i, h := range d.handlers[eventType] {
		result[i] = HandlerInfo{Name: h.Name, EventType: h.EventType}
	}
	return result
}

func (d *eventDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return nil
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return info.Handler(ctx, evt)
}
