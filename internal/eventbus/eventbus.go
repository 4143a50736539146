// Package eventbus dispatches committed domain events to in-process handlers.
package eventbus

import (
	"context"
	"expvar"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/event"
)

// Published counts events handed to Publish, keyed by event type.
// It is served on the debug vars endpoint.
var Published = expvar.NewMap("events_published")

// HandlerErrors counts handler failures keyed by event type.
var HandlerErrors = expvar.NewMap("event_handler_errors")

type Handler interface {
	Handle(ctx context.Context, e event.Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e event.Event) error

func (f HandlerFunc) Handle(ctx context.Context, e event.Event) error { return f(ctx, e) }

// Bus delivers events synchronously to the handlers subscribed to their exact
// type, in subscription order. The first handler error stops delivery and is
// returned to the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[event.Type][]Handler
	logger   *logrus.Logger
}

func New(logger *logrus.Logger) *Bus {
	if logger == nil {
		logger = logrus.New()
	}
	return &Bus{
		handlers: make(map[event.Type][]Handler),
		logger:   logger,
	}
}

func (b *Bus) Subscribe(kind event.Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
	b.logger.WithField("event_type", kind).Debug("handler subscribed")
}

// Handlers reports how many handlers are subscribed to kind.
func (b *Bus) Handlers(kind event.Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

func (b *Bus) Publish(ctx context.Context, e event.Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[e.EventType()]...)
	b.mu.RUnlock()

	Published.Add(e.EventType().String(), 1)
	log := b.logger.WithFields(logrus.Fields{
		"event_type":   e.EventType(),
		"event_id":     e.EventID(),
		"aggregate_id": e.AggregateID(),
		"handlers":     len(handlers),
	})
	log.Debug("publishing event")

	for i, h := range handlers {
		if err := h.Handle(ctx, e); err != nil {
			HandlerErrors.Add(e.EventType().String(), 1)
			log.WithError(err).WithField("handler", i).Error("event handler failed")
			return fmt.Errorf("handle %s: %w", e.EventType(), err)
		}
	}
	return nil
}
