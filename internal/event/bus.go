// Package event implements the in-process publish/subscribe bus shared by
// LANScope modules.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// Compile-time interface guard.
var _ plugin.EventBus = (*Bus)(nil)

// Bus is a thread-safe in-process event bus. Handlers run in the caller's
// goroutine for Publish and in a separate goroutine for PublishAsync; a
// panicking handler never takes down the publisher or other handlers.
type Bus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]plugin.EventHandler // topic -> id -> handler
	all      map[int]plugin.EventHandler
}

// NewBus creates an empty event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger:   logger,
		handlers: make(map[string]map[int]plugin.EventHandler),
		all:      make(map[int]plugin.EventHandler),
	}
}

// Subscribe registers a handler for a single topic. The returned function
// removes the subscription.
func (b *Bus) Subscribe(topic string, handler plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[int]plugin.EventHandler)
	}
	b.handlers[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[topic], id)
	}
}

// SubscribeAll registers a handler for every topic. The returned function
// removes the subscription.
func (b *Bus) SubscribeAll(handler plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.all[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.all, id)
	}
}

// Publish delivers the event to all matching subscribers synchronously.
func (b *Bus) Publish(ctx context.Context, event plugin.Event) error {
	for _, h := range b.snapshot(event.Topic) {
		b.dispatch(ctx, h, event)
	}
	return nil
}

// PublishAsync delivers the event in a background goroutine.
func (b *Bus) PublishAsync(ctx context.Context, event plugin.Event) {
	handlers := b.snapshot(event.Topic)
	go func() {
		for _, h := range handlers {
			b.dispatch(ctx, h, event)
		}
	}()
}

// snapshot copies the handlers matching a topic so delivery runs lock-free.
func (b *Bus) snapshot(topic string) []plugin.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]plugin.EventHandler, 0, len(b.handlers[topic])+len(b.all))
	for _, h := range b.handlers[topic] {
		out = append(out, h)
	}
	for _, h := range b.all {
		out = append(out, h)
	}
	return out
}

// dispatch invokes a single handler, recovering from panics.
func (b *Bus) dispatch(ctx context.Context, handler plugin.EventHandler, event plugin.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", event.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ctx, event)
}
