package events

import (
	"sync"

	"go.uber.org/zap"
)

// Bus provides pub/sub fan-out for domain events.
type Bus interface {
	// Publish delivers an event to all subscribers synchronously
	Publish(event Event) error

	// PublishAsync delivers an event in the background
	PublishAsync(event Event)

	// Subscribe registers a handler for a specific event type
	Subscribe(eventType string, handler Handler)

	// Stop waits for in-flight async deliveries to finish
	Stop()
}

// InMemoryBus is an in-process implementation of Bus.
type InMemoryBus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger.Named("eventbus"),
	}
}

// Publish delivers an event to all subscribers. Handler failures are logged
// and do not stop delivery to the remaining handlers.
func (b *InMemoryBus) Publish(event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(event); err != nil {
			b.logger.Error("event handler failed",
				zap.String("event_type", event.EventType()),
				zap.String("handler", handler.Name()),
				zap.Error(err))
		}
	}

	return nil
}

// PublishAsync delivers an event in the background.
func (b *InMemoryBus) PublishAsync(event Event) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.Publish(event); err != nil {
			b.logger.Error("async event publish failed",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}()
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.logger.Debug("event handler subscribed",
		zap.String("event_type", eventType),
		zap.String("handler", handler.Name()))
}

// Stop waits for in-flight async deliveries to finish.
func (b *InMemoryBus) Stop() {
	b.wg.Wait()
}
