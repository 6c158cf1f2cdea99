package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/medirisk/assessment-client/internal/domain/entities"
	"github.com/medirisk/assessment-client/internal/domain/providers"
)

const subscriberBuffer = 16

// MemoryEventBus implements the EventBus interface with in-process channel
// fan-out. The bus lives inside one client process, so no broker is
// involved; slow subscribers drop events rather than block publishers.
type MemoryEventBus struct {
	mu          sync.RWMutex
	subscribers map[chan *entities.AssessmentEvent]struct{}
	closed      bool
}

// NewMemoryEventBus creates a new in-memory event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{
		subscribers: make(map[chan *entities.AssessmentEvent]struct{}),
	}
}

// Publish delivers an event to all subscribers
func (b *MemoryEventBus) Publish(ctx context.Context, event *entities.AssessmentEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	for subscriber := range b.subscribers {
		select {
		case subscriber <- event:
		default:
			// Subscriber channel full, skip event
			log.Warn().Str("event_id", event.ID).Msg("subscriber channel full, skipping event")
		}
	}
	return nil
}

// Subscribe returns a channel of events; the subscription ends when ctx is
// done
func (b *MemoryEventBus) Subscribe(ctx context.Context) (<-chan *entities.AssessmentEvent, error) {
	eventChan := make(chan *entities.AssessmentEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(eventChan)
		return eventChan, nil
	}
	b.subscribers[eventChan] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.removeSubscriber(eventChan)
	}()

	return eventChan, nil
}

func (b *MemoryEventBus) removeSubscriber(eventChan chan *entities.AssessmentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[eventChan]; !ok {
		return
	}
	delete(b.subscribers, eventChan)
	close(eventChan)
}

// Close closes the bus and all subscriptions
func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for subscriber := range b.subscribers {
		close(subscriber)
		delete(b.subscribers, subscriber)
	}
	return nil
}
