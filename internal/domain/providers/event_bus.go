package providers

import (
	"context"

	"github.com/medirisk/assessment-client/internal/domain/entities"
)

// EventBus delivers completed-assessment notifications to interested
// collaborators (analytics, report export) without coupling them to the
// controllers that produce them.
type EventBus interface {
	// Publish delivers an event to all subscribers.
	Publish(ctx context.Context, event *entities.AssessmentEvent) error

	// Subscribe returns a channel of events. The subscription ends when ctx
	// is done.
	Subscribe(ctx context.Context) (<-chan *entities.AssessmentEvent, error)

	// Close closes the bus and all subscriptions.
	Close() error
}
