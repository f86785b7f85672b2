package ports

import (
	"context"

	"github.com/crowdescrow/escrowd/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, topic string, events ...domain.SubjectEvent) error
	RegisterEventsHandler(topic string, handler func(events []domain.SubjectEvent)) error
	Close()
}
