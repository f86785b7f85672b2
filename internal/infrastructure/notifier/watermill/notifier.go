package watermillnotifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/crowdescrow/escrowd/internal/core/domain"
	"github.com/crowdescrow/escrowd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	outputBuffer   = 1024
	subjectIdKey   = "subject_id"
	eventsCountKey = "events"
)

type notifier struct {
	pubsub *gochannel.GoChannel
	ctx    context.Context
	cancel context.CancelFunc
	wg     *sync.WaitGroup
}

// NewNotifier returns an in-process event bus. Every Publish call is
// delivered as a single batch to the handlers of its topic.
func NewNotifier() ports.EventPublisher {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: outputBuffer},
		newLogger(),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &notifier{pubsub, ctx, cancel, &sync.WaitGroup{}}
}

func (n *notifier) Publish(
	_ context.Context, topic string, events ...domain.SubjectEvent,
) error {
	if len(events) <= 0 {
		return nil
	}

	payload, err := encodeEvents(events)
	if err != nil {
		return fmt.Errorf("failed to encode events: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(subjectIdKey, events[0].GetSubjectId())
	msg.Metadata.Set(eventsCountKey, fmt.Sprintf("%d", len(events)))

	return n.pubsub.Publish(topic, msg)
}

func (n *notifier) RegisterEventsHandler(
	topic string, handler func(events []domain.SubjectEvent),
) error {
	messages, err := n.pubsub.Subscribe(n.ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		for msg := range messages {
			events, err := decodeEvents(msg.Payload)
			if err != nil {
				log.WithError(err).Warnf(
					"notifier: dropping malformed message %s on topic %s", msg.UUID, topic,
				)
				msg.Ack()
				continue
			}
			handler(events)
			msg.Ack()
		}
	}()
	return nil
}

func (n *notifier) Close() {
	n.cancel()
	if err := n.pubsub.Close(); err != nil {
		log.WithError(err).Warn("notifier: failed to close pubsub")
	}
	n.wg.Wait()
}
