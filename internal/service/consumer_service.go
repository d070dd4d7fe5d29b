package service

import (
	"context"

	"ipad-assistant-be/internal/pkg/logger"
	"ipad-assistant-be/pkg/events"
	"ipad-assistant-be/pkg/usage"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventForwarder ships events off the process. *nats.Publisher satisfies it.
type EventForwarder interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventSource delivers exported events back to this instance.
// *nats.Subscriber satisfies it.
type EventSource interface {
	Subscribe(ctx context.Context, eventType string, durableName string, handler func(ctx context.Context, event events.Event) error) error
}

type IConsumerService interface {
	// Consume blocks until ctx is done.
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	tracker   *usage.Tracker
	forwarder EventForwarder
	source    EventSource
	durable   string
	logger    logger.ILogger
}

// NewConsumerService wires the local event topic to the usage tracker. When a
// forwarder and source are given, events go out through the forwarder and
// come back through the source before they are counted, so every instance
// sharing the stream sees the same totals.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	tracker *usage.Tracker,
	forwarder EventForwarder,
	source EventSource,
	durable string,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		tracker:   tracker,
		forwarder: forwarder,
		source:    source,
		durable:   durable,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	exporting := cs.forwarder != nil && cs.source != nil
	if exporting {
		err := cs.source.Subscribe(ctx, events.TypeChatCompleted, cs.durable, func(_ context.Context, event events.Event) error {
			cs.tracker.Record(event)
			return nil
		})
		if err != nil {
			cs.logger.Warn("CONSUMER", "Event export subscription failed, counting locally", map[string]interface{}{"error": err.Error()})
			exporting = false
		}
	}

	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	cs.logger.Info("CONSUMER", "Consuming chat events", map[string]interface{}{
		"topic":     cs.topicName,
		"exporting": exporting,
	})

	for msg := range messages {
		cs.processMessage(ctx, msg, exporting)
	}
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message, exporting bool) {
	// Malformed or not, the message is acked; redelivery cannot fix it.
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error("CONSUMER", "Failed to decode event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if !exporting {
		cs.tracker.Record(event)
		return
	}

	if err := cs.forwarder.Publish(ctx, event); err != nil {
		cs.logger.Warn("CONSUMER", "Export failed, counting locally", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		cs.tracker.Record(event)
	}
}
