package service

import (
	"context"
	"fmt"

	"ipad-assistant-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.EventType())

	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", ps.topicName, err)
	}
	return nil
}
