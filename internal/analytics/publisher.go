package analytics

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
)

// PubsubPublisher publishes engagement events to a single Pub/Sub topic.
type PubsubPublisher struct {
	publisher *pubsub.Publisher
	topicID   string
}

func NewPubsubPublisher(client *pubsub.Client, topicID string) *PubsubPublisher {
	return &PubsubPublisher{
		publisher: client.Publisher(topicID),
		topicID:   topicID,
	}
}

// Publish blocks until the broker acknowledges the message.
func (p *PubsubPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error) {
	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish to topic %s: %w", p.topicID, err)
	}
	return id, nil
}

// Stop flushes pending messages.
func (p *PubsubPublisher) Stop() {
	p.publisher.Stop()
}
