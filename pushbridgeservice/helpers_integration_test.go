// --- File: pushbridgeservice/helpers_integration_test.go ---
//go:build integration

package pushbridgeservice_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// --- MOCKS ---

type recordingRegistrar struct {
	mu     sync.Mutex
	tokens []bridge.DeviceToken
}

func (r *recordingRegistrar) Register(_ context.Context, token bridge.DeviceToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *recordingRegistrar) Tokens() []bridge.DeviceToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bridge.DeviceToken(nil), r.tokens...)
}

type recordingIngestor struct {
	mu       sync.Mutex
	messages []bridge.PushMessage
}

func (i *recordingIngestor) Handle(_ context.Context, _ bridge.Application, msg bridge.PushMessage) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages = append(i.messages, msg)
	_, ok := msg.Get("campaign_id")
	return ok, nil
}

func (i *recordingIngestor) Messages() []bridge.PushMessage {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]bridge.PushMessage(nil), i.messages...)
}

func createPubsubResources(t *testing.T, ctx context.Context, client *pubsub.Client, projectID, topicID, subID string) {
	t.Helper()
	topicName := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	_, err := client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: topicName})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.TopicAdminClient.DeleteTopic(context.Background(), &pubsubpb.DeleteTopicRequest{Topic: topicName})
	})

	subName := fmt.Sprintf("projects/%s/subscriptions/%s", projectID, subID)
	sub := &pubsubpb.Subscription{
		Name:               subName,
		Topic:              topicName,
		AckDeadlineSeconds: 10,
		RetryPolicy: &pubsubpb.RetryPolicy{
			MinimumBackoff: &durationpb.Duration{Seconds: 1},
		},
	}
	_, err = client.SubscriptionAdminClient.CreateSubscription(ctx, sub)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.SubscriptionAdminClient.DeleteSubscription(context.Background(), &pubsubpb.DeleteSubscriptionRequest{Subscription: subName})
	})
}
