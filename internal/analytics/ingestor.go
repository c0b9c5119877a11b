// Package analytics provides the engagement ingestor that records push
// payloads belonging to analytics campaigns.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// DefaultMarkerKeys identify a payload as an analytics campaign push.
var DefaultMarkerKeys = []string{"_ab", "campaign_id", "cid"}

// EventPublisher sends one encoded engagement event and returns the broker message ID.
type EventPublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) (string, error)
}

// EngagementEvent is the record published for every handled push.
type EngagementEvent struct {
	EventID    string            `json:"event_id"`
	AppID      string            `json:"app_id"`
	Provider   string            `json:"provider"`
	CampaignID string            `json:"campaign_id,omitempty"`
	Data       map[string]string `json:"data"`
	ReceivedAt time.Time         `json:"received_at"`
}

type Ingestor struct {
	publisher  EventPublisher
	markerKeys []string
	now        func() time.Time
	logger     *slog.Logger
}

// NewIngestor builds an ingestor. An empty markerKeys falls back to DefaultMarkerKeys.
func NewIngestor(publisher EventPublisher, markerKeys []string, logger *slog.Logger) *Ingestor {
	if len(markerKeys) == 0 {
		markerKeys = DefaultMarkerKeys
	}
	return &Ingestor{
		publisher:  publisher,
		markerKeys: markerKeys,
		now:        time.Now,
		logger:     logger.With("component", "EngagementIngestor"),
	}
}

var _ bridge.AnalyticsIngestor = (*Ingestor)(nil)

// Handle publishes an engagement event for recognized payloads. Absent and
// unrecognized messages return false without side effects.
func (i *Ingestor) Handle(ctx context.Context, app bridge.Application, msg bridge.PushMessage) (bool, error) {
	if !msg.Present() || !i.recognized(msg) {
		return false, nil
	}

	event := EngagementEvent{
		EventID:    uuid.NewString(),
		AppID:      app.AppID,
		Provider:   app.Provider,
		CampaignID: campaignID(msg),
		Data:       msg.Data(),
		ReceivedAt: i.now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("failed to encode engagement event: %w", err)
	}

	attrs := map[string]string{
		"event_type": "push_received",
		"app_id":     app.AppID,
	}
	msgID, err := i.publisher.Publish(ctx, payload, attrs)
	if err != nil {
		return false, fmt.Errorf("failed to publish engagement event %s: %w", event.EventID, err)
	}

	i.logger.Debug("Engagement event published", "event_id", event.EventID, "pubsub_msg_id", msgID)
	return true, nil
}

func (i *Ingestor) recognized(msg bridge.PushMessage) bool {
	for _, k := range i.markerKeys {
		if _, ok := msg.Get(k); ok {
			return true
		}
	}
	return false
}

func campaignID(msg bridge.PushMessage) string {
	for _, k := range []string{"campaign_id", "cid"} {
		if v, ok := msg.Get(k); ok {
			return v
		}
	}
	return ""
}
