// --- File: internal/pipeline/transformer.go ---
// Package pipeline contains the lifecycle event intake for the service.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	urn "github.com/tinywideclouds/go-platform/pkg/net/v1"
)

// EventKind names the push lifecycle callback carried by an event.
type EventKind string

const (
	KindTokenIssued     EventKind = "token_issued"
	KindMessageReceived EventKind = "message_received"

	defaultScope = "HCM"
)

// LifecycleEvent is the decoded form of one push lifecycle callback relayed
// from a device installation.
type LifecycleEvent struct {
	Kind           EventKind
	InstallationID urn.URN
	AppID          string
	Scope          string
	Token          string
	// Data is nil when the provider delivered no payload.
	Data map[string]string
}

type lifecycleEventJSON struct {
	Kind           EventKind          `json:"kind"`
	InstallationID string             `json:"installation_id"`
	AppID          string             `json:"app_id"`
	Scope          string             `json:"scope"`
	Token          string             `json:"token"`
	Data           *map[string]string `json:"data"`
}

// LifecycleEventTransformer is a dataflow Transformer that decodes and validates
// a raw message payload into a LifecycleEvent.
//
// Any failure sets skip=true so the StreamingService routes the message to the DLQ.
func LifecycleEventTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*LifecycleEvent, bool, error) {
	var wire lifecycleEventJSON
	if err := json.Unmarshal(msg.Payload, &wire); err != nil {
		return nil, true, fmt.Errorf("failed to unmarshal lifecycle event from message %s: %w", msg.ID, err)
	}

	switch wire.Kind {
	case KindTokenIssued, KindMessageReceived:
	default:
		return nil, true, fmt.Errorf("unknown lifecycle event kind %q in message %s", wire.Kind, msg.ID)
	}

	installation, err := urn.Parse(wire.InstallationID)
	if err != nil {
		return nil, true, fmt.Errorf("invalid installation_id in message %s: %w", msg.ID, err)
	}

	event := &LifecycleEvent{
		Kind:           wire.Kind,
		InstallationID: installation,
		AppID:          wire.AppID,
		Scope:          wire.Scope,
		Token:          wire.Token,
	}
	if event.Scope == "" {
		event.Scope = defaultScope
	}
	if wire.Data != nil {
		event.Data = *wire.Data
		if event.Data == nil {
			event.Data = map[string]string{}
		}
	}
	return event, false, nil
}
