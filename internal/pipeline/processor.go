package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"

	"github.com/tinywideclouds/go-pushbridge-service/internal/relay"
	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// NewProcessor creates the logic that hands each lifecycle event to the push listener.
// Token events are first recorded in the directory so later lookups see them.
func NewProcessor(
	listener bridge.PushListener,
	directory bridge.TokenDirectory,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[LifecycleEvent] {

	return func(ctx context.Context, original messagepipeline.Message, event *LifecycleEvent) error {
		procLogger := logger.With(
			"installation_id", event.InstallationID.String(),
			"kind", string(event.Kind),
			"pubsub_msg_id", original.ID,
		)

		switch event.Kind {
		case KindTokenIssued:
			token := bridge.DeviceToken(event.Token)
			switch {
			case token.Empty():
				// Rejected by OnTokenIssued below.
			case event.AppID == "":
				// The directory is keyed by app; forwarding does not need it.
				procLogger.Warn("Token event has no app_id, not recording it in the directory")
			default:
				if err := directory.Record(ctx, event.AppID, event.Scope, token); err != nil {
					procLogger.Error("Failed to record issued token", "err", err)
					return err // Retryable
				}
			}

			err := listener.OnTokenIssued(ctx, token)
			if errors.Is(err, relay.ErrInvalidToken) || errors.Is(err, bridge.ErrTokenRejected) {
				// Redelivery cannot fix a token that was refused.
				procLogger.Warn("Dropping token event with rejected token", "err", err)
				return nil
			}
			if err != nil {
				procLogger.Error("Token forwarding failed", "err", err)
				return err
			}
			return nil

		case KindMessageReceived:
			msg := bridge.AbsentMessage()
			if event.Data != nil {
				msg = bridge.NewPushMessage(event.Data)
			}
			if err := listener.OnMessageReceived(ctx, msg); err != nil {
				procLogger.Error("Message forwarding failed", "err", err)
				return err
			}
			return nil

		default:
			procLogger.Warn("Ignoring lifecycle event of unknown kind")
			return nil
		}
	}
}
