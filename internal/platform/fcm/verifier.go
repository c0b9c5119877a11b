// --- File: internal/platform/fcm/verifier.go ---
package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/v4/messaging"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// ErrTokenRejected is returned when FCM reports the token as malformed or unregistered.
var ErrTokenRejected = bridge.ErrTokenRejected

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it.
type MessagingClient interface {
	SendDryRun(ctx context.Context, msg *messaging.Message) (string, error)
}

// VerifyingRegistrar checks a token with an FCM dry-run send before handing it
// to the wrapped registrar.
type VerifyingRegistrar struct {
	client MessagingClient
	next   bridge.AnalyticsRegistrar
	logger *slog.Logger
}

func NewVerifyingRegistrar(client MessagingClient, next bridge.AnalyticsRegistrar, logger *slog.Logger) *VerifyingRegistrar {
	return &VerifyingRegistrar{
		client: client,
		next:   next,
		logger: logger.With("component", "FCMVerifier"),
	}
}

var _ bridge.AnalyticsRegistrar = (*VerifyingRegistrar)(nil)

func (v *VerifyingRegistrar) Register(ctx context.Context, token bridge.DeviceToken) error {
	_, err := v.client.SendDryRun(ctx, &messaging.Message{
		Token: token.String(),
		Data:  map[string]string{"verify": "1"},
	})
	if err != nil {
		if messaging.IsInvalidArgument(err) || messaging.IsRegistrationTokenNotRegistered(err) {
			v.logger.Warn("FCM rejected device token", "err", err)
			return fmt.Errorf("%w by fcm: %v", ErrTokenRejected, err)
		}
		// Real network/auth failure -> Retry
		return fmt.Errorf("fcm verification failed: %w", err)
	}

	return v.next.Register(ctx, token)
}
