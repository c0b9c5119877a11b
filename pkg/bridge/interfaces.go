// --- File: pkg/bridge/interfaces.go ---
package bridge

import (
	"context"
	"errors"
)

// ErrTokenRejected is returned by a registrar that knows the token can never be
// registered. Callers treat it as permanent.
var ErrTokenRejected = errors.New("device token rejected")

// PushListener is implemented by anything that wants to observe push lifecycle
// callbacks. The host runtime (Pub/Sub pipeline, callback API) holds a listener
// that is handed to it explicitly at construction.
type PushListener interface {
	// OnTokenIssued is invoked when the push provider issues a new device token.
	OnTokenIssued(ctx context.Context, token DeviceToken) error
	// OnMessageReceived is invoked when a push message arrives. The message may be absent.
	OnMessageReceived(ctx context.Context, msg PushMessage) error
}

// AnalyticsRegistrar associates a device token with engagement tracking.
type AnalyticsRegistrar interface {
	Register(ctx context.Context, token DeviceToken) error
}

// AnalyticsIngestor decides whether a push payload belongs to the analytics
// system and, if so, records it. The bool reports whether the message was handled.
type AnalyticsIngestor interface {
	Handle(ctx context.Context, app Application, msg PushMessage) (bool, error)
}

// TokenLookup is the provider's synchronous token lookup.
type TokenLookup interface {
	GetToken(ctx context.Context, appID, scope string) (DeviceToken, error)
}

// TokenDirectory is the provider-side bookkeeping that backs TokenLookup.
type TokenDirectory interface {
	TokenLookup
	Record(ctx context.Context, appID, scope string, token DeviceToken) error
}

// AppConfigReader reads string values out of the provider's application configuration.
type AppConfigReader interface {
	GetString(key string) (string, error)
}
