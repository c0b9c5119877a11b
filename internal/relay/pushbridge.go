// --- File: internal/relay/pushbridge.go ---
// Package relay contains the PushBridge, the listener that relays push
// lifecycle callbacks to the analytics collaborators.
package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// ErrInvalidToken is returned by OnTokenIssued when the provider hands over an empty token.
var ErrInvalidToken = errors.New("invalid device token: empty")

const (
	appIDConfigKey = "client/app_id"
	tokenScope     = "HCM"
)

// Recorder receives outcome counts. It is satisfied by *metrics.Metrics.
type Recorder interface {
	TokenForwarded()
	TokenRejected()
	MessageHandled()
	MessageIgnored()
	MessageFailed()
}

type nopRecorder struct{}

func (nopRecorder) TokenForwarded() {}
func (nopRecorder) TokenRejected()  {}
func (nopRecorder) MessageHandled() {}
func (nopRecorder) MessageIgnored() {}
func (nopRecorder) MessageFailed()  {}

// PushBridge is stateless; one instance serves every callback concurrently.
type PushBridge struct {
	registrar bridge.AnalyticsRegistrar
	ingestor  bridge.AnalyticsIngestor
	app       bridge.Application

	appConfig bridge.AppConfigReader
	lookup    bridge.TokenLookup
	recorder  Recorder
	logger    *slog.Logger
}

// Option configures optional PushBridge collaborators.
type Option func(*PushBridge)

// WithApplication sets the application context passed to the ingestor.
func WithApplication(app bridge.Application) Option {
	return func(b *PushBridge) { b.app = app }
}

// WithDiagnostics enables the provider app-id and token lookup that is logged on
// each token callback. Neither is needed for forwarding.
func WithDiagnostics(appConfig bridge.AppConfigReader, lookup bridge.TokenLookup) Option {
	return func(b *PushBridge) {
		b.appConfig = appConfig
		b.lookup = lookup
	}
}

// WithRecorder attaches an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(b *PushBridge) { b.recorder = r }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *PushBridge) { b.logger = logger }
}

// New creates a PushBridge around the two analytics collaborators.
func New(registrar bridge.AnalyticsRegistrar, ingestor bridge.AnalyticsIngestor, opts ...Option) *PushBridge {
	b := &PushBridge{
		registrar: registrar,
		ingestor:  ingestor,
		recorder:  nopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "PushBridge")
	return b
}

var _ bridge.PushListener = (*PushBridge)(nil)

// OnTokenIssued forwards the token, unchanged, to the registrar.
// Registrar errors are returned as-is.
func (b *PushBridge) OnTokenIssued(ctx context.Context, token bridge.DeviceToken) error {
	if token.Empty() {
		b.recorder.TokenRejected()
		b.logger.Warn("Rejected empty push token")
		return ErrInvalidToken
	}

	b.logDiagnostics(ctx)
	b.logger.Info("Got push token", "token", token.String())

	if err := b.registrar.Register(ctx, token); err != nil {
		return err
	}
	b.recorder.TokenForwarded()
	return nil
}

// OnMessageReceived hands the payload to the ingestor. A handled message is
// logged; an unhandled one is silent.
func (b *PushBridge) OnMessageReceived(ctx context.Context, msg bridge.PushMessage) error {
	handled, err := b.ingestor.Handle(ctx, b.app, msg)
	if err != nil {
		b.recorder.MessageFailed()
		return err
	}
	if !handled {
		b.recorder.MessageIgnored()
		return nil
	}
	b.recorder.MessageHandled()
	b.logger.Info("Analytics has handled push notification", "entries", msg.Len())
	return nil
}

// logDiagnostics mirrors the provider-side token lookup. Failures only warn.
func (b *PushBridge) logDiagnostics(ctx context.Context) {
	if b.appConfig == nil || b.lookup == nil {
		return
	}
	appID, err := b.appConfig.GetString(appIDConfigKey)
	if err != nil {
		b.logger.Warn("Could not read provider app id", "key", appIDConfigKey, "err", err)
		return
	}
	current, err := b.lookup.GetToken(ctx, appID, tokenScope)
	if err != nil {
		b.logger.Warn("Provider token lookup failed", "app_id", appID, "scope", tokenScope, "err", err)
		return
	}
	b.logger.Debug("Provider token lookup", "app_id", appID, "scope", tokenScope, "token", current.String())
}
