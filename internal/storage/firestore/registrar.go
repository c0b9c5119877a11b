package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// RegistrarStore implements bridge.AnalyticsRegistrar by keeping one
// registration document per device token.
type RegistrarStore struct {
	client *firestore.Client
	app    bridge.Application
}

func NewRegistrarStore(client *firestore.Client, app bridge.Application) *RegistrarStore {
	return &RegistrarStore{client: client, app: app}
}

type registrationRecord struct {
	Token        string    `firestore:"token"`
	Provider     string    `firestore:"provider"`
	AppID        string    `firestore:"app_id"`
	RegisteredAt time.Time `firestore:"registered_at"`
}

// Register upserts the registration. Registering the same token again refreshes RegisteredAt.
func (s *RegistrarStore) Register(ctx context.Context, token bridge.DeviceToken) error {
	record := registrationRecord{
		Token:        token.String(),
		Provider:     s.app.Provider,
		AppID:        s.app.AppID,
		RegisteredAt: time.Now(),
	}
	if _, err := s.registrationRef(token).Set(ctx, record); err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}
	return nil
}

// registrationRef: analytics_registrations/{sha256(token)}
func (s *RegistrarStore) registrationRef(token bridge.DeviceToken) *firestore.DocumentRef {
	// Hashed doc ID keeps raw tokens out of paths and avoids hot-spotting.
	return s.client.Collection("analytics_registrations").Doc(hashToken(token.String()))
}

func hashToken(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}
