package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// ErrTokenNotFound is returned by GetToken when nothing was recorded for the app/scope pair.
var ErrTokenNotFound = errors.New("no token recorded")

// DirectoryStore implements bridge.TokenDirectory using Google Cloud Firestore.
// It keeps the latest token the provider issued per app and scope.
type DirectoryStore struct {
	client *firestore.Client
}

func NewDirectoryStore(client *firestore.Client) *DirectoryStore {
	return &DirectoryStore{client: client}
}

// scopeRecord is the internal DB representation.
type scopeRecord struct {
	Token     string    `firestore:"token"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (s *DirectoryStore) Record(ctx context.Context, appID, scope string, token bridge.DeviceToken) error {
	record := scopeRecord{
		Token:     token.String(),
		UpdatedAt: time.Now(),
	}
	if _, err := s.scopeRef(appID, scope).Set(ctx, record); err != nil {
		return fmt.Errorf("failed to record token for %s/%s: %w", appID, scope, err)
	}
	return nil
}

func (s *DirectoryStore) GetToken(ctx context.Context, appID, scope string) (bridge.DeviceToken, error) {
	doc, err := s.scopeRef(appID, scope).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: %s/%s", ErrTokenNotFound, appID, scope)
		}
		return "", fmt.Errorf("firestore lookup failed: %w", err)
	}

	var record scopeRecord
	if err := doc.DataTo(&record); err != nil {
		return "", fmt.Errorf("corrupt token record %s/%s: %w", appID, scope, err)
	}
	return bridge.DeviceToken(record.Token), nil
}

// Scopes lists every scope with a recorded token for the app, keyed by scope name.
func (s *DirectoryStore) Scopes(ctx context.Context, appID string) (map[string]bridge.DeviceToken, error) {
	iter := s.client.Collection("push_apps").Doc(appID).Collection("scopes").Documents(ctx)
	defer iter.Stop()

	scopes := make(map[string]bridge.DeviceToken)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list scopes for %s: %w", appID, err)
		}
		var record scopeRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, fmt.Errorf("corrupt token record %s/%s: %w", appID, doc.Ref.ID, err)
		}
		scopes[doc.Ref.ID] = bridge.DeviceToken(record.Token)
	}
	return scopes, nil
}

// scopeRef: push_apps/{appID}/scopes/{scope}
func (s *DirectoryStore) scopeRef(appID, scope string) *firestore.DocumentRef {
	return s.client.Collection("push_apps").Doc(appID).Collection("scopes").Doc(scope)
}
