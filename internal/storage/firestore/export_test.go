package firestore

import (
	"context"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// IsRegistered reports whether a registration document exists for token.
func (s *RegistrarStore) IsRegistered(ctx context.Context, token bridge.DeviceToken) (bool, error) {
	doc, err := s.registrationRef(token).Get(ctx)
	if err != nil {
		if doc != nil && !doc.Exists() {
			return false, nil
		}
		return false, err
	}
	return doc.Exists(), nil
}
