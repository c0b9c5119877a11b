// --- File: internal/storage/cache/directory.go ---
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tinywideclouds/go-pushbridge-service/pkg/bridge"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get decodes the stored value into dest, or returns an error on miss.
	Get(ctx context.Context, key string, dest any) error
	// Set stores the value with a TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Del removes the key.
	Del(ctx context.Context, key string) error
}

// CachedDirectory is a Decorator that adds Read-Aside caching to any TokenDirectory.
type CachedDirectory struct {
	realStore bridge.TokenDirectory
	cache     CacheClient
	ttl       time.Duration
	logger    *slog.Logger
}

// NewCachedDirectory creates the decorator.
func NewCachedDirectory(realStore bridge.TokenDirectory, cache CacheClient, ttl time.Duration, logger *slog.Logger) *CachedDirectory {
	return &CachedDirectory{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
		logger:    logger.With("component", "CachedDirectory"),
	}
}

type cachedToken struct {
	Token string `json:"token"`
}

// --- READ PATH (Read-Aside) ---

func (s *CachedDirectory) GetToken(ctx context.Context, appID, scope string) (bridge.DeviceToken, error) {
	key := s.cacheKey(appID, scope)

	var hit cachedToken
	if err := s.cache.Get(ctx, key, &hit); err == nil {
		return bridge.DeviceToken(hit.Token), nil
	}

	fresh, err := s.realStore.GetToken(ctx, appID, scope)
	if err != nil {
		return "", err
	}

	// Caching is an optimization; a Redis outage still serves from Firestore.
	if err := s.cache.Set(ctx, key, cachedToken{Token: fresh.String()}, s.ttl); err != nil {
		s.logger.Debug("Cache populate failed", "key", key, "err", err)
	}
	return fresh, nil
}

// --- WRITE PATH (Invalidate-on-Write) ---

func (s *CachedDirectory) Record(ctx context.Context, appID, scope string, token bridge.DeviceToken) error {
	if err := s.realStore.Record(ctx, appID, scope, token); err != nil {
		return err
	}
	// The next lookup must see the newly issued token, so drop the stale entry.
	return s.cache.Del(ctx, s.cacheKey(appID, scope))
}

func (s *CachedDirectory) cacheKey(appID, scope string) string {
	return fmt.Sprintf("pushbridge:token:%s:%s", appID, scope)
}
