package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stagepass/presence-api/internal/api/metrics"
	"github.com/stagepass/presence-api/internal/core/domain"
)

// LocationCache stores the last successful reading per session, expiring it
// after the acquisition MaximumAge. Key format: loc:<session_id>
type LocationCache struct {
	client *redis.Client
}

// NewLocationCache creates a LocationCache wrapping the given Redis client.
func NewLocationCache(client *redis.Client) *LocationCache {
	return &LocationCache{client: client}
}

// Get returns the cached reading when it exists and its timestamp is no older
// than maxAge; (nil, nil) when absent or stale.
func (c *LocationCache) Get(ctx context.Context, sessionID string, maxAge time.Duration) (*domain.UserLocation, error) {
	raw, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.LocationCacheTotal.WithLabelValues("miss").Inc()
			return nil, nil
		}
		return nil, fmt.Errorf("location cache get: %w", err)
	}

	var loc domain.UserLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("location cache decode: %w", err)
	}

	// The TTL usually handles expiry; the timestamp check covers reads with a
	// stricter maxAge than the one the entry was stored with.
	if maxAge > 0 && time.Since(loc.Timestamp) > maxAge {
		metrics.LocationCacheTotal.WithLabelValues("miss").Inc()
		return nil, nil
	}
	metrics.LocationCacheTotal.WithLabelValues("hit").Inc()
	return &loc, nil
}

// Set stores the reading with the given TTL.
func (c *LocationCache) Set(ctx context.Context, sessionID string, loc domain.UserLocation, ttl time.Duration) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("location cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(sessionID), raw, ttl).Err()
}

func (c *LocationCache) key(sessionID string) string {
	return "loc:" + sessionID
}
