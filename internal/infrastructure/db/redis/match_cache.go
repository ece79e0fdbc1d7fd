package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stagepass/presence-api/internal/core/domain"
)

// MatchCache stores the most recent ranked matches per session.
// Key format: matches:<session_id>
type MatchCache struct {
	client *redis.Client
}

// NewMatchCache creates a MatchCache wrapping the given Redis client.
func NewMatchCache(client *redis.Client) *MatchCache {
	return &MatchCache{client: client}
}

// Put stores the ranked results with the given TTL.
func (c *MatchCache) Put(ctx context.Context, sessionID string, results []domain.MatchResult, ttl time.Duration) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("match cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(sessionID), raw, ttl).Err()
}

// Fetch returns the cached results and whether an entry existed.
func (c *MatchCache) Fetch(ctx context.Context, sessionID string) ([]domain.MatchResult, bool, error) {
	raw, err := c.client.Get(ctx, c.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("match cache get: %w", err)
	}

	var results []domain.MatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, fmt.Errorf("match cache decode: %w", err)
	}
	return results, true, nil
}

func (c *MatchCache) key(sessionID string) string {
	return "matches:" + sessionID
}
