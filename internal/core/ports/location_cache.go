package ports

import (
	"context"
	"time"

	"github.com/stagepass/presence-api/internal/core/domain"
)

// LocationCache stores the last successful reading per session so a refetch
// within MaximumAge can reuse it instead of asking the sensor again.
type LocationCache interface {
	// Get returns the cached reading when one exists and is no older than
	// maxAge; (nil, nil) otherwise.
	Get(ctx context.Context, sessionID string, maxAge time.Duration) (*domain.UserLocation, error)
	Set(ctx context.Context, sessionID string, loc domain.UserLocation, ttl time.Duration) error
}

// MatchCache stores the most recent ranked matches computed for a session.
type MatchCache interface {
	Put(ctx context.Context, sessionID string, results []domain.MatchResult, ttl time.Duration) error
	// Fetch returns the cached results and whether an entry existed.
	Fetch(ctx context.Context, sessionID string) ([]domain.MatchResult, bool, error)
}
