package ports

import (
	"context"
	"time"

	"github.com/stagepass/presence-api/internal/core/domain"
)

// AcquireOptions configure one acquisition attempt. Zero values fall back to
// the configured defaults (high accuracy on, 12 s timeout, 5 min maximum age).
type AcquireOptions struct {
	EnableHighAccuracy *bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// SessionView is the presentation snapshot of one acquisition session: the
// current status, the location when one was found, and a human-readable
// message for terminal failure states.
type SessionView struct {
	ID        string
	Status    domain.GeolocationStatus
	Location  *domain.UserLocation
	Message   string
	UpdatedAt time.Time
}

// SessionService drives acquisition sessions. Statuses are observable state,
// not errors: a failing sensor surfaces as a terminal status with a message.
type SessionService interface {
	// Create opens a session in the detecting state and starts an acquisition.
	Create(ctx context.Context, opts AcquireOptions) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	// Refetch supersedes any in-flight attempt and restarts acquisition.
	Refetch(ctx context.Context, sessionID string, opts AcquireOptions) (*SessionView, error)
	// Matches returns the ranked matches last computed for the session, plus
	// the cardinality status (none / found / multiple).
	Matches(ctx context.Context, sessionID string) ([]domain.MatchResult, domain.GeolocationStatus, error)
}
