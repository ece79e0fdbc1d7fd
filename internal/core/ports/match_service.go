package ports

import (
	"context"
	"time"

	"github.com/stagepass/presence-api/internal/core/domain"
)

// MatchOptions tune one match pass. Zero values fall back to the configured
// defaults.
type MatchOptions struct {
	// RadiusMeters is the caller-selected proximity radius. 0 means the default
	// radius; values above the maximum are clamped down to it.
	RadiusMeters float64
	// TimeWindow bounds show start times around Now.
	TimeWindow time.Duration
	// Now overrides the reference time, for deterministic tests.
	Now time.Time
}

// MatchService computes ranked proximity matches. Match is pure and
// side-effect-free over immutable inputs; MatchNearby additionally pulls the
// candidate set from the show store first.
type MatchService interface {
	Match(ctx context.Context, loc domain.UserLocation, candidates []domain.ShowCandidate, opts MatchOptions) ([]domain.MatchResult, error)
	MatchNearby(ctx context.Context, loc domain.UserLocation, opts MatchOptions) ([]domain.MatchResult, error)
}

// AllocationService splits a donation amount into platform, processing,
// referral, and artist shares. Pure and stateless.
type AllocationService interface {
	Allocate(amountCents int64, rates domain.RateTable) (*domain.FeeBreakdown, error)
}
