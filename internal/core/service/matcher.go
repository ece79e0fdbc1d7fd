package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// Assumed travel speed profile for the travel-time estimate. Distances within
// walking range use a 4.8 km/h walking pace, anything beyond assumes a 30 km/h
// urban drive. The estimate is derived from distance only, never from the
// sensor.
const (
	walkingMetersPerMinute = 80.0
	drivingMetersPerMinute = 500.0
)

// maxAccuracyPenalty is the most points a noisy sensor reading can subtract
// from the confidence score.
const maxAccuracyPenalty = 10.0

// MatcherConfig carries the tunable defaults of the proximity matcher.
type MatcherConfig struct {
	DefaultRadiusMeters float64
	MaxRadiusMeters     float64
	TimeWindow          time.Duration
	MinConfidence       float64
}

// MatcherService ranks show candidates by how likely the user is physically
// present at each venue.
type MatcherService struct {
	cfg   MatcherConfig
	shows ports.ShowRepository
	log   zerolog.Logger
}

// NewMatcherService creates a MatcherService. shows may be nil when only the
// pure Match operation is needed.
func NewMatcherService(cfg MatcherConfig, shows ports.ShowRepository, log zerolog.Logger) *MatcherService {
	if cfg.DefaultRadiusMeters <= 0 {
		cfg.DefaultRadiusMeters = domain.RadiusVeryClose
	}
	if cfg.MaxRadiusMeters <= 0 {
		cfg.MaxRadiusMeters = domain.RadiusNearbyArea
	}
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = 4 * time.Hour
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = domain.LowConfidence
	}
	return &MatcherService{cfg: cfg, shows: shows, log: log}
}

// Match computes distance, confidence, and travel estimate for every
// candidate, drops non-matches, and returns the rest ranked. An empty result
// is a valid outcome, not an error.
func (s *MatcherService) Match(ctx context.Context, loc domain.UserLocation, candidates []domain.ShowCandidate, opts ports.MatchOptions) ([]domain.MatchResult, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	radius := s.radius(opts.RadiusMeters)
	window := opts.TimeWindow
	if window <= 0 {
		window = s.cfg.TimeWindow
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	results := make([]domain.MatchResult, 0, len(candidates))
	for _, cand := range candidates {
		if err := cand.VenueCoordinate.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %s: %w", cand.ID, err)
		}
		if cand.Status == domain.ShowCancelled {
			continue
		}
		// Temporal relevance: only shows starting within now ± window.
		if cand.StartTime.Before(now.Add(-window)) || cand.StartTime.After(now.Add(window)) {
			continue
		}

		distance := loc.Coordinate.DistanceMeters(cand.VenueCoordinate)
		score := confidence(distance, radius, loc.AccuracyMeters)
		if score < s.cfg.MinConfidence {
			continue
		}

		results = append(results, domain.MatchResult{
			ShowID:            cand.ID,
			DistanceMeters:    distance,
			ConfidenceScore:   score,
			TravelTimeMinutes: travelMinutes(distance),
			IsWithinVenue:     distance <= radius,
			StartTime:         cand.StartTime,
		})
	}

	sortMatches(results)
	return results, nil
}

// MatchNearby pulls temporally relevant candidates from the show store and
// runs Match over them.
func (s *MatcherService) MatchNearby(ctx context.Context, loc domain.UserLocation, opts ports.MatchOptions) ([]domain.MatchResult, error) {
	if s.shows == nil {
		return nil, fmt.Errorf("%w: no show store configured", domain.ErrUnavailable)
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	window := opts.TimeWindow
	if window <= 0 {
		window = s.cfg.TimeWindow
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	opts.Now = now

	candidates, err := s.shows.FindCandidates(ctx, ports.CandidateFilter{
		StartFrom: now.Add(-window),
		StartTo:   now.Add(window),
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	s.log.Debug().Int("candidates", len(candidates)).Msg("candidate set loaded")
	return s.Match(ctx, loc, candidates, opts)
}

// radius resolves the caller's radius selection: 0 means the default, larger
// selections are honoured up to the maximum.
func (s *MatcherService) radius(selected float64) float64 {
	if selected <= 0 {
		return s.cfg.DefaultRadiusMeters
	}
	if selected > s.cfg.MaxRadiusMeters {
		return s.cfg.MaxRadiusMeters
	}
	return selected
}

// confidence combines the distance margin against the chosen radius with the
// sensor's accuracy radius. Inside the radius the base score runs linearly
// from 100 at the venue down to 90 at the edge; beyond it the score falls off
// hyperbolically as 90·(radius/distance). A noisy reading subtracts up to
// maxAccuracyPenalty points, scaled by how large the uncertainty is relative
// to the remaining distance margin — accuracy can only ever lower the score.
func confidence(distance, radius, accuracy float64) float64 {
	var base float64
	if distance <= radius {
		base = 100 - 10*(distance/radius)
	} else {
		base = domain.HighConfidence * (radius / distance)
	}

	margin := radius - distance
	if margin < radius/10 {
		margin = radius / 10
	}
	penalty := maxAccuracyPenalty * math.Min(accuracy/margin, 1)

	score := base - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// travelMinutes estimates travel time from distance using the fixed speed
// profile, rounded up to whole minutes.
func travelMinutes(distanceMeters float64) int {
	if distanceMeters <= 0 {
		return 0
	}
	speed := walkingMetersPerMinute
	if distanceMeters > domain.RadiusWalking {
		speed = drivingMetersPerMinute
	}
	return int(math.Ceil(distanceMeters / speed))
}

// sortMatches orders results by confidence descending, then distance
// ascending, then start time ascending, then show id — a total, deterministic
// order for equal inputs.
func sortMatches(results []domain.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		if !a.StartTime.Equal(b.StartTime) {
			return a.StartTime.Before(b.StartTime)
		}
		return a.ShowID < b.ShowID
	})
}
