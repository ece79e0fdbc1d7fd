package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// metersToLatDegrees converts a northward offset to degrees of latitude on
// the mean sphere.
func metersToLatDegrees(m float64) float64 {
	return m / 111194.93
}

var testOrigin = domain.Coordinate{Lat: 40.0, Lng: -75.0}

func testLocation(accuracy float64) domain.UserLocation {
	return domain.UserLocation{
		Coordinate:     testOrigin,
		AccuracyMeters: accuracy,
		Timestamp:      time.Now().UTC(),
	}
}

// showAt places a scheduled show the given distance due north of the origin.
func showAt(id string, distanceMeters float64, start time.Time) domain.ShowCandidate {
	return domain.ShowCandidate{
		ID: id,
		VenueCoordinate: domain.Coordinate{
			Lat: testOrigin.Lat + metersToLatDegrees(distanceMeters),
			Lng: testOrigin.Lng,
		},
		StartTime: start,
		Status:    domain.ShowScheduled,
	}
}

func newTestMatcher() *MatcherService {
	return NewMatcherService(MatcherConfig{}, nil, zerolog.Nop())
}

func TestMatch_CloseShowHighConfidence(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	results, err := svc.Match(context.Background(), testLocation(10),
		[]domain.ShowCandidate{showAt("show-1", 200, now.Add(time.Hour))},
		ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.IsWithinVenue {
		t.Error("200 m inside a 274 m radius must be within venue")
	}
	if r.ConfidenceScore < domain.HighConfidence {
		t.Errorf("confidence = %v, want >= %v", r.ConfidenceScore, domain.HighConfidence)
	}
	if r.DistanceMeters < 199 || r.DistanceMeters > 201 {
		t.Errorf("distance = %v, want ~200", r.DistanceMeters)
	}
}

func TestMatch_FarShowExcluded(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	results, err := svc.Match(context.Background(), testLocation(10),
		[]domain.ShowCandidate{showAt("show-1", 5000, now.Add(time.Hour))},
		ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("5 km at default radius must be a non-match, got %d results", len(results))
	}
}

func TestMatch_LargerRadiusIncludesFartherShows(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	results, err := svc.Match(context.Background(), testLocation(10),
		[]domain.ShowCandidate{showAt("show-1", 3000, now.Add(time.Hour))},
		ports.MatchOptions{Now: now, RadiusMeters: domain.RadiusShortDrive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result at 4828 m radius, got %d", len(results))
	}
	if !results[0].IsWithinVenue {
		t.Error("3 km inside a 4828 m radius must be within venue")
	}
}

func TestMatch_RadiusClampedToMax(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	// 20 km away stays excluded even when the caller asks for a huge radius.
	results, err := svc.Match(context.Background(), testLocation(10),
		[]domain.ShowCandidate{showAt("show-1", 20_000, now.Add(time.Hour))},
		ports.MatchOptions{Now: now, RadiusMeters: 1_000_000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("radius must clamp to %v m, got %d results", domain.RadiusNearbyArea, len(results))
	}
}

func TestMatch_TimeWindowExcludes(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	candidates := []domain.ShowCandidate{
		showAt("past", 100, now.Add(-5*time.Hour)),
		showAt("future", 100, now.Add(5*time.Hour)),
		showAt("soon", 100, now.Add(time.Hour)),
		showAt("recent", 100, now.Add(-time.Hour)),
	}

	results, err := svc.Match(context.Background(), testLocation(10), candidates, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 temporally relevant shows, got %d", len(results))
	}
	for _, r := range results {
		if r.ShowID == "past" || r.ShowID == "future" {
			t.Errorf("show %s is outside the 4 h window and must be excluded", r.ShowID)
		}
	}
}

func TestMatch_CancelledShowSkipped(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	cand := showAt("cancelled", 100, now.Add(time.Hour))
	cand.Status = domain.ShowCancelled

	results, err := svc.Match(context.Background(), testLocation(10),
		[]domain.ShowCandidate{cand}, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Error("cancelled shows must not match")
	}
}

func TestMatch_Ordering(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	candidates := []domain.ShowCandidate{
		showAt("far", 250, now.Add(time.Hour)),
		showAt("near", 50, now.Add(time.Hour)),
		showAt("nearer", 20, now.Add(time.Hour)),
	}

	results, err := svc.Match(context.Background(), testLocation(5), candidates, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if cur.ConfidenceScore > prev.ConfidenceScore {
			t.Errorf("results not sorted by confidence desc at %d: %v > %v", i, cur.ConfidenceScore, prev.ConfidenceScore)
		}
		if cur.ConfidenceScore == prev.ConfidenceScore && cur.DistanceMeters < prev.DistanceMeters {
			t.Errorf("tie not broken by distance asc at %d", i)
		}
	}
	if results[0].ShowID != "nearer" {
		t.Errorf("closest show must rank first, got %s", results[0].ShowID)
	}
}

func TestMatch_TieBrokenByStartTime(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	// Same venue point, identical distance and confidence; the earlier show
	// must rank first.
	later := showAt("later", 100, now.Add(2*time.Hour))
	sooner := showAt("sooner", 100, now.Add(time.Hour))

	results, err := svc.Match(context.Background(), testLocation(5),
		[]domain.ShowCandidate{later, sooner}, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ShowID != "sooner" {
		t.Errorf("tie must break by start time ascending, got %s first", results[0].ShowID)
	}
}

func TestMatch_NoLowConfidenceResults(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	distances := []float64{50, 200, 400, 600, 1000, 3000, 8000}
	candidates := make([]domain.ShowCandidate, 0, len(distances))
	for i, d := range distances {
		candidates = append(candidates, showAt(string(rune('a'+i)), d, now.Add(time.Hour)))
	}

	results, err := svc.Match(context.Background(), testLocation(25), candidates, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.ConfidenceScore < domain.LowConfidence {
			t.Errorf("result %s has confidence %v below the exclusion floor", r.ShowID, r.ConfidenceScore)
		}
	}
}

func TestMatch_AccuracyOnlyLowersConfidence(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()
	cand := []domain.ShowCandidate{showAt("show-1", 200, now.Add(time.Hour))}

	precise, err := svc.Match(context.Background(), testLocation(5), cand, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	noisy, err := svc.Match(context.Background(), testLocation(500), cand, ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(precise) != 1 || len(noisy) != 1 {
		t.Fatalf("expected both readings to match, got %d/%d", len(precise), len(noisy))
	}
	if noisy[0].ConfidenceScore >= precise[0].ConfidenceScore {
		t.Errorf("noisy reading (%v) must score below precise reading (%v)",
			noisy[0].ConfidenceScore, precise[0].ConfidenceScore)
	}
}

func TestMatch_InvalidInputs(t *testing.T) {
	svc := newTestMatcher()
	now := time.Now().UTC()

	badAccuracy := domain.UserLocation{Coordinate: testOrigin, AccuracyMeters: -5}
	if _, err := svc.Match(context.Background(), badAccuracy, nil, ports.MatchOptions{Now: now}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("negative accuracy: expected ErrInvalidInput, got %v", err)
	}

	badCandidate := domain.ShowCandidate{
		ID:              "bad",
		VenueCoordinate: domain.Coordinate{Lat: 95, Lng: 0},
		StartTime:       now,
		Status:          domain.ShowScheduled,
	}
	if _, err := svc.Match(context.Background(), testLocation(10),
		[]domain.ShowCandidate{badCandidate}, ports.MatchOptions{Now: now}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("malformed candidate: expected ErrInvalidInput, got %v", err)
	}
}

func TestMatch_EmptyResultIsNotAnError(t *testing.T) {
	svc := newTestMatcher()

	results, err := svc.Match(context.Background(), testLocation(10), nil, ports.MatchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d", len(results))
	}
}

func TestTravelMinutes(t *testing.T) {
	cases := []struct {
		distance float64
		want     int
	}{
		{0, 0},
		{80, 1},      // one minute walk
		{400, 5},     // five minute walk
		{1609, 21},   // walking range boundary, still on foot
		{5000, 10},   // short drive
		{8047, 17},   // nearby-area drive
	}
	for _, tc := range cases {
		if got := travelMinutes(tc.distance); got != tc.want {
			t.Errorf("travelMinutes(%v) = %d, want %d", tc.distance, got, tc.want)
		}
	}
}

// stubShowRepo hands back a fixed candidate set and records the filter.
type stubShowRepo struct {
	candidates []domain.ShowCandidate
	lastFilter ports.CandidateFilter
	err        error
}

func (r *stubShowRepo) FindCandidates(_ context.Context, f ports.CandidateFilter) ([]domain.ShowCandidate, error) {
	r.lastFilter = f
	if r.err != nil {
		return nil, r.err
	}
	return r.candidates, nil
}

func TestMatchNearby_UsesStoreWindow(t *testing.T) {
	now := time.Now().UTC()
	repo := &stubShowRepo{candidates: []domain.ShowCandidate{showAt("show-1", 100, now.Add(time.Hour))}}
	svc := NewMatcherService(MatcherConfig{}, repo, zerolog.Nop())

	results, err := svc.MatchNearby(context.Background(), testLocation(10), ports.MatchOptions{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	wantFrom := now.Add(-4 * time.Hour)
	wantTo := now.Add(4 * time.Hour)
	if !repo.lastFilter.StartFrom.Equal(wantFrom) || !repo.lastFilter.StartTo.Equal(wantTo) {
		t.Errorf("store window = [%v, %v], want [%v, %v]",
			repo.lastFilter.StartFrom, repo.lastFilter.StartTo, wantFrom, wantTo)
	}
}

func TestMatchNearby_NoStoreConfigured(t *testing.T) {
	svc := newTestMatcher()

	_, err := svc.MatchNearby(context.Background(), testLocation(10), ports.MatchOptions{})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
