package domain

import "time"

// ShowStatus represents the lifecycle state of a live show.
type ShowStatus string

const (
	ShowScheduled ShowStatus = "scheduled"
	ShowLive      ShowStatus = "live"
	ShowFinished  ShowStatus = "finished"
	ShowCancelled ShowStatus = "cancelled"
)

// Recognised proximity radius options, in meters. The radius is a caller
// selection, not a hidden constant; anything larger than RadiusNearbyArea is
// clamped down to it.
const (
	RadiusVeryClose  = 274.0  // "very close"
	RadiusWalking    = 1609.0 // "walking distance"
	RadiusShortDrive = 4828.0 // "short drive"
	RadiusNearbyArea = 8047.0 // "nearby area"
)

var radiusLabels = map[float64]string{
	RadiusVeryClose:  "very close",
	RadiusWalking:    "walking distance",
	RadiusShortDrive: "short drive",
	RadiusNearbyArea: "nearby area",
}

// RadiusLabel returns the human label for a recognised radius option, or ""
// for a custom radius.
func RadiusLabel(meters float64) string {
	return radiusLabels[meters]
}

// Confidence score bands. Scores below LowConfidence are non-matches and are
// never returned.
const (
	HighConfidence   = 90.0
	MediumConfidence = 70.0
	LowConfidence    = 50.0
)

// ConfidenceBand partitions a score into high / medium / low.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// BandFor maps a confidence score to its band. The score must already be at
// or above the low threshold; the matcher filters anything below it.
func BandFor(score, high, medium float64) ConfidenceBand {
	switch {
	case score >= high:
		return BandHigh
	case score >= medium:
		return BandMedium
	default:
		return BandLow
	}
}

// ShowCandidate is a show record handed to the matcher by the show store.
// Immutable from the matcher's perspective.
type ShowCandidate struct {
	ID              string     `json:"id" bson:"_id"`
	VenueCoordinate Coordinate `json:"venue_coordinate" bson:"venue_coordinate"`
	StartTime       time.Time  `json:"start_time" bson:"start_time"`
	EndTime         time.Time  `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Status          ShowStatus `json:"status" bson:"status"`
}

// MatchResult is the derived match for one show. Recomputed on every match
// pass, never persisted.
type MatchResult struct {
	ShowID            string    `json:"show_id"`
	DistanceMeters    float64   `json:"distance_meters"`
	ConfidenceScore   float64   `json:"confidence_score"`
	TravelTimeMinutes int       `json:"travel_time_minutes"`
	IsWithinVenue     bool      `json:"is_within_venue"`
	StartTime         time.Time `json:"start_time"`
}

// StatusForMatches maps result cardinality onto the acquisition status model:
// zero matches reads as "none", one as "found", several as "multiple".
func StatusForMatches(results []MatchResult) GeolocationStatus {
	switch len(results) {
	case 0:
		return StatusNone
	case 1:
		return StatusFound
	default:
		return StatusMultiple
	}
}
