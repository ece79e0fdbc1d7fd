package domain

import (
	"fmt"
	"math"
	"time"
)

// GeolocationStatus is the closed set of states an acquisition session can be
// in. Exactly one value holds at any time; "detecting" is the only initial
// state, every other state is terminal for the attempt but re-enterable via
// refetch.
type GeolocationStatus string

const (
	StatusDetecting        GeolocationStatus = "detecting"
	StatusFound            GeolocationStatus = "found"
	StatusMultiple         GeolocationStatus = "multiple"
	StatusNone             GeolocationStatus = "none"
	StatusError            GeolocationStatus = "error"
	StatusPermissionDenied GeolocationStatus = "permission-denied"
	StatusTimeout          GeolocationStatus = "timeout"
)

// Terminal reports whether the status ends the current acquisition attempt.
func (s GeolocationStatus) Terminal() bool {
	return s != StatusDetecting
}

// Valid reports whether s is one of the seven enumerated statuses.
func (s GeolocationStatus) Valid() bool {
	switch s {
	case StatusDetecting, StatusFound, StatusMultiple, StatusNone,
		StatusError, StatusPermissionDenied, StatusTimeout:
		return true
	}
	return false
}

// Coordinate is an immutable WGS-84 point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Validate rejects coordinates outside the WGS-84 envelope.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidInput, c.Lat)
	}
	if math.IsNaN(c.Lng) || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180, 180]", ErrInvalidInput, c.Lng)
	}
	return nil
}

// meanEarthRadiusMeters is the IUGG mean Earth radius. Haversine with float64
// keeps sub-meter accuracy for distances under 10 km, which is the correctness
// bar for venue matching.
const meanEarthRadiusMeters = 6371008.8

// DistanceMeters returns the great-circle distance between two points.
func (c Coordinate) DistanceMeters(o Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := o.Lat * math.Pi / 180
	dLat := (o.Lat - c.Lat) * math.Pi / 180
	dLng := (o.Lng - c.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng

	return 2 * meanEarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// UserLocation is a single sensor reading. Readings are immutable snapshots:
// each successful acquisition replaces the whole value, failures discard it.
type UserLocation struct {
	Coordinate     Coordinate `json:"coordinate"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	Timestamp      time.Time  `json:"timestamp,omitempty"`
}

// Validate rejects malformed coordinates and negative accuracy radii.
func (l UserLocation) Validate() error {
	if err := l.Coordinate.Validate(); err != nil {
		return err
	}
	if l.AccuracyMeters < 0 {
		return fmt.Errorf("%w: accuracy_meters %v must be >= 0", ErrInvalidInput, l.AccuracyMeters)
	}
	return nil
}
