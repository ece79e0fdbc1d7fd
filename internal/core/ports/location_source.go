package ports

import (
	"context"
	"time"
)

// FailureCode is the structured failure reported by a positioning sensor.
type FailureCode string

const (
	FailurePermissionDenied    FailureCode = "PERMISSION_DENIED"
	FailurePositionUnavailable FailureCode = "POSITION_UNAVAILABLE"
	FailureTimeout             FailureCode = "TIMEOUT"
)

// Reading is one raw position sample from a sensor.
type Reading struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Timestamp time.Time
}

// ReadFailure is a structured sensor failure. It implements error so sources
// can return it from Read.
type ReadFailure struct {
	Code    FailureCode
	Message string
}

func (f *ReadFailure) Error() string {
	if f.Message != "" {
		return string(f.Code) + ": " + f.Message
	}
	return string(f.Code)
}

// ReadOptions mirror the configuration surface of a one-shot position read.
type ReadOptions struct {
	// EnableHighAccuracy asks the sensor for its best fix at higher cost.
	EnableHighAccuracy bool
	// Timeout bounds how long the read may take end to end.
	Timeout time.Duration
	// MaximumAge is the oldest cached reading the caller will accept.
	MaximumAge time.Duration
}

// LocationSource is a one-shot position read. Implementations must honour ctx
// cancellation; errors are either a *ReadFailure or an unexpected failure.
type LocationSource interface {
	Read(ctx context.Context, opts ReadOptions) (*Reading, error)
}

// SourceProvider hands out the LocationSource bound to one acquisition
// session. A nil provider means the runtime has no positioning capability.
type SourceProvider interface {
	Source(sessionID string) LocationSource
}
