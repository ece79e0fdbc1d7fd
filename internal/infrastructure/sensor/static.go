package sensor

import (
	"context"
	"time"

	"github.com/stagepass/presence-api/internal/core/ports"
)

// Static is a fixture LocationSource returning a fixed reading or failure
// after an optional delay. Deterministic stand-in for a real positioning
// device.
type Static struct {
	Reading ports.Reading
	Err     error
	Delay   time.Duration
}

// Source implements ports.SourceProvider; every session shares the fixture.
func (s *Static) Source(string) ports.LocationSource { return s }

// Read returns the fixture after Delay, unless ctx expires first.
func (s *Static) Read(ctx context.Context, _ ports.ReadOptions) (*ports.Reading, error) {
	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.Delay):
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	reading := s.Reading
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	return &reading, nil
}
