package domain

import (
	"errors"
	"testing"
)

func TestRateTable_Validate_Default(t *testing.T) {
	if err := DefaultRateTable().Validate(); err != nil {
		t.Fatalf("default rate table must be valid, got %v", err)
	}
}

func TestRateTable_Validate_NegativeRate(t *testing.T) {
	r := DefaultRateTable()
	r.DirectReferralRate = -0.01
	if err := r.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRateTable_Validate_CombinedRatesTooHigh(t *testing.T) {
	r := RateTable{
		PlatformRate:       0.5,
		ProcessingRate:     0.3,
		DirectReferralRate: 0.15,
		Tier2ReferralRate:  0.1,
	}
	if err := r.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration for combined rates >= 1.0, got %v", err)
	}
}

func TestBandFor(t *testing.T) {
	cases := []struct {
		score float64
		want  ConfidenceBand
	}{
		{95, BandHigh},
		{90, BandHigh},
		{89.9, BandMedium},
		{70, BandMedium},
		{69.9, BandLow},
		{50, BandLow},
	}
	for _, tc := range cases {
		if got := BandFor(tc.score, HighConfidence, MediumConfidence); got != tc.want {
			t.Errorf("BandFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestStatusForMatches(t *testing.T) {
	if got := StatusForMatches(nil); got != StatusNone {
		t.Errorf("empty: got %s, want %s", got, StatusNone)
	}
	one := []MatchResult{{ShowID: "a"}}
	if got := StatusForMatches(one); got != StatusFound {
		t.Errorf("one: got %s, want %s", got, StatusFound)
	}
	many := []MatchResult{{ShowID: "a"}, {ShowID: "b"}}
	if got := StatusForMatches(many); got != StatusMultiple {
		t.Errorf("many: got %s, want %s", got, StatusMultiple)
	}
}
