package domain

import "fmt"

// Default donation split rates, expressed as fractions of the amount. The
// artist share is never an independent rate at allocation time — it is always
// the residual — but the nominal 0.80 is kept for display purposes.
const (
	DefaultPlatformRate        = 0.15
	DefaultProcessingRate      = 0.029
	DefaultProcessingFlatCents = 30
	DefaultDirectReferralRate  = 0.025
	DefaultTier2ReferralRate   = 0.025
	NominalArtistRate          = 0.80
)

// RateTable configures how a donation is split. Rates are fractions of the
// amount; ProcessingFlatCents is a fixed per-donation add-on in minor units.
type RateTable struct {
	PlatformRate        float64 `json:"platform_rate" validate:"gte=0"`
	ProcessingRate      float64 `json:"processing_rate" validate:"gte=0"`
	ProcessingFlatCents int64   `json:"processing_flat_cents" validate:"gte=0"`
	DirectReferralRate  float64 `json:"direct_referral_rate" validate:"gte=0"`
	Tier2ReferralRate   float64 `json:"tier2_referral_rate" validate:"gte=0"`
}

// DefaultRateTable returns the standard platform split.
func DefaultRateTable() RateTable {
	return RateTable{
		PlatformRate:        DefaultPlatformRate,
		ProcessingRate:      DefaultProcessingRate,
		ProcessingFlatCents: DefaultProcessingFlatCents,
		DirectReferralRate:  DefaultDirectReferralRate,
		Tier2ReferralRate:   DefaultTier2ReferralRate,
	}
}

// Validate checks the table once, at configuration time: no negative rates,
// and the combined rate-based shares must stay below 1.0 so a positive artist
// residual remains possible.
func (r RateTable) Validate() error {
	if r.PlatformRate < 0 || r.ProcessingRate < 0 || r.DirectReferralRate < 0 || r.Tier2ReferralRate < 0 {
		return fmt.Errorf("%w: rates must be non-negative", ErrInvalidConfiguration)
	}
	if r.ProcessingFlatCents < 0 {
		return fmt.Errorf("%w: processing_flat_cents must be non-negative", ErrInvalidConfiguration)
	}
	combined := r.PlatformRate + r.ProcessingRate + r.DirectReferralRate + r.Tier2ReferralRate
	if combined >= 1.0 {
		return fmt.Errorf("%w: combined rates %.4f must stay below 1.0", ErrInvalidConfiguration, combined)
	}
	return nil
}

// FeeBreakdown is the deterministic split of one donation. All fields are
// non-negative and sum exactly to the donated amount in minor units.
type FeeBreakdown struct {
	PlatformFee    int64 `json:"platform_fee"`
	ProcessingFee  int64 `json:"processing_fee"`
	ReferralDirect int64 `json:"referral_direct"`
	ReferralTier2  int64 `json:"referral_tier2"`
	ArtistPayout   int64 `json:"artist_payout"`
}

// Total returns the sum of all shares. Equals the donated amount by
// construction (artist payout is the residual).
func (f FeeBreakdown) Total() int64 {
	return f.PlatformFee + f.ProcessingFee + f.ReferralDirect + f.ReferralTier2 + f.ArtistPayout
}
