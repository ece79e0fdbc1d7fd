package service

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// AllocatorConfig bounds the accepted donation amounts, in minor units.
type AllocatorConfig struct {
	MinAmountCents int64
	MaxAmountCents int64
}

type allocatorService struct {
	cfg AllocatorConfig
	log zerolog.Logger
}

// NewAllocatorService returns an AllocationService enforcing the given bounds.
func NewAllocatorService(cfg AllocatorConfig, log zerolog.Logger) ports.AllocationService {
	return &allocatorService{cfg: cfg, log: log}
}

// Allocate splits amountCents according to rates. Each rate-based share is
// rounded half-up to the minor unit independently; the artist payout is the
// residual, which makes the sum invariant hold exactly by construction.
func (s *allocatorService) Allocate(amountCents int64, rates domain.RateTable) (*domain.FeeBreakdown, error) {
	if amountCents < s.cfg.MinAmountCents || amountCents > s.cfg.MaxAmountCents {
		return nil, fmt.Errorf("%w: amount %d outside [%d, %d]",
			domain.ErrOutOfRange, amountCents, s.cfg.MinAmountCents, s.cfg.MaxAmountCents)
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	amount := float64(amountCents)
	platform := roundHalfUp(rates.PlatformRate * amount)
	processing := roundHalfUp(rates.ProcessingRate*amount) + rates.ProcessingFlatCents
	direct := roundHalfUp(rates.DirectReferralRate * amount)
	tier2 := roundHalfUp(rates.Tier2ReferralRate * amount)

	residual := amountCents - platform - processing - direct - tier2
	if residual < 0 {
		// The flat processing add-on can exceed tiny amounts even when the
		// rate table itself is valid.
		return nil, fmt.Errorf("%w: shares exceed amount %d by %d",
			domain.ErrInvalidConfiguration, amountCents, -residual)
	}

	breakdown := &domain.FeeBreakdown{
		PlatformFee:    platform,
		ProcessingFee:  processing,
		ReferralDirect: direct,
		ReferralTier2:  tier2,
		ArtistPayout:   residual,
	}

	s.log.Debug().
		Int64("amount_cents", amountCents).
		Int64("artist_payout", residual).
		Msg("donation allocated")

	return breakdown, nil
}

// roundHalfUp rounds a non-negative share to the nearest minor unit, halves up.
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
