package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stagepass/presence-api/internal/core/domain"
)

func newTestAllocator() *allocatorService {
	return &allocatorService{
		cfg: AllocatorConfig{MinAmountCents: 1, MaxAmountCents: 100_000_000},
		log: zerolog.Nop(),
	}
}

func TestAllocate_CanonicalVector(t *testing.T) {
	svc := newTestAllocator()

	b, err := svc.Allocate(1000, domain.DefaultRateTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.PlatformFee != 150 {
		t.Errorf("platform_fee = %d, want 150", b.PlatformFee)
	}
	if b.ProcessingFee != 59 {
		t.Errorf("processing_fee = %d, want 59 (29 + 30 flat)", b.ProcessingFee)
	}
	if b.ReferralDirect != 25 {
		t.Errorf("referral_direct = %d, want 25", b.ReferralDirect)
	}
	if b.ReferralTier2 != 25 {
		t.Errorf("referral_tier2 = %d, want 25", b.ReferralTier2)
	}
	if b.ArtistPayout != 741 {
		t.Errorf("artist_payout = %d, want 741", b.ArtistPayout)
	}
	if b.Total() != 1000 {
		t.Errorf("total = %d, want 1000", b.Total())
	}
}

func TestAllocate_SumInvariantAcrossAmounts(t *testing.T) {
	svc := newTestAllocator()
	rates := domain.DefaultRateTable()

	// Awkward rounding amounts included on purpose.
	amounts := []int64{52, 99, 100, 101, 333, 999, 1000, 1001, 12345, 99999, 1_000_000}
	for _, amount := range amounts {
		b, err := svc.Allocate(amount, rates)
		if err != nil {
			t.Fatalf("amount %d: unexpected error: %v", amount, err)
		}
		if b.Total() != amount {
			t.Errorf("amount %d: shares sum to %d", amount, b.Total())
		}
		if b.ArtistPayout < 0 || b.PlatformFee < 0 || b.ProcessingFee < 0 || b.ReferralDirect < 0 || b.ReferralTier2 < 0 {
			t.Errorf("amount %d: negative share in %+v", amount, b)
		}
	}
}

func TestAllocate_SumInvariantAcrossRateTables(t *testing.T) {
	svc := newTestAllocator()

	tables := []domain.RateTable{
		{PlatformRate: 0.10, ProcessingRate: 0.02, ProcessingFlatCents: 25, DirectReferralRate: 0.01, Tier2ReferralRate: 0.01},
		{PlatformRate: 0.333, ProcessingRate: 0.0175, DirectReferralRate: 0.05, Tier2ReferralRate: 0},
		{PlatformRate: 0, ProcessingRate: 0, ProcessingFlatCents: 0, DirectReferralRate: 0, Tier2ReferralRate: 0},
	}
	for i, rates := range tables {
		b, err := svc.Allocate(10_000, rates)
		if err != nil {
			t.Fatalf("table %d: unexpected error: %v", i, err)
		}
		if b.Total() != 10_000 {
			t.Errorf("table %d: shares sum to %d, want 10000", i, b.Total())
		}
	}
}

func TestAllocate_RoundHalfUp(t *testing.T) {
	svc := newTestAllocator()

	// 0.025 * 900 = 22.5 → 23 with half-up rounding.
	b, err := svc.Allocate(900, domain.DefaultRateTable())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ReferralDirect != 23 {
		t.Errorf("referral_direct = %d, want 23 (22.5 rounded half-up)", b.ReferralDirect)
	}
	if b.Total() != 900 {
		t.Errorf("total = %d, want 900", b.Total())
	}
}

func TestAllocate_OutOfRange(t *testing.T) {
	svc := &allocatorService{
		cfg: AllocatorConfig{MinAmountCents: 100, MaxAmountCents: 50_000},
		log: zerolog.Nop(),
	}

	if _, err := svc.Allocate(99, domain.DefaultRateTable()); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("below min: expected ErrOutOfRange, got %v", err)
	}
	if _, err := svc.Allocate(50_001, domain.DefaultRateTable()); !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("above max: expected ErrOutOfRange, got %v", err)
	}
}

func TestAllocate_InvalidRateTable(t *testing.T) {
	svc := newTestAllocator()

	rates := domain.DefaultRateTable()
	rates.PlatformRate = 0.99
	if _, err := svc.Allocate(1000, rates); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestAllocate_FlatFeeExceedsTinyAmount(t *testing.T) {
	svc := newTestAllocator()

	// The 30¢ flat processing add-on cannot fit in a 10¢ donation.
	_, err := svc.Allocate(10, domain.DefaultRateTable())
	if !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}
