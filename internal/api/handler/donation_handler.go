package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/presence-api/internal/api/metrics"
	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// DonationHandler exposes the fee allocation as a pure calculation endpoint.
type DonationHandler struct {
	allocator ports.AllocationService
	rates     domain.RateTable
}

func NewDonationHandler(allocator ports.AllocationService, rates domain.RateTable) *DonationHandler {
	return &DonationHandler{allocator: allocator, rates: rates}
}

type rateTableRequest struct {
	PlatformRate        float64 `json:"platform_rate"         validate:"gte=0"`
	ProcessingRate      float64 `json:"processing_rate"       validate:"gte=0"`
	ProcessingFlatCents int64   `json:"processing_flat_cents" validate:"gte=0"`
	DirectReferralRate  float64 `json:"direct_referral_rate"  validate:"gte=0"`
	Tier2ReferralRate   float64 `json:"tier2_referral_rate"   validate:"gte=0"`
}

type allocateRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
	// Rates, when present, override the configured table for this call.
	Rates *rateTableRequest `json:"rates"`
}

type allocateResponse struct {
	AmountCents    int64 `json:"amount_cents"`
	PlatformFee    int64 `json:"platform_fee"`
	ProcessingFee  int64 `json:"processing_fee"`
	ReferralDirect int64 `json:"referral_direct"`
	ReferralTier2  int64 `json:"referral_tier2"`
	ArtistPayout   int64 `json:"artist_payout"`
}

// Allocate handles POST /v1/donations/allocate — deterministic split of a
// donation into platform, processing, referral, and artist shares.
//
// @Summary      Allocate a donation into fee shares
// @Tags         donations
// @Accept       json
// @Produce      json
// @Param        body  body      allocateRequest  true  "Amount in minor units, optional rate override"
// @Success      200   {object}  allocateResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/donations/allocate [post]
func (h *DonationHandler) Allocate(c echo.Context) error {
	var req allocateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	rates := h.rates
	if req.Rates != nil {
		rates = domain.RateTable{
			PlatformRate:        req.Rates.PlatformRate,
			ProcessingRate:      req.Rates.ProcessingRate,
			ProcessingFlatCents: req.Rates.ProcessingFlatCents,
			DirectReferralRate:  req.Rates.DirectReferralRate,
			Tier2ReferralRate:   req.Rates.Tier2ReferralRate,
		}
	}

	breakdown, err := h.allocator.Allocate(req.AmountCents, rates)
	if err != nil {
		metrics.AllocationsTotal.WithLabelValues(allocationResult(err)).Inc()
		return err
	}
	metrics.AllocationsTotal.WithLabelValues("ok").Inc()

	return c.JSON(http.StatusOK, allocateResponse{
		AmountCents:    req.AmountCents,
		PlatformFee:    breakdown.PlatformFee,
		ProcessingFee:  breakdown.ProcessingFee,
		ReferralDirect: breakdown.ReferralDirect,
		ReferralTier2:  breakdown.ReferralTier2,
		ArtistPayout:   breakdown.ArtistPayout,
	})
}

func allocationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return "invalid_configuration"
	default:
		return "error"
	}
}
