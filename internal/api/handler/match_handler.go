package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/presence-api/internal/api/metrics"
	"github.com/stagepass/presence-api/internal/core/domain"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// ConfidenceBands carries the configured score thresholds used purely for
// labelling results in responses.
type ConfidenceBands struct {
	High   float64
	Medium float64
}

// MatchHandler answers synchronous match requests and serves the ranked
// matches computed for sessions.
type MatchHandler struct {
	matcher  ports.MatchService
	sessions ports.SessionService
	bands    ConfidenceBands
	radius   float64 // default radius, echoed in responses
}

func NewMatchHandler(matcher ports.MatchService, sessions ports.SessionService, bands ConfidenceBands, defaultRadius float64) *MatchHandler {
	return &MatchHandler{matcher: matcher, sessions: sessions, bands: bands, radius: defaultRadius}
}

// Match handles POST /v1/matches — ranks shows around a caller-supplied
// location. With an explicit candidate list the pass is fully offline;
// without one the show store supplies temporally relevant candidates.
//
// @Summary      Match a location against nearby shows
// @Tags         matches
// @Accept       json
// @Produce      json
// @Param        body  body      matchRequest  true  "Location and options"
// @Success      200   {object}  matchResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/matches [post]
func (h *MatchHandler) Match(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	loc := domain.UserLocation{
		Coordinate:     domain.Coordinate{Lat: req.Location.Lat, Lng: req.Location.Lng},
		AccuracyMeters: req.Location.AccuracyMeters,
		Timestamp:      time.Now().UTC(),
	}
	opts := ports.MatchOptions{
		RadiusMeters: req.RadiusMeters,
		TimeWindow:   time.Duration(req.TimeWindowHours * float64(time.Hour)),
	}

	var (
		results []domain.MatchResult
		err     error
	)
	if len(req.Candidates) > 0 {
		results, err = h.matcher.Match(c.Request().Context(), loc, toCandidates(req.Candidates), opts)
	} else {
		results, err = h.matcher.MatchNearby(c.Request().Context(), loc, opts)
	}
	if err != nil {
		metrics.MatchErrorsTotal.WithLabelValues(matchErrorReason(err)).Inc()
		return err
	}

	metrics.MatchesComputedTotal.Inc()
	metrics.MatchResults.Observe(float64(len(results)))

	return c.JSON(http.StatusOK, h.toMatchResponse(results, req.RadiusMeters))
}

// SessionMatches handles GET /v1/sessions/:id/matches — the ranked matches
// last computed for the session by the background dispatcher.
//
// @Summary      Get the ranked matches for a session
// @Tags         matches
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  matchResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/sessions/{id}/matches [get]
func (h *MatchHandler) SessionMatches(c echo.Context) error {
	results, status, err := h.sessions.Matches(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	resp := h.toMatchResponse(results, 0)
	resp.ResultStatus = string(status)
	return c.JSON(http.StatusOK, resp)
}

func (h *MatchHandler) toMatchResponse(results []domain.MatchResult, requestedRadius float64) matchResponse {
	radius := requestedRadius
	if radius <= 0 {
		radius = h.radius
	}

	items := make([]matchResultResponse, 0, len(results))
	for _, r := range results {
		items = append(items, matchResultResponse{
			ShowID:            r.ShowID,
			DistanceMeters:    r.DistanceMeters,
			ConfidenceScore:   r.ConfidenceScore,
			ConfidenceBand:    string(domain.BandFor(r.ConfidenceScore, h.bands.High, h.bands.Medium)),
			TravelTimeMinutes: r.TravelTimeMinutes,
			IsWithinVenue:     r.IsWithinVenue,
			StartTime:         r.StartTime,
		})
	}

	return matchResponse{
		ResultStatus: string(domain.StatusForMatches(results)),
		RadiusMeters: radius,
		RadiusLabel:  domain.RadiusLabel(radius),
		Matches:      items,
	}
}

func toCandidates(reqs []showCandidateRequest) []domain.ShowCandidate {
	candidates := make([]domain.ShowCandidate, 0, len(reqs))
	for _, r := range reqs {
		cand := domain.ShowCandidate{
			ID:              r.ID,
			VenueCoordinate: domain.Coordinate{Lat: r.Venue.Lat, Lng: r.Venue.Lng},
			StartTime:       r.StartTime,
			Status:          domain.ShowStatus(r.Status),
		}
		if r.EndTime != nil {
			cand.EndTime = *r.EndTime
		}
		if cand.Status == "" {
			cand.Status = domain.ShowScheduled
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

func matchErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUnavailable):
		return "store_unavailable"
	default:
		return "internal"
	}
}
