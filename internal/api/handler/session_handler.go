package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagepass/presence-api/internal/api/metrics"
	"github.com/stagepass/presence-api/internal/core/ports"
)

// PositionReporter delivers device-reported positions to a session's pending
// sensor read. Implemented by the sensor hub.
type PositionReporter interface {
	Report(sessionID string, reading ports.Reading) bool
	ReportFailure(sessionID string, code ports.FailureCode, message string) bool
}

// SessionHandler drives acquisition sessions over HTTP.
type SessionHandler struct {
	sessions ports.SessionService
	reporter PositionReporter
}

func NewSessionHandler(sessions ports.SessionService, reporter PositionReporter) *SessionHandler {
	return &SessionHandler{sessions: sessions, reporter: reporter}
}

// Create handles POST /v1/sessions — opens a session and starts locating.
//
// @Summary      Start a location acquisition session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      createSessionRequest  false  "Acquisition options"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Options != nil {
		if err := c.Validate(req.Options); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
	}

	view, err := h.sessions.Create(c.Request().Context(), toAcquireOptions(req.Options))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toSessionResponse(view))
}

// Get handles GET /v1/sessions/:id — current status snapshot.
//
// @Summary      Get the status of an acquisition session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  sessionResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/sessions/{id} [get]
func (h *SessionHandler) Get(c echo.Context) error {
	view, err := h.sessions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(view))
}

// Refetch handles POST /v1/sessions/:id/refetch — supersedes the in-flight
// attempt and restarts acquisition.
//
// @Summary      Restart acquisition for a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path      string                true   "Session id"
// @Param        body  body      createSessionRequest  false  "Acquisition options"
// @Success      200   {object}  sessionResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/sessions/{id}/refetch [post]
func (h *SessionHandler) Refetch(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Options != nil {
		if err := c.Validate(req.Options); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
	}

	view, err := h.sessions.Refetch(c.Request().Context(), c.Param("id"), toAcquireOptions(req.Options))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(view))
}

// ReportPosition handles POST /v1/sessions/:id/position — a device pushes its
// reading (or a structured failure) into the session's pending read. A report
// with no read waiting is acknowledged but not delivered.
//
// @Summary      Report a device position for a session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Session id"
// @Param        body  body      positionReportRequest  true  "Position or failure"
// @Success      202   {object}  positionReportResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/sessions/{id}/position [post]
func (h *SessionHandler) ReportPosition(c echo.Context) error {
	sessionID := c.Param("id")

	// Reject reports for unknown sessions before touching the hub.
	if _, err := h.sessions.Get(c.Request().Context(), sessionID); err != nil {
		return err
	}

	var req positionReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	var delivered bool
	switch {
	case req.FailureCode != "":
		delivered = h.reporter.ReportFailure(sessionID, ports.FailureCode(req.FailureCode), req.Message)
	case req.Latitude != nil && req.Longitude != nil:
		reading := ports.Reading{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			Accuracy:  req.Accuracy,
		}
		if req.Timestamp != nil {
			reading.Timestamp = *req.Timestamp
		}
		delivered = h.reporter.Report(sessionID, reading)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "either a position or a failure_code is required")
	}

	view, err := h.sessions.Get(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	if view.Status.Terminal() {
		metrics.AcquisitionsTotal.WithLabelValues(string(view.Status)).Inc()
	}

	return c.JSON(http.StatusAccepted, positionReportResponse{
		Delivered: delivered,
		Status:    string(view.Status),
	})
}

func toAcquireOptions(req *acquireOptionsRequest) ports.AcquireOptions {
	if req == nil {
		return ports.AcquireOptions{}
	}
	return ports.AcquireOptions{
		EnableHighAccuracy: req.EnableHighAccuracy,
		Timeout:            time.Duration(req.TimeoutMS) * time.Millisecond,
		MaximumAge:         time.Duration(req.MaximumAgeMS) * time.Millisecond,
	}
}

func toSessionResponse(view *ports.SessionView) sessionResponse {
	resp := sessionResponse{
		SessionID: view.ID,
		Status:    string(view.Status),
		Message:   view.Message,
		UpdatedAt: view.UpdatedAt,
	}
	if view.Location != nil {
		resp.Location = &locationResponse{
			Lat:            view.Location.Coordinate.Lat,
			Lng:            view.Location.Coordinate.Lng,
			AccuracyMeters: view.Location.AccuracyMeters,
			Timestamp:      view.Location.Timestamp,
		}
	}
	return resp
}
