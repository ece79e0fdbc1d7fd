package handler

import "time"

type matchLocationRequest struct {
	Lat            float64 `json:"lat"             validate:"latitude"`
	Lng            float64 `json:"lng"             validate:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters" validate:"gte=0"`
}

type showCandidateRequest struct {
	ID        string               `json:"id"         validate:"required"`
	Venue     matchLocationRequest `json:"venue"`
	StartTime time.Time            `json:"start_time" validate:"required"`
	EndTime   *time.Time           `json:"end_time"`
	Status    string               `json:"status"     validate:"omitempty,oneof=scheduled live finished cancelled"`
}

type matchRequest struct {
	Location        matchLocationRequest   `json:"location"`
	RadiusMeters    float64                `json:"radius_meters"     validate:"omitempty,gte=0"`
	TimeWindowHours float64                `json:"time_window_hours" validate:"omitempty,gt=0,lte=168"`
	// Candidates, when present, bypass the show store — useful for clients
	// matching against an already-fetched list.
	Candidates []showCandidateRequest `json:"candidates"`
}

type matchResultResponse struct {
	ShowID            string    `json:"show_id"`
	DistanceMeters    float64   `json:"distance_meters"`
	ConfidenceScore   float64   `json:"confidence_score"`
	ConfidenceBand    string    `json:"confidence_band"`
	TravelTimeMinutes int       `json:"travel_time_minutes"`
	IsWithinVenue     bool      `json:"is_within_venue"`
	StartTime         time.Time `json:"start_time"`
}

type matchResponse struct {
	ResultStatus string                `json:"result_status"`
	RadiusMeters float64               `json:"radius_meters"`
	RadiusLabel  string                `json:"radius_label,omitempty"`
	Matches      []matchResultResponse `json:"matches"`
}
