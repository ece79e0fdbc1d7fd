package handler

import "time"

type acquireOptionsRequest struct {
	EnableHighAccuracy *bool `json:"enable_high_accuracy"`
	TimeoutMS          int   `json:"timeout_ms"      validate:"omitempty,gte=100,lte=120000"`
	MaximumAgeMS       int   `json:"maximum_age_ms"  validate:"omitempty,gte=0"`
}

type createSessionRequest struct {
	Options *acquireOptionsRequest `json:"options"`
}

type locationResponse struct {
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Timestamp      time.Time `json:"timestamp"`
}

type sessionResponse struct {
	SessionID string            `json:"session_id"`
	Status    string            `json:"status"`
	Location  *locationResponse `json:"location,omitempty"`
	Message   string            `json:"message,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// positionReportRequest carries either a device reading or a structured
// sensor failure, never both.
type positionReportRequest struct {
	Latitude    *float64   `json:"latitude"     validate:"omitempty,latitude"`
	Longitude   *float64   `json:"longitude"    validate:"omitempty,longitude"`
	Accuracy    float64    `json:"accuracy"     validate:"gte=0"`
	Timestamp   *time.Time `json:"timestamp"`
	FailureCode string     `json:"failure_code" validate:"omitempty,oneof=PERMISSION_DENIED POSITION_UNAVAILABLE TIMEOUT"`
	Message     string     `json:"message"`
}

type positionReportResponse struct {
	Delivered bool   `json:"delivered"`
	Status    string `json:"status"`
}
