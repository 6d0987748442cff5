package models

// AlertKind classifies an out-of-range reading.
type AlertKind string

const (
	AlertTooLow  AlertKind = "TOO_LOW"
	AlertTooHigh AlertKind = "TOO_HIGH"
)

// Alert is one out-of-range notification.
type Alert struct {
	Equipment   string    `json:"equipment"`
	Temperature float64   `json:"temperature"`
	MinTemp     float64   `json:"minTemp"`
	MaxTemp     float64   `json:"maxTemp"`
	Kind        AlertKind `json:"kind"`
}
