package models

import "time"

// Reading is a single persisted temperature sample.
type Reading struct {
	ID          string    `json:"id"`
	Equipment   string    `json:"equipo"`
	Temperature float64   `json:"temperatura"` // °C
	Timestamp   time.Time `json:"timestamp"`
}

// LegacyReading is the reduced shape served by the thermocouple-history endpoint.
type LegacyReading struct {
	Temperature float64   `json:"temperatura"`
	Timestamp   time.Time `json:"timestamp"`
}

// EquipmentStats aggregates all readings of one equipment.
// LastReading is nil when Count is zero.
type EquipmentStats struct {
	Count          int64      `json:"count"`
	AvgTemperature float64    `json:"avgTemperature"`
	MinTemperature float64    `json:"minTemperature"`
	MaxTemperature float64    `json:"maxTemperature"`
	LastReading    *time.Time `json:"lastReading"`
}

// ReadingFilter holds the optional, AND-combined criteria of a history search.
// Zero values mean "no constraint" except Limit, which the service defaults.
type ReadingFilter struct {
	Equipment      string
	StartDate      time.Time
	EndDate        time.Time
	MinTemperature *float64
	MaxTemperature *float64
	Limit          int
}
