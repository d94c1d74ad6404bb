package model

import "time"

// ConsolidatedRecord is one denormalized session+driver+position row, the
// unit the analytics and exports work on. It is a plain value owned by the
// caller of the consolidation; nothing tracks it afterwards.
type ConsolidatedRecord struct {
	SessionKey  int        `json:"session_key"`
	SessionName string     `json:"session_name"`
	SessionType string     `json:"session_type"`
	CountryName string     `json:"country_name"`
	CircuitName string     `json:"circuit_name"`
	Year        int        `json:"year"`
	SessionDate *time.Time `json:"session_date,omitempty"`

	DriverNumber  int    `json:"driver_number"`
	DriverName    string `json:"driver_name"`
	DriverAcronym string `json:"driver_acronym"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	CountryCode   string `json:"country_code"`
	HeadshotURL   string `json:"headshot_url,omitempty"`

	Position   int       `json:"position"`
	Timestamp  time.Time `json:"timestamp"`
	MeetingKey int       `json:"meeting_key"`

	// LapNumber comes from the source when it supplies laps; otherwise the
	// consolidation fills it from elapsed time and flags LapEstimated.
	LapNumber    *int `json:"lap_number,omitempty"`
	LapEstimated bool `json:"lap_estimated,omitempty"`

	// SecondsFromStart is the elapsed time since the earliest recorded
	// position of the session.
	SecondsFromStart float64 `json:"seconds_from_start"`
}
