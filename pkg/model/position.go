package model

import (
	"time"

	"github.com/pkg/errors"
)

// Position is a single running-order observation: which rank a driver held
// at a recorded instant. LapNumber is frequently absent from the source and
// gets estimated downstream.
type Position struct {
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
	MeetingKey   int       `json:"meeting_key"`
	SessionKey   int       `json:"session_key"`
	LapNumber    *int      `json:"lap_number,omitempty"`
}

// PositionFromRecord builds a Position from a raw API record. The date field
// is mandatory; an unparsable one fails the whole record.
func PositionFromRecord(r Record) (Position, error) {
	value := r.str("date")
	if value == "" {
		return Position{}, errors.New("position record without date")
	}
	date, err := parseTimestamp("date", value)
	if err != nil {
		return Position{}, err
	}
	return Position{
		DriverNumber: r.integer("driver_number"),
		Position:     r.integer("position"),
		Date:         date,
		MeetingKey:   r.integer("meeting_key"),
		SessionKey:   r.integer("session_key"),
		LapNumber:    r.optInt("lap_number"),
	}, nil
}

// ToRecord converts the position back to a raw record. Feeding the result to
// PositionFromRecord yields an equal position.
func (p Position) ToRecord() Record {
	r := Record{
		"driver_number": p.DriverNumber,
		"position":      p.Position,
		"date":          p.Date.Format(time.RFC3339Nano),
		"meeting_key":   p.MeetingKey,
		"session_key":   p.SessionKey,
	}
	if p.LapNumber != nil {
		r["lap_number"] = *p.LapNumber
	}
	return r
}

// Timestamp is the observation instant as Unix seconds.
func (p Position) Timestamp() float64 {
	if p.Date.IsZero() {
		return 0
	}
	return float64(p.Date.UnixNano()) / float64(time.Second)
}

// LapPosition is the last known rank of a driver within one (estimated) lap.
type LapPosition struct {
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	Position     int       `json:"position"`
	SessionKey   int       `json:"session_key"`
	MeetingKey   int       `json:"meeting_key"`
	Date         time.Time `json:"date"`
}
