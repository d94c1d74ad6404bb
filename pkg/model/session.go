package model

import (
	"fmt"
	"strings"
	"time"
)

// Session is one timed segment of a race weekend (practice, qualifying,
// sprint, race). SessionKey is the join key into driver and position data
// and never changes after construction.
type Session struct {
	SessionKey       int        `json:"session_key"`
	SessionName      string     `json:"session_name"`
	SessionType      string     `json:"session_type"`
	CountryName      string     `json:"country_name"`
	CountryCode      string     `json:"country_code"`
	CircuitShortName string     `json:"circuit_short_name"`
	Location         string     `json:"location"`
	Year             int        `json:"year"`
	MeetingKey       int        `json:"meeting_key"`
	DateStart        *time.Time `json:"date_start,omitempty"`
	DateEnd          *time.Time `json:"date_end,omitempty"`
	GMTOffset        string     `json:"gmt_offset,omitempty"`
	CircuitKey       *int       `json:"circuit_key,omitempty"`
	CountryKey       *int       `json:"country_key,omitempty"`
}

// SessionFromRecord builds a Session from a raw API record. Missing string
// fields default to empty, missing timestamps to absent.
func SessionFromRecord(r Record) (Session, error) {
	start, err := r.optTimestamp("date_start")
	if err != nil {
		return Session{}, err
	}
	end, err := r.optTimestamp("date_end")
	if err != nil {
		return Session{}, err
	}
	return Session{
		SessionKey:       r.integer("session_key"),
		SessionName:      r.str("session_name"),
		SessionType:      r.str("session_type"),
		CountryName:      r.str("country_name"),
		CountryCode:      r.str("country_code"),
		CircuitShortName: r.str("circuit_short_name"),
		Location:         r.str("location"),
		Year:             r.integer("year"),
		MeetingKey:       r.integer("meeting_key"),
		DateStart:        start,
		DateEnd:          end,
		GMTOffset:        r.str("gmt_offset"),
		CircuitKey:       r.optInt("circuit_key"),
		CountryKey:       r.optInt("country_key"),
	}, nil
}

// ToRecord converts the session back to a raw record. Feeding the result to
// SessionFromRecord yields an equal session.
func (s Session) ToRecord() Record {
	r := Record{
		"session_key":        s.SessionKey,
		"session_name":       s.SessionName,
		"session_type":       s.SessionType,
		"country_name":       s.CountryName,
		"country_code":       s.CountryCode,
		"circuit_short_name": s.CircuitShortName,
		"location":           s.Location,
		"year":               s.Year,
		"meeting_key":        s.MeetingKey,
		"gmt_offset":         s.GMTOffset,
	}
	if s.DateStart != nil {
		r["date_start"] = s.DateStart.Format(time.RFC3339Nano)
	}
	if s.DateEnd != nil {
		r["date_end"] = s.DateEnd.Format(time.RFC3339Nano)
	}
	if s.CircuitKey != nil {
		r["circuit_key"] = *s.CircuitKey
	}
	if s.CountryKey != nil {
		r["country_key"] = *s.CountryKey
	}
	return r
}

// DisplayName is the human readable name, e.g. "Brazil 2023 - Race".
func (s Session) DisplayName() string {
	return fmt.Sprintf("%s %d - %s", s.CountryName, s.Year, s.SessionName)
}

func (s Session) IsRace() bool {
	name := strings.ToLower(s.SessionName)
	return name == "race" || name == "sprint"
}

func (s Session) IsQualifying() bool {
	return strings.Contains(strings.ToLower(s.SessionName), "qualifying")
}
