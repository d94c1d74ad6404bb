package model

import "strings"

const defaultTeamColor = "#808080"

// Driver is one car/driver entry of a session. DriverNumber is unique within
// a session only; the same number can denote different people in different
// seasons.
type Driver struct {
	DriverNumber  int    `json:"driver_number"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	FullName      string `json:"full_name"`
	NameAcronym   string `json:"name_acronym"`
	BroadcastName string `json:"broadcast_name"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	CountryCode   string `json:"country_code"`
	HeadshotURL   string `json:"headshot_url,omitempty"`
	MeetingKey    int    `json:"meeting_key,omitempty"`
	SessionKey    int    `json:"session_key,omitempty"`
}

// DriverFromRecord builds a Driver from a raw API record, defaulting missing
// string fields to empty.
func DriverFromRecord(r Record) Driver {
	return Driver{
		DriverNumber:  r.integer("driver_number"),
		FirstName:     r.str("first_name"),
		LastName:      r.str("last_name"),
		FullName:      r.str("full_name"),
		NameAcronym:   r.str("name_acronym"),
		BroadcastName: r.str("broadcast_name"),
		TeamName:      r.str("team_name"),
		TeamColour:    r.str("team_colour"),
		CountryCode:   r.str("country_code"),
		HeadshotURL:   r.str("headshot_url"),
		MeetingKey:    r.integer("meeting_key"),
		SessionKey:    r.integer("session_key"),
	}
}

// ToRecord converts the driver back to a raw record. Feeding the result to
// DriverFromRecord yields an equal driver.
func (d Driver) ToRecord() Record {
	return Record{
		"driver_number":  d.DriverNumber,
		"first_name":     d.FirstName,
		"last_name":      d.LastName,
		"full_name":      d.FullName,
		"name_acronym":   d.NameAcronym,
		"broadcast_name": d.BroadcastName,
		"team_name":      d.TeamName,
		"team_colour":    d.TeamColour,
		"country_code":   d.CountryCode,
		"headshot_url":   d.HeadshotURL,
		"meeting_key":    d.MeetingKey,
		"session_key":    d.SessionKey,
	}
}

// DisplayName is the acronym when present, the full name otherwise.
func (d Driver) DisplayName() string {
	if d.NameAcronym != "" {
		return d.NameAcronym
	}
	return d.FullName
}

// TeamColorHex is the team colour with a leading '#', falling back to a
// neutral gray when the source carries no colour at all.
func (d Driver) TeamColorHex() string {
	if d.TeamColour == "" {
		return defaultTeamColor
	}
	if !strings.HasPrefix(d.TeamColour, "#") {
		return "#" + d.TeamColour
	}
	return d.TeamColour
}
