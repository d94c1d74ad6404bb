package collectors

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"f1datacollector/pkg/model"
	"f1datacollector/pkg/openf1"
)

// SessionCollector fetches and memoizes session data.
type SessionCollector struct {
	base
}

// NewSessionCollector builds a collector on the given client, or on a client
// of its own when nil is passed.
func NewSessionCollector(client Fetcher) *SessionCollector {
	return &SessionCollector{base: newBase(client)}
}

// Collect fetches sessions matching the filters. No match is an empty slice,
// never an error; errors are reserved for records the source corrupted.
func (sc *SessionCollector) Collect(ctx context.Context, filters openf1.Params) ([]model.Session, error) {
	records := sc.cachedFetch(ctx, openf1.ResourceSessions, filters)
	if len(records) == 0 {
		log.Printf("no sessions for filters %v", filters)
		return []model.Session{}, nil
	}

	sessions := make([]model.Session, 0, len(records))
	for _, r := range records {
		session, err := model.SessionFromRecord(r)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// BySessionKey fetches the sessions carrying one specific key.
func (sc *SessionCollector) BySessionKey(ctx context.Context, sessionKey int) ([]model.Session, error) {
	return sc.Collect(ctx, openf1.Params{"session_key": strconv.Itoa(sessionKey)})
}

// SessionInfo returns the session for the key, or nil when the source has no
// data for it.
func (sc *SessionCollector) SessionInfo(ctx context.Context, sessionKey int) (*model.Session, error) {
	sessions, err := sc.BySessionKey(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// FindByYear returns every session of a season.
func (sc *SessionCollector) FindByYear(ctx context.Context, year int) ([]model.Session, error) {
	return sc.Collect(ctx, openf1.Params{"year": strconv.Itoa(year)})
}

// FindRacesByYear returns the races of a season.
func (sc *SessionCollector) FindRacesByYear(ctx context.Context, year int) ([]model.Session, error) {
	return sc.Collect(ctx, openf1.Params{
		"year":         strconv.Itoa(year),
		"session_name": "Race",
	})
}

// FindQualifyingByYear returns the qualifying sessions of a season.
func (sc *SessionCollector) FindQualifyingByYear(ctx context.Context, year int) ([]model.Session, error) {
	return sc.Collect(ctx, openf1.Params{
		"year":         strconv.Itoa(year),
		"session_name": "Qualifying",
	})
}

// FindByCountry returns the sessions held in a country, optionally narrowed
// to one season (year 0 means any).
func (sc *SessionCollector) FindByCountry(ctx context.Context, countryName string, year int) ([]model.Session, error) {
	filters := openf1.Params{"country_name": countryName}
	if year != 0 {
		filters["year"] = strconv.Itoa(year)
	}
	return sc.Collect(ctx, filters)
}

// LatestSessions returns up to limit sessions ordered newest first, looking
// at the current season and falling back to the previous one.
func (sc *SessionCollector) LatestSessions(ctx context.Context, limit int) ([]model.Session, error) {
	year := time.Now().Year()
	sessions, err := sc.FindByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		sessions, err = sc.FindByYear(ctx, year-1)
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		di, dj := sessions[i].DateStart, sessions[j].DateStart
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Search scans the current and previous season for sessions whose country,
// circuit, session name or location contains the term, case-insensitively.
func (sc *SessionCollector) Search(ctx context.Context, term string) ([]model.Session, error) {
	year := time.Now().Year()
	term = strings.ToLower(term)

	matches := []model.Session{}
	for _, y := range []int{year, year - 1} {
		sessions, err := sc.FindByYear(ctx, y)
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			if containsFold(s.CountryName, term) ||
				containsFold(s.CircuitShortName, term) ||
				containsFold(s.SessionName, term) ||
				containsFold(s.Location, term) {
				matches = append(matches, s)
			}
		}
	}
	return matches, nil
}

// containsFold reports whether s contains the already lowercased term.
func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
