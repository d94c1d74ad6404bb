package collectors

import (
	"context"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"f1datacollector/pkg/model"
	"f1datacollector/pkg/openf1"
)

// F1DataCollector orchestrates the three resource collectors: it owns one
// shared client, hands it to every sub-collector up front and joins their
// data into the consolidated record set.
type F1DataCollector struct {
	client    Fetcher
	sessions  *SessionCollector
	drivers   *DriverCollector
	positions *PositionCollector

	// AvgLapSeconds drives the lap estimation when the source supplies no
	// lap numbers.
	AvgLapSeconds float64
}

// DriverStats is the per-driver slice of the summary.
type DriverStats struct {
	DriverNumber  int
	DriverName    string
	TeamName      string
	BestPosition  int
	WorstPosition int
}

// SummaryStats condenses a consolidated record set.
type SummaryStats struct {
	TotalRecords    int
	UniqueDrivers   int
	TotalLaps       int
	SessionName     string
	CountryName     string
	CircuitName     string
	Year            int
	Start           time.Time
	End             time.Time
	DurationMinutes float64
	Drivers         []DriverStats
}

// NewF1DataCollector builds an orchestrator with a client of its own.
func NewF1DataCollector() *F1DataCollector {
	return NewF1DataCollectorWithClient(openf1.NewClient())
}

// NewF1DataCollectorWithClient builds an orchestrator around the given
// client. The orchestrator takes ownership: Close closes the client.
func NewF1DataCollectorWithClient(client Fetcher) *F1DataCollector {
	return &F1DataCollector{
		client:        client,
		sessions:      NewSessionCollector(client),
		drivers:       NewDriverCollector(client),
		positions:     NewPositionCollector(client),
		AvgLapSeconds: DefaultAvgLapSeconds,
	}
}

// Sessions exposes the session sub-collector.
func (f *F1DataCollector) Sessions() *SessionCollector { return f.sessions }

// Drivers exposes the driver sub-collector.
func (f *F1DataCollector) Drivers() *DriverCollector { return f.drivers }

// Positions exposes the position sub-collector.
func (f *F1DataCollector) Positions() *PositionCollector { return f.positions }

// FindSessions looks up sessions by season, optionally narrowed by country
// and session name.
func (f *F1DataCollector) FindSessions(ctx context.Context, year int, countryName, sessionName string) ([]model.Session, error) {
	filters := openf1.Params{"year": strconv.Itoa(year)}
	if countryName != "" {
		filters["country_name"] = countryName
	}
	if sessionName != "" {
		filters["session_name"] = sessionName
	}
	return f.sessions.Collect(ctx, filters)
}

// GetSessionInfo returns the session for the key, or nil when unknown.
func (f *F1DataCollector) GetSessionInfo(ctx context.Context, sessionKey int) (*model.Session, error) {
	return f.sessions.SessionInfo(ctx, sessionKey)
}

// CollectRaceData joins session, driver and position data of one session
// into the consolidated record set. A session without data at any of the
// three stages yields an empty set, logged and without error. The result is
// a pure value: calling this twice with warm caches yields identical output.
func (f *F1DataCollector) CollectRaceData(ctx context.Context, sessionKey int) ([]model.ConsolidatedRecord, error) {
	log.Printf("collecting data for session %d", sessionKey)

	session, err := f.sessions.SessionInfo(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if session == nil {
		log.Printf("session %d not found", sessionKey)
		return []model.ConsolidatedRecord{}, nil
	}

	drivers := f.drivers.DriversByNumber(ctx, sessionKey)
	if len(drivers) == 0 {
		log.Printf("no drivers for session %d", sessionKey)
		return []model.ConsolidatedRecord{}, nil
	}

	positions, err := f.positions.Collect(ctx, sessionKey, 0)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		log.Printf("no positions for session %d", sessionKey)
		return []model.ConsolidatedRecord{}, nil
	}

	records := make([]model.ConsolidatedRecord, 0, len(positions))
	for _, p := range positions {
		driver, ok := drivers[p.DriverNumber]
		if !ok {
			// an observation nobody can be attributed to is dropped, not an error
			continue
		}
		records = append(records, model.ConsolidatedRecord{
			SessionKey:  session.SessionKey,
			SessionName: session.SessionName,
			SessionType: session.SessionType,
			CountryName: session.CountryName,
			CircuitName: session.CircuitShortName,
			Year:        session.Year,
			SessionDate: session.DateStart,

			DriverNumber:  driver.DriverNumber,
			DriverName:    driver.FullName,
			DriverAcronym: driver.NameAcronym,
			TeamName:      driver.TeamName,
			TeamColour:    driver.TeamColour,
			CountryCode:   driver.CountryCode,
			HeadshotURL:   driver.HeadshotURL,

			Position:   p.Position,
			Timestamp:  p.Date,
			LapNumber:  p.LapNumber,
			MeetingKey: p.MeetingKey,
		})
	}
	if len(records) == 0 {
		return records, nil
	}

	start := records[0].Timestamp
	for _, r := range records {
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
	}
	haveLaps := false
	for i := range records {
		records[i].SecondsFromStart = records[i].Timestamp.Sub(start).Seconds()
		if records[i].LapNumber != nil {
			haveLaps = true
		}
	}

	// estimation is all or nothing: a single genuine lap number from the
	// source disables it for the whole session
	if !haveLaps {
		f.estimateLapNumbers(records)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.Before(records[j].Timestamp)
		}
		return records[i].Position < records[j].Position
	})

	log.Printf("consolidated %d records for session %d", len(records), sessionKey)
	return records, nil
}

func (f *F1DataCollector) estimateLapNumbers(records []model.ConsolidatedRecord) {
	avg := f.AvgLapSeconds
	if avg <= 0 {
		avg = DefaultAvgLapSeconds
	}
	for i := range records {
		lap := int(math.Floor(records[i].SecondsFromStart/avg)) + 1
		records[i].LapNumber = &lap
		records[i].LapEstimated = true
	}
	log.Printf("estimated lap numbers from elapsed time (%.0fs per lap)", avg)
}

// GetSummaryStats condenses a consolidated record set into headline numbers.
func (f *F1DataCollector) GetSummaryStats(records []model.ConsolidatedRecord) SummaryStats {
	if len(records) == 0 {
		return SummaryStats{}
	}

	first := records[0]
	stats := SummaryStats{
		TotalRecords: len(records),
		SessionName:  first.SessionName,
		CountryName:  first.CountryName,
		CircuitName:  first.CircuitName,
		Year:         first.Year,
		Start:        first.Timestamp,
		End:          first.Timestamp,
	}

	byDriver := map[int]*DriverStats{}
	numbers := []int{}
	for _, r := range records {
		if r.Timestamp.Before(stats.Start) {
			stats.Start = r.Timestamp
		}
		if r.Timestamp.After(stats.End) {
			stats.End = r.Timestamp
		}
		if r.LapNumber != nil && *r.LapNumber > stats.TotalLaps {
			stats.TotalLaps = *r.LapNumber
		}
		ds, ok := byDriver[r.DriverNumber]
		if !ok {
			ds = &DriverStats{
				DriverNumber:  r.DriverNumber,
				DriverName:    r.DriverName,
				TeamName:      r.TeamName,
				BestPosition:  r.Position,
				WorstPosition: r.Position,
			}
			byDriver[r.DriverNumber] = ds
			numbers = append(numbers, r.DriverNumber)
		}
		if r.Position < ds.BestPosition {
			ds.BestPosition = r.Position
		}
		if r.Position > ds.WorstPosition {
			ds.WorstPosition = r.Position
		}
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		stats.Drivers = append(stats.Drivers, *byDriver[n])
	}
	stats.UniqueDrivers = len(numbers)
	stats.DurationMinutes = stats.End.Sub(stats.Start).Minutes()
	return stats
}

// GetPositionChanges delegates to the position collector.
func (f *F1DataCollector) GetPositionChanges(ctx context.Context, sessionKey int) ([]PositionChange, error) {
	return f.positions.PositionChanges(ctx, sessionKey)
}

// GetLeadersHistory delegates to the position collector.
func (f *F1DataCollector) GetLeadersHistory(ctx context.Context, sessionKey int) ([]LeadershipRow, error) {
	return f.positions.LeadersHistory(ctx, sessionKey)
}

// GetConsistencyAnalysis delegates to the position collector.
func (f *F1DataCollector) GetConsistencyAnalysis(ctx context.Context, sessionKey int) ([]Consistency, error) {
	return f.positions.ConsistencyAnalysis(ctx, sessionKey)
}

// GetTeamsSummary delegates to the driver collector.
func (f *F1DataCollector) GetTeamsSummary(ctx context.Context, sessionKey int) []TeamSummary {
	return f.drivers.TeamsSummary(ctx, sessionKey)
}

// GetLapByLapData delegates to the position collector using the configured
// average lap duration.
func (f *F1DataCollector) GetLapByLapData(ctx context.Context, sessionKey int) ([]model.LapPosition, error) {
	return f.positions.PositionsByLap(ctx, sessionKey, f.AvgLapSeconds)
}

// SearchSessions delegates to the session collector.
func (f *F1DataCollector) SearchSessions(ctx context.Context, term string) ([]model.Session, error) {
	return f.sessions.Search(ctx, term)
}

// FindLatestSessions delegates to the session collector.
func (f *F1DataCollector) FindLatestSessions(ctx context.Context, limit int) ([]model.Session, error) {
	return f.sessions.LatestSessions(ctx, limit)
}

// ClearCaches empties every sub-collector cache.
func (f *F1DataCollector) ClearCaches() {
	f.sessions.ClearCache()
	f.drivers.ClearCache()
	f.positions.ClearCache()
}

// Close releases the sub-collector caches and the shared client.
func (f *F1DataCollector) Close() {
	f.sessions.Close()
	f.drivers.Close()
	f.positions.Close()
	f.client.Close()
}
