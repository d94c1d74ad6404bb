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

// DefaultAvgLapSeconds is the fallback average lap duration used to estimate
// lap numbers from elapsed time. It is a coarse tunable guess, not a circuit
// fact.
const DefaultAvgLapSeconds = 90.0

// PositionCollector fetches and memoizes position observations of a session
// and derives the time-ordered analytics on top of them.
type PositionCollector struct {
	base
}

// PositionChange summarizes one driver's rank history over a session.
// PositionChange is first minus last rank, so positive means gained places.
type PositionChange struct {
	DriverNumber     int
	StartingPosition int
	EndingPosition   int
	PositionChange   int
	BestPosition     int
	WorstPosition    int
	AvgPosition      float64
	TotalRecords     int
	FirstRecorded    time.Time
	LastRecorded     time.Time
}

// LeadershipRow is one P1 observation. Duration is the gap to the next P1
// observation in seconds; the final row has none, there is no next
// observation to measure against.
type LeadershipRow struct {
	Date          time.Time
	DriverNumber  int
	LeaderChanged bool
	Duration      *float64
}

// Consistency ranks a driver by the spread between the worst and best rank
// they held: worst minus best, lower is more consistent.
type Consistency struct {
	DriverNumber     int
	ConsistencyIndex int
	BestPosition     int
	WorstPosition    int
	TotalRecords     int
}

// NewPositionCollector builds a collector on the given client, or on a
// client of its own when nil is passed.
func NewPositionCollector(client Fetcher) *PositionCollector {
	return &PositionCollector{base: newBase(client)}
}

// Collect fetches the position observations of a session, optionally
// narrowed to one driver number (0 means all), ordered by timestamp with
// rank as the tie-break. No match is an empty slice; a corrupted timestamp
// is an error.
func (pc *PositionCollector) Collect(ctx context.Context, sessionKey, driverNumber int) ([]model.Position, error) {
	params := openf1.Params{"session_key": strconv.Itoa(sessionKey)}
	if driverNumber != 0 {
		params["driver_number"] = strconv.Itoa(driverNumber)
	}

	records := pc.cachedFetch(ctx, openf1.ResourcePositions, params)
	if len(records) == 0 {
		log.Printf("no positions for session %d", sessionKey)
		return []model.Position{}, nil
	}

	positions := make([]model.Position, 0, len(records))
	for _, r := range records {
		position, err := model.PositionFromRecord(r)
		if err != nil {
			return nil, err
		}
		positions = append(positions, position)
	}

	sort.SliceStable(positions, func(i, j int) bool {
		if !positions[i].Date.Equal(positions[j].Date) {
			return positions[i].Date.Before(positions[j].Date)
		}
		return positions[i].Position < positions[j].Position
	})
	return positions, nil
}

// PositionsByLap buckets the observations into laps estimated from elapsed
// time and keeps the last known rank per driver and lap. avgLapSeconds <= 0
// falls back to the default.
func (pc *PositionCollector) PositionsByLap(ctx context.Context, sessionKey int, avgLapSeconds float64) ([]model.LapPosition, error) {
	positions, err := pc.Collect(ctx, sessionKey, 0)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return []model.LapPosition{}, nil
	}
	if avgLapSeconds <= 0 {
		avgLapSeconds = DefaultAvgLapSeconds
	}

	start := positions[0].Date
	type lapKey struct {
		lap    int
		driver int
	}
	last := map[lapKey]model.LapPosition{}
	order := []lapKey{}
	for _, p := range positions {
		elapsed := p.Date.Sub(start).Seconds()
		lap := int(math.Floor(elapsed/avgLapSeconds)) + 1
		key := lapKey{lap: lap, driver: p.DriverNumber}
		if _, seen := last[key]; !seen {
			order = append(order, key)
		}
		last[key] = model.LapPosition{
			DriverNumber: p.DriverNumber,
			LapNumber:    lap,
			Position:     p.Position,
			SessionKey:   p.SessionKey,
			MeetingKey:   p.MeetingKey,
			Date:         p.Date,
		}
	}

	laps := make([]model.LapPosition, 0, len(order))
	for _, key := range order {
		laps = append(laps, last[key])
	}
	sort.SliceStable(laps, func(i, j int) bool {
		if laps[i].LapNumber != laps[j].LapNumber {
			return laps[i].LapNumber < laps[j].LapNumber
		}
		return laps[i].Position < laps[j].Position
	})
	return laps, nil
}

// PositionChanges computes per-driver rank statistics over the session,
// ordered by ending position for leaderboard presentation.
func (pc *PositionCollector) PositionChanges(ctx context.Context, sessionKey int) ([]PositionChange, error) {
	positions, err := pc.Collect(ctx, sessionKey, 0)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return []PositionChange{}, nil
	}

	byDriver := map[int]*PositionChange{}
	sums := map[int]int{}
	for _, p := range positions {
		change, ok := byDriver[p.DriverNumber]
		if !ok {
			change = &PositionChange{
				DriverNumber:     p.DriverNumber,
				StartingPosition: p.Position,
				BestPosition:     p.Position,
				WorstPosition:    p.Position,
				FirstRecorded:    p.Date,
			}
			byDriver[p.DriverNumber] = change
		}
		change.EndingPosition = p.Position
		change.LastRecorded = p.Date
		change.TotalRecords++
		if p.Position < change.BestPosition {
			change.BestPosition = p.Position
		}
		if p.Position > change.WorstPosition {
			change.WorstPosition = p.Position
		}
		sums[p.DriverNumber] += p.Position
	}

	changes := make([]PositionChange, 0, len(byDriver))
	for number, change := range byDriver {
		change.PositionChange = change.StartingPosition - change.EndingPosition
		change.AvgPosition = float64(sums[number]) / float64(change.TotalRecords)
		changes = append(changes, *change)
	}
	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].EndingPosition != changes[j].EndingPosition {
			return changes[i].EndingPosition < changes[j].EndingPosition
		}
		return changes[i].DriverNumber < changes[j].DriverNumber
	})
	return changes, nil
}

// LeadersHistory restricts the session to P1 observations in time order,
// flags the rows where the leader differs from the previous one and measures
// how long each observation stood.
func (pc *PositionCollector) LeadersHistory(ctx context.Context, sessionKey int) ([]LeadershipRow, error) {
	positions, err := pc.Collect(ctx, sessionKey, 0)
	if err != nil {
		return nil, err
	}

	leaders := []model.Position{}
	for _, p := range positions {
		if p.Position == 1 {
			leaders = append(leaders, p)
		}
	}
	if len(leaders) == 0 {
		return []LeadershipRow{}, nil
	}

	rows := make([]LeadershipRow, len(leaders))
	for i, p := range leaders {
		rows[i] = LeadershipRow{
			Date:          p.Date,
			DriverNumber:  p.DriverNumber,
			LeaderChanged: i > 0 && p.DriverNumber != leaders[i-1].DriverNumber,
		}
		if i > 0 {
			gap := p.Date.Sub(leaders[i-1].Date).Seconds()
			rows[i-1].Duration = &gap
		}
	}
	return rows, nil
}

// ConsistencyAnalysis ranks the session's drivers from most to least
// consistent by the spread of the ranks they held.
func (pc *PositionCollector) ConsistencyAnalysis(ctx context.Context, sessionKey int) ([]Consistency, error) {
	changes, err := pc.PositionChanges(ctx, sessionKey)
	if err != nil {
		return nil, err
	}

	entries := make([]Consistency, 0, len(changes))
	for _, c := range changes {
		entries = append(entries, Consistency{
			DriverNumber:     c.DriverNumber,
			ConsistencyIndex: c.WorstPosition - c.BestPosition,
			BestPosition:     c.BestPosition,
			WorstPosition:    c.WorstPosition,
			TotalRecords:     c.TotalRecords,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ConsistencyIndex != entries[j].ConsistencyIndex {
			return entries[i].ConsistencyIndex < entries[j].ConsistencyIndex
		}
		return entries[i].DriverNumber < entries[j].DriverNumber
	})
	return entries, nil
}

// PositionsAt reconstructs the running order at one instant: the latest
// observation per driver at or before the target time, ordered by rank.
func (pc *PositionCollector) PositionsAt(ctx context.Context, sessionKey int, target time.Time) ([]model.Position, error) {
	positions, err := pc.Collect(ctx, sessionKey, 0)
	if err != nil {
		return nil, err
	}

	latest := map[int]model.Position{}
	for _, p := range positions {
		if p.Date.After(target) {
			break
		}
		latest[p.DriverNumber] = p
	}

	snapshot := make([]model.Position, 0, len(latest))
	for _, p := range latest {
		snapshot = append(snapshot, p)
	}
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Position < snapshot[j].Position
	})
	return snapshot, nil
}
