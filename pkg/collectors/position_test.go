package collectors

import (
	"context"
	"testing"
	"time"

	"f1datacollector/pkg/model"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestPositionCollectOrdering(t *testing.T) {
	stub := newStubFetcher()
	stub.responses["position"] = []model.Record{
		positionRecord(44, 2, "2023-11-05T17:10:00+00:00"),
		positionRecord(1, 1, "2023-11-05T17:10:00+00:00"),
		positionRecord(44, 3, "2023-11-05T17:00:00+00:00"),
	}
	pc := NewPositionCollector(stub)

	positions, err := pc.Collect(context.Background(), 9558, 0)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("got %d positions, want 3", len(positions))
	}
	if positions[0].DriverNumber != 44 || positions[0].Position != 3 {
		t.Errorf("earliest observation must come first, got %+v", positions[0])
	}
	// same instant, rank breaks the tie
	if positions[1].Position != 1 || positions[2].Position != 2 {
		t.Errorf("rank tie-break broken: %+v, %+v", positions[1], positions[2])
	}
}

func TestPositionChanges(t *testing.T) {
	stub := newStubFetcher()
	stub.responses["position"] = []model.Record{
		positionRecord(44, 5, "2023-11-05T17:00:00+00:00"),
		positionRecord(44, 4, "2023-11-05T17:05:00+00:00"),
		positionRecord(44, 6, "2023-11-05T17:10:00+00:00"),
		positionRecord(44, 2, "2023-11-05T17:15:00+00:00"),
		positionRecord(1, 1, "2023-11-05T17:00:00+00:00"),
	}
	pc := NewPositionCollector(stub)

	changes, err := pc.PositionChanges(context.Background(), 9558)
	if err != nil {
		t.Fatalf("position changes: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d drivers, want 2", len(changes))
	}
	// ordered by ending position
	if changes[0].DriverNumber != 1 || changes[1].DriverNumber != 44 {
		t.Fatalf("wrong order: %d, %d", changes[0].DriverNumber, changes[1].DriverNumber)
	}

	ham := changes[1]
	if ham.StartingPosition != 5 || ham.EndingPosition != 2 {
		t.Errorf("start/end: got %d/%d, want 5/2", ham.StartingPosition, ham.EndingPosition)
	}
	if ham.PositionChange != 3 {
		t.Errorf("change: got %d, want +3", ham.PositionChange)
	}
	if ham.BestPosition != 2 || ham.WorstPosition != 6 {
		t.Errorf("best/worst: got %d/%d, want 2/6", ham.BestPosition, ham.WorstPosition)
	}
	if ham.AvgPosition != 4.25 {
		t.Errorf("avg: got %v, want 4.25", ham.AvgPosition)
	}
	if ham.TotalRecords != 4 {
		t.Errorf("records: got %d, want 4", ham.TotalRecords)
	}
}

func TestLeadersHistory(t *testing.T) {
	stub := newStubFetcher()
	stub.responses["position"] = []model.Record{
		positionRecord(1, 1, "2023-11-05T17:00:00+00:00"),
		positionRecord(1, 1, "2023-11-05T17:01:30+00:00"),
		positionRecord(44, 1, "2023-11-05T17:03:00+00:00"),
		positionRecord(44, 1, "2023-11-05T17:05:00+00:00"),
		positionRecord(11, 4, "2023-11-05T17:02:00+00:00"),
	}
	pc := NewPositionCollector(stub)

	rows, err := pc.LeadersHistory(context.Background(), 9558)
	if err != nil {
		t.Fatalf("leaders history: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	wantChanged := []bool{false, false, true, false}
	for i, want := range wantChanged {
		if rows[i].LeaderChanged != want {
			t.Errorf("row %d: LeaderChanged got %v, want %v", i, rows[i].LeaderChanged, want)
		}
	}

	wantDuration := []float64{90, 90, 120}
	for i, want := range wantDuration {
		if rows[i].Duration == nil {
			t.Errorf("row %d: missing duration", i)
			continue
		}
		if *rows[i].Duration != want {
			t.Errorf("row %d: duration got %v, want %v", i, *rows[i].Duration, want)
		}
	}
	if rows[3].Duration != nil {
		t.Errorf("last row has no next observation, duration must be nil")
	}
}

func TestConsistencyAnalysis(t *testing.T) {
	stub := newStubFetcher()
	stub.responses["position"] = []model.Record{
		positionRecord(1, 1, "2023-11-05T17:00:00+00:00"),
		positionRecord(1, 1, "2023-11-05T17:10:00+00:00"),
		positionRecord(44, 2, "2023-11-05T17:00:00+00:00"),
		positionRecord(44, 8, "2023-11-05T17:10:00+00:00"),
		positionRecord(11, 3, "2023-11-05T17:00:00+00:00"),
		positionRecord(11, 5, "2023-11-05T17:10:00+00:00"),
	}
	pc := NewPositionCollector(stub)

	entries, err := pc.ConsistencyAnalysis(context.Background(), 9558)
	if err != nil {
		t.Fatalf("consistency analysis: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// most consistent first
	wantOrder := []int{1, 11, 44}
	wantIndex := []int{0, 2, 6}
	for i := range wantOrder {
		if entries[i].DriverNumber != wantOrder[i] {
			t.Errorf("entry %d: driver got %d, want %d", i, entries[i].DriverNumber, wantOrder[i])
		}
		if entries[i].ConsistencyIndex != wantIndex[i] {
			t.Errorf("entry %d: index got %d, want %d", i, entries[i].ConsistencyIndex, wantIndex[i])
		}
	}
}

func TestPositionsByLap(t *testing.T) {
	stub := newStubFetcher()
	stub.responses["position"] = []model.Record{
		positionRecord(1, 1, "2023-11-05T17:00:00+00:00"),
		positionRecord(1, 2, "2023-11-05T17:01:00+00:00"),
		positionRecord(1, 1, "2023-11-05T17:02:00+00:00"),
		positionRecord(44, 2, "2023-11-05T17:02:30+00:00"),
	}
	pc := NewPositionCollector(stub)

	laps, err := pc.PositionsByLap(context.Background(), 9558, 90)
	if err != nil {
		t.Fatalf("positions by lap: %v", err)
	}
	// driver 1: lap 1 keeps the later of the first two observations, lap 2
	// gets the third; driver 44 only appears on lap 2
	if len(laps) != 3 {
		t.Fatalf("got %d lap rows, want 3: %+v", len(laps), laps)
	}
	if laps[0].LapNumber != 1 || laps[0].DriverNumber != 1 || laps[0].Position != 2 {
		t.Errorf("lap 1: got %+v", laps[0])
	}
	if laps[1].LapNumber != 2 || laps[1].Position != 1 {
		t.Errorf("lap 2 leader: got %+v", laps[1])
	}
	if laps[2].LapNumber != 2 || laps[2].DriverNumber != 44 {
		t.Errorf("lap 2 second: got %+v", laps[2])
	}
}

func TestPositionsAt(t *testing.T) {
	stub := newStubFetcher()
	stub.responses["position"] = []model.Record{
		positionRecord(1, 2, "2023-11-05T17:00:00+00:00"),
		positionRecord(44, 1, "2023-11-05T17:00:00+00:00"),
		positionRecord(1, 1, "2023-11-05T17:05:00+00:00"),
		positionRecord(44, 2, "2023-11-05T17:05:00+00:00"),
	}
	pc := NewPositionCollector(stub)

	snapshot, err := pc.PositionsAt(context.Background(), 9558, mustTime(t, "2023-11-05T17:02:00Z"))
	if err != nil {
		t.Fatalf("positions at: %v", err)
	}
	if len(snapshot) != 2 {
		t.Fatalf("got %d rows, want 2", len(snapshot))
	}
	if snapshot[0].DriverNumber != 44 || snapshot[1].DriverNumber != 1 {
		t.Errorf("running order at instant: got %d, %d", snapshot[0].DriverNumber, snapshot[1].DriverNumber)
	}
}
