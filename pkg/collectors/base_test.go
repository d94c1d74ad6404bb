package collectors

import (
	"context"
	"testing"

	"f1datacollector/pkg/model"
	"f1datacollector/pkg/openf1"

	"github.com/pkg/errors"
)

// stubFetcher serves canned records per resource and counts the calls.
type stubFetcher struct {
	responses map[string][]model.Record
	errs      map[string]error
	calls     map[string]int
	closed    bool
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		responses: map[string][]model.Record{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

func (s *stubFetcher) Fetch(ctx context.Context, resource string, params openf1.Params) ([]model.Record, error) {
	s.calls[resource]++
	if err := s.errs[resource]; err != nil {
		return nil, err
	}
	return s.responses[resource], nil
}

func (s *stubFetcher) Close() {
	s.closed = true
}

func sessionRecord() model.Record {
	return model.Record{
		"session_key":        9558,
		"session_name":       "Race",
		"session_type":       "Race",
		"country_name":       "Brazil",
		"country_code":       "BRA",
		"circuit_short_name": "Interlagos",
		"location":           "São Paulo",
		"year":               2023,
		"meeting_key":        1219,
		"date_start":         "2023-11-05T17:00:00+00:00",
	}
}

func driverRecord(number int, fullName, acronym, team, country string) model.Record {
	return model.Record{
		"driver_number": number,
		"full_name":     fullName,
		"name_acronym":  acronym,
		"team_name":     team,
		"team_colour":   "3671C6",
		"country_code":  country,
		"session_key":   9558,
		"meeting_key":   1219,
	}
}

func positionRecord(number, rank int, date string) model.Record {
	return model.Record{
		"driver_number": number,
		"position":      rank,
		"date":          date,
		"session_key":   9558,
		"meeting_key":   1219,
	}
}

func TestCacheKeyCanonical(t *testing.T) {
	key := cacheKey("sessions", openf1.Params{
		"year":         "2023",
		"country_name": "Brazil",
	})
	want := "sessions?country_name=Brazil&year=2023"
	if key != want {
		t.Errorf("cache key: got %q, want %q", key, want)
	}
}

func TestCachedFetchMemoizes(t *testing.T) {
	stub := newStubFetcher()
	stub.responses[openf1.ResourceSessions] = []model.Record{sessionRecord()}
	sc := NewSessionCollector(stub)

	filters := openf1.Params{"year": "2023", "country_name": "Brazil"}
	for i := 0; i < 3; i++ {
		if _, err := sc.Collect(context.Background(), filters); err != nil {
			t.Fatalf("collect %d: %v", i, err)
		}
	}
	if stub.calls[openf1.ResourceSessions] != 1 {
		t.Errorf("fetch calls: got %d, want 1", stub.calls[openf1.ResourceSessions])
	}

	sc.ClearCache()
	if _, err := sc.Collect(context.Background(), filters); err != nil {
		t.Fatalf("collect after clear: %v", err)
	}
	if stub.calls[openf1.ResourceSessions] != 2 {
		t.Errorf("fetch calls after clear: got %d, want 2", stub.calls[openf1.ResourceSessions])
	}
}

func TestCachedFetchErrorNotCached(t *testing.T) {
	stub := newStubFetcher()
	stub.errs[openf1.ResourceSessions] = errors.New("boom")
	sc := NewSessionCollector(stub)

	filters := openf1.Params{"year": "2023"}
	for i := 0; i < 2; i++ {
		sessions, err := sc.Collect(context.Background(), filters)
		if err != nil {
			t.Fatalf("collect %d: fetch errors must degrade to empty, got %v", i, err)
		}
		if len(sessions) != 0 {
			t.Errorf("collect %d: got %d sessions, want 0", i, len(sessions))
		}
	}
	if stub.calls[openf1.ResourceSessions] != 2 {
		t.Errorf("failed responses must not be cached: got %d calls, want 2", stub.calls[openf1.ResourceSessions])
	}
}

func TestGetCacheStats(t *testing.T) {
	stub := newStubFetcher()
	stub.responses[openf1.ResourceSessions] = []model.Record{sessionRecord()}
	sc := NewSessionCollector(stub)

	if stats := sc.GetCacheStats(); stats.Entries != 0 {
		t.Errorf("fresh collector: got %d entries, want 0", stats.Entries)
	}

	if _, err := sc.Collect(context.Background(), openf1.Params{"year": "2023"}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	stats := sc.GetCacheStats()
	if stats.Entries != 1 {
		t.Fatalf("got %d entries, want 1", stats.Entries)
	}
	if stats.Keys[0] != "sessions?year=2023" {
		t.Errorf("cache key: got %q", stats.Keys[0])
	}
}

func TestCloseKeepsBorrowedClientOpen(t *testing.T) {
	stub := newStubFetcher()
	sc := NewSessionCollector(stub)
	sc.Close()
	if stub.closed {
		t.Errorf("closing a collector must not close a borrowed client")
	}
	if stats := sc.GetCacheStats(); stats.Entries != 0 {
		t.Errorf("close must drop the cache")
	}
}
