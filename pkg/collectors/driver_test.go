package collectors

import (
	"context"
	"reflect"
	"testing"

	"f1datacollector/pkg/model"
)

func stubWithDrivers() *stubFetcher {
	stub := newStubFetcher()
	stub.responses["drivers"] = []model.Record{
		driverRecord(1, "Max VERSTAPPEN", "VER", "Red Bull Racing", "NED"),
		driverRecord(11, "Sergio PEREZ", "PER", "Red Bull Racing", "MEX"),
		driverRecord(44, "Lewis HAMILTON", "HAM", "Mercedes", "GBR"),
	}
	return stub
}

func TestDriversByNumber(t *testing.T) {
	dc := NewDriverCollector(stubWithDrivers())

	byNumber := dc.DriversByNumber(context.Background(), 9558)
	if len(byNumber) != 3 {
		t.Fatalf("got %d drivers, want 3", len(byNumber))
	}
	if byNumber[44].FullName != "Lewis HAMILTON" {
		t.Errorf("driver 44: got %+v", byNumber[44])
	}
}

func TestDriverByNumberUnknown(t *testing.T) {
	dc := NewDriverCollector(newStubFetcher())
	if d := dc.DriverByNumber(context.Background(), 9558, 99); d != nil {
		t.Errorf("expected nil for unknown driver, got %+v", d)
	}
}

func TestTeamsSummary(t *testing.T) {
	dc := NewDriverCollector(stubWithDrivers())

	summaries := dc.TeamsSummary(context.Background(), 9558)
	if len(summaries) != 2 {
		t.Fatalf("got %d teams, want 2", len(summaries))
	}
	// sorted by team name
	if summaries[0].TeamName != "Mercedes" || summaries[1].TeamName != "Red Bull Racing" {
		t.Errorf("wrong order: %q, %q", summaries[0].TeamName, summaries[1].TeamName)
	}
	redBull := summaries[1]
	if redBull.DriverCount != 2 {
		t.Errorf("red bull headcount: got %d, want 2", redBull.DriverCount)
	}
	if redBull.DriverAcronyms != "VER, PER" {
		t.Errorf("red bull acronyms: got %q", redBull.DriverAcronyms)
	}
	if redBull.Countries != "NED, MEX" {
		t.Errorf("red bull countries: got %q", redBull.Countries)
	}
}

func TestDriverSearch(t *testing.T) {
	dc := NewDriverCollector(stubWithDrivers())

	tests := []struct {
		term string
		want []int
	}{
		{"hamilton", []int{44}},
		{"red bull", []int{1, 11}},
		{"VER", []int{1}},
		{"nobody", nil},
	}
	for _, test := range tests {
		var got []int
		for _, d := range dc.Search(context.Background(), 9558, test.term) {
			got = append(got, d.DriverNumber)
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("search %q: got %v, want %v", test.term, got, test.want)
		}
	}
}

func TestDriverNumbersSorted(t *testing.T) {
	dc := NewDriverCollector(stubWithDrivers())
	got := dc.DriverNumbers(context.Background(), 9558)
	want := []int{1, 11, 44}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("driver numbers: got %v, want %v", got, want)
	}
}

func TestValidateData(t *testing.T) {
	stub := newStubFetcher()
	incomplete := driverRecord(63, "George RUSSELL", "RUS", "Mercedes", "GBR")
	delete(incomplete, "team_colour")
	duplicate := driverRecord(63, "George RUSSELL", "", "Mercedes", "GBR")
	stub.responses["drivers"] = []model.Record{
		driverRecord(44, "Lewis HAMILTON", "HAM", "Mercedes", "GBR"),
		incomplete,
		duplicate,
	}
	dc := NewDriverCollector(stub)

	report := dc.ValidateData(context.Background(), 9558)
	if report.TotalDrivers != 3 {
		t.Errorf("total drivers: got %d, want 3", report.TotalDrivers)
	}
	if !reflect.DeepEqual(report.DuplicateNumbers, []int{63}) {
		t.Errorf("duplicates: got %v, want [63]", report.DuplicateNumbers)
	}
	if report.MissingData["name_acronym"] != 1 {
		t.Errorf("missing acronyms: got %d, want 1", report.MissingData["name_acronym"])
	}
	if report.TeamsCount != 1 || report.CountriesCount != 1 {
		t.Errorf("teams/countries: got %d/%d, want 1/1", report.TeamsCount, report.CountriesCount)
	}
	if report.MissingTeamColors != 1 {
		t.Errorf("missing team colors: got %d, want 1", report.MissingTeamColors)
	}
	if report.MissingPhotos != 3 {
		t.Errorf("missing photos: got %d, want 3", report.MissingPhotos)
	}
}
