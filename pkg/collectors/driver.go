package collectors

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"f1datacollector/pkg/model"
	"f1datacollector/pkg/openf1"
)

// DriverCollector fetches and memoizes driver data of a session.
type DriverCollector struct {
	base
}

// TeamSummary aggregates the drivers of one team within a session.
type TeamSummary struct {
	TeamName       string
	TeamColour     string
	DriverCount    int
	DriverNames    string
	DriverAcronyms string
	Countries      string
}

// ValidationReport describes the quality of the driver data of a session.
type ValidationReport struct {
	TotalDrivers      int
	MissingData       map[string]int
	DuplicateNumbers  []int
	TeamsCount        int
	CountriesCount    int
	MissingPhotos     int
	MissingTeamColors int
}

// NewDriverCollector builds a collector on the given client, or on a client
// of its own when nil is passed.
func NewDriverCollector(client Fetcher) *DriverCollector {
	return &DriverCollector{base: newBase(client)}
}

// Collect fetches the drivers of a session, optionally narrowed to one
// driver number (0 means all). No match is an empty slice.
func (dc *DriverCollector) Collect(ctx context.Context, sessionKey, driverNumber int) []model.Driver {
	params := openf1.Params{"session_key": strconv.Itoa(sessionKey)}
	if driverNumber != 0 {
		params["driver_number"] = strconv.Itoa(driverNumber)
	}

	records := dc.cachedFetch(ctx, openf1.ResourceDrivers, params)
	if len(records) == 0 {
		log.Printf("no drivers for session %d", sessionKey)
		return []model.Driver{}
	}

	drivers := make([]model.Driver, 0, len(records))
	for _, r := range records {
		drivers = append(drivers, model.DriverFromRecord(r))
	}
	return drivers
}

// DriversByNumber returns the session's drivers keyed by driver number.
func (dc *DriverCollector) DriversByNumber(ctx context.Context, sessionKey int) map[int]model.Driver {
	drivers := dc.Collect(ctx, sessionKey, 0)
	byNumber := make(map[int]model.Driver, len(drivers))
	for _, d := range drivers {
		byNumber[d.DriverNumber] = d
	}
	return byNumber
}

// DriverByNumber returns one driver of the session, or nil when unknown.
func (dc *DriverCollector) DriverByNumber(ctx context.Context, sessionKey, driverNumber int) *model.Driver {
	drivers := dc.Collect(ctx, sessionKey, driverNumber)
	if len(drivers) == 0 {
		return nil
	}
	return &drivers[0]
}

// ByTeam returns the drivers whose team name contains the given name,
// case-insensitively.
func (dc *DriverCollector) ByTeam(ctx context.Context, sessionKey int, teamName string) []model.Driver {
	team := strings.ToLower(teamName)
	matches := []model.Driver{}
	for _, d := range dc.Collect(ctx, sessionKey, 0) {
		if containsFold(d.TeamName, team) {
			matches = append(matches, d)
		}
	}
	return matches
}

// TeamsSummary groups the session's drivers per team: headcount, joined
// names and acronyms, distinct countries. Sorted by team name.
func (dc *DriverCollector) TeamsSummary(ctx context.Context, sessionKey int) []TeamSummary {
	drivers := dc.Collect(ctx, sessionKey, 0)
	if len(drivers) == 0 {
		return []TeamSummary{}
	}

	byTeam := map[string][]model.Driver{}
	order := []string{}
	for _, d := range drivers {
		if _, seen := byTeam[d.TeamName]; !seen {
			order = append(order, d.TeamName)
		}
		byTeam[d.TeamName] = append(byTeam[d.TeamName], d)
	}
	sort.Strings(order)

	summaries := make([]TeamSummary, 0, len(order))
	for _, team := range order {
		members := byTeam[team]

		names := make([]string, 0, len(members))
		acronyms := make([]string, 0, len(members))
		countries := []string{}
		seenCountry := map[string]bool{}
		for _, d := range members {
			names = append(names, d.FullName)
			acronyms = append(acronyms, d.NameAcronym)
			if !seenCountry[d.CountryCode] {
				seenCountry[d.CountryCode] = true
				countries = append(countries, d.CountryCode)
			}
		}

		summaries = append(summaries, TeamSummary{
			TeamName:       team,
			TeamColour:     members[0].TeamColour,
			DriverCount:    len(members),
			DriverNames:    strings.Join(names, ", "),
			DriverAcronyms: strings.Join(acronyms, ", "),
			Countries:      strings.Join(countries, ", "),
		})
	}
	return summaries
}

// Search returns the drivers whose name, acronym, team or country contains
// the term, case-insensitively.
func (dc *DriverCollector) Search(ctx context.Context, sessionKey int, term string) []model.Driver {
	term = strings.ToLower(term)
	matches := []model.Driver{}
	for _, d := range dc.Collect(ctx, sessionKey, 0) {
		if containsFold(d.FirstName, term) ||
			containsFold(d.LastName, term) ||
			containsFold(d.FullName, term) ||
			containsFold(d.NameAcronym, term) ||
			containsFold(d.TeamName, term) ||
			containsFold(d.CountryCode, term) {
			matches = append(matches, d)
		}
	}
	return matches
}

// DriverNumbers returns the sorted driver numbers of the session.
func (dc *DriverCollector) DriverNumbers(ctx context.Context, sessionKey int) []int {
	drivers := dc.Collect(ctx, sessionKey, 0)
	numbers := make([]int, 0, len(drivers))
	for _, d := range drivers {
		numbers = append(numbers, d.DriverNumber)
	}
	sort.Ints(numbers)
	return numbers
}

// PhotoURLs returns the headshot URL per driver number, skipping drivers
// without one.
func (dc *DriverCollector) PhotoURLs(ctx context.Context, sessionKey int) map[int]string {
	urls := map[int]string{}
	for _, d := range dc.Collect(ctx, sessionKey, 0) {
		if d.HeadshotURL != "" {
			urls[d.DriverNumber] = d.HeadshotURL
		}
	}
	return urls
}

// ValidateData checks the driver data of a session for missing fields and
// duplicated numbers.
func (dc *DriverCollector) ValidateData(ctx context.Context, sessionKey int) ValidationReport {
	drivers := dc.Collect(ctx, sessionKey, 0)

	report := ValidationReport{
		TotalDrivers: len(drivers),
		MissingData:  map[string]int{},
	}
	if len(drivers) == 0 {
		return report
	}

	teams := map[string]bool{}
	countries := map[string]bool{}
	seenNumber := map[int]bool{}
	for _, d := range drivers {
		for field, value := range map[string]string{
			"first_name":   d.FirstName,
			"last_name":    d.LastName,
			"team_name":    d.TeamName,
			"name_acronym": d.NameAcronym,
		} {
			if value == "" {
				report.MissingData[field]++
			}
		}
		if seenNumber[d.DriverNumber] {
			report.DuplicateNumbers = append(report.DuplicateNumbers, d.DriverNumber)
		}
		seenNumber[d.DriverNumber] = true
		teams[d.TeamName] = true
		countries[d.CountryCode] = true
		if d.HeadshotURL == "" {
			report.MissingPhotos++
		}
		if d.TeamColour == "" {
			report.MissingTeamColors++
		}
	}
	report.TeamsCount = len(teams)
	report.CountriesCount = len(countries)
	sort.Ints(report.DuplicateNumbers)
	return report
}
