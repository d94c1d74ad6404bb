package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"f1datacollector/pkg/collectors"
	"f1datacollector/pkg/export"
	"f1datacollector/pkg/helper"
	"f1datacollector/pkg/model"
	"f1datacollector/pkg/openf1"
	"f1datacollector/pkg/settings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/peterh/liner"
)

const sampleRows = 10

type app struct {
	collector *collectors.F1DataCollector
	prefs     *settings.Manager
	exporter  export.Exporter

	// last collected session and its consolidated records
	sessionKey int
	records    []model.ConsolidatedRecord
}

func main() {
	// .env is optional, the defaults work without one
	_ = godotenv.Load()

	baseURL := os.Getenv("OPENF1_BASE_URL")
	if baseURL == "" {
		baseURL = openf1.DefaultBaseURL
	}

	prefs, err := settings.NewManager(os.Getenv("F1_DB_PATH"))
	if err != nil {
		log.Fatalf("opening preferences database: %v", err)
	}
	defer prefs.Close()

	p, err := prefs.Load()
	if err != nil {
		log.Printf("loading preferences: %v", err)
		p = settings.DefaultPreferences()
	}
	if dir := os.Getenv("F1_OUTPUT_DIR"); dir != "" {
		p.OutputDir = dir
	}

	collector := collectors.NewF1DataCollectorWithClient(openf1.NewClientWithBaseURL(baseURL))
	collector.AvgLapSeconds = p.AvgLapSeconds
	defer collector.Close()

	a := &app{
		collector: collector,
		prefs:     prefs,
		exporter:  export.New(p.OutputDir),
	}

	fmt.Println("F1 data collector. Type 'help' for the command list, Ctrl-D to leave.")

	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetCtrlCAborts(true)

	ctx := context.Background()
	for {
		got, err := lin.Prompt("f1> ")
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Println()
				return
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		got = strings.TrimSpace(got)
		if got == "" {
			continue
		}
		lin.AppendHistory(got)
		if got == "quit" || got == "exit" {
			return
		}
		if err := a.handleCommand(ctx, got); err != nil {
			log.Printf("command failed: %v", err)
		}
	}
}

func (a *app) handleCommand(ctx context.Context, command string) error {
	args := strings.Fields(command)
	switch args[0] {
	case "help":
		printHelp()
	case "sessions":
		return a.showSessions(ctx, args[1:])
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("usage: search <term>")
		}
		return a.searchSessions(ctx, strings.Join(args[1:], " "))
	case "latest":
		limit := 10
		if len(args) > 1 {
			limit, _ = strconv.Atoi(args[1])
		}
		return a.showLatest(ctx, limit)
	case "collect":
		if len(args) != 2 {
			return fmt.Errorf("usage: collect <session_key>")
		}
		key, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid session key %q", args[1])
		}
		return a.collect(ctx, key)
	case "summary":
		return a.showSummary()
	case "changes":
		return a.showChanges(ctx)
	case "leaders":
		return a.showLeaders(ctx)
	case "teams":
		return a.showTeams(ctx)
	case "consistency":
		return a.showConsistency(ctx)
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("usage: export csv|json [name]")
		}
		name := ""
		if len(args) > 2 {
			name = args[2]
		}
		return a.exportRecords(args[1], name)
	case "avglap":
		if len(args) != 2 {
			return fmt.Errorf("usage: avglap <seconds>")
		}
		return a.setAvgLap(args[1])
	case "outdir":
		if len(args) != 2 {
			return fmt.Errorf("usage: outdir <directory>")
		}
		return a.setOutputDir(args[1])
	case "clear":
		a.collector.ClearCaches()
		fmt.Println("caches cleared")
	default:
		return fmt.Errorf("unknown command %q, try 'help'", args[0])
	}
	return nil
}

func printHelp() {
	fmt.Println(`Commands:
  sessions <year> [country] [session]  list sessions of a season
  search <term>                        find sessions by free text
  latest [n]                           newest sessions
  collect <session_key>                fetch and consolidate one session
  summary                              headline numbers of the collected session
  changes                              position-change leaderboard
  leaders                              leadership history
  teams                                team summary
  consistency                          consistency ranking
  export csv|json [name]               write the collected records to disk
  avglap <seconds>                     tune the lap estimation
  outdir <directory>                   change the export directory
  clear                                drop the collector caches
  quit                                 leave`)
}

func (a *app) showSessions(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sessions <year> [country] [session]")
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid year %q", args[0])
	}
	country, sessionName := "", ""
	if len(args) > 1 {
		country = args[1]
	}
	if len(args) > 2 {
		sessionName = args[2]
	}

	sessions, err := a.collector.FindSessions(ctx, year, country, sessionName)
	if err != nil {
		return err
	}
	printSessionsTable(sessions)
	return nil
}

func (a *app) searchSessions(ctx context.Context, term string) error {
	sessions, err := a.collector.SearchSessions(ctx, term)
	if err != nil {
		return err
	}
	printSessionsTable(sessions)
	return nil
}

func (a *app) showLatest(ctx context.Context, limit int) error {
	sessions, err := a.collector.FindLatestSessions(ctx, limit)
	if err != nil {
		return err
	}
	printSessionsTable(sessions)
	return nil
}

func printSessionsTable(sessions []model.Session) {
	if len(sessions) == 0 {
		fmt.Println("no sessions found")
		return
	}
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"KEY", "SESSION", "COUNTRY", "CIRCUIT", "YEAR", "START"})
	for _, s := range sessions {
		start := "-"
		if s.DateStart != nil {
			start = s.DateStart.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{s.SessionKey, s.SessionName, s.CountryName, s.CircuitShortName, s.Year, start})
	}
	t.Render()
	fmt.Print(b.String())
}

func (a *app) collect(ctx context.Context, sessionKey int) error {
	records, err := a.collector.CollectRaceData(ctx, sessionKey)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no data found for this session")
		return nil
	}
	a.sessionKey = sessionKey
	a.records = records

	if err := a.showSummary(); err != nil {
		return err
	}

	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"DRIVER", "TEAM", "POS", "LAP", "TIME"})
	for i, r := range records {
		if i == sampleRows {
			break
		}
		lap := "-"
		if r.LapNumber != nil {
			lap = strconv.Itoa(*r.LapNumber)
			if r.LapEstimated {
				lap += "*"
			}
		}
		t.AppendRow(table.Row{r.DriverAcronym, r.TeamName, r.Position, lap, r.Timestamp.Format("15:04:05")})
	}
	t.Render()
	fmt.Printf("first %d records:\n%s", sampleRows, b.String())
	return nil
}

func (a *app) showSummary() error {
	if len(a.records) == 0 {
		return fmt.Errorf("collect a session first")
	}
	stats := a.collector.GetSummaryStats(a.records)
	fmt.Printf("%s %d - %s (%s)\n", stats.CountryName, stats.Year, stats.SessionName, stats.CircuitName)
	fmt.Printf("  records: %d, drivers: %d, laps: %d, duration: %s\n",
		stats.TotalRecords, stats.UniqueDrivers, stats.TotalLaps,
		helper.SecondsToHoursAndMinutes(stats.DurationMinutes*60))
	return nil
}

func (a *app) showChanges(ctx context.Context) error {
	if a.sessionKey == 0 {
		return fmt.Errorf("collect a session first")
	}
	changes, err := a.collector.GetPositionChanges(ctx, a.sessionKey)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Println("no position data")
		return nil
	}
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NUM", "START", "END", "CHANGE", "BEST", "WORST", "AVG", "RECORDS"})
	for _, c := range changes {
		t.AppendRow(table.Row{
			c.DriverNumber, c.StartingPosition, c.EndingPosition,
			helper.FormatDelta(c.PositionChange),
			c.BestPosition, c.WorstPosition,
			fmt.Sprintf("%.2f", c.AvgPosition), c.TotalRecords,
		})
	}
	t.Render()
	fmt.Print(b.String())
	return nil
}

func (a *app) showLeaders(ctx context.Context) error {
	if a.sessionKey == 0 {
		return fmt.Errorf("collect a session first")
	}
	rows, err := a.collector.GetLeadersHistory(ctx, a.sessionKey)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no leadership data")
		return nil
	}
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TIME", "LEADER", "CHANGED", "HELD FOR"})
	for _, row := range rows {
		changed := ""
		if row.LeaderChanged {
			changed = "yes"
		}
		t.AppendRow(table.Row{
			row.Date.Format("15:04:05"),
			row.DriverNumber,
			changed,
			helper.FormatOptionalSeconds(row.Duration),
		})
	}
	t.Render()
	fmt.Print(b.String())
	return nil
}

func (a *app) showTeams(ctx context.Context) error {
	if a.sessionKey == 0 {
		return fmt.Errorf("collect a session first")
	}
	teams := a.collector.GetTeamsSummary(ctx, a.sessionKey)
	if len(teams) == 0 {
		fmt.Println("no driver data")
		return nil
	}
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"TEAM", "DRIVERS", "ACRONYMS", "COUNTRIES"})
	for _, team := range teams {
		t.AppendRow(table.Row{team.TeamName, team.DriverCount, team.DriverAcronyms, team.Countries})
	}
	t.Render()
	fmt.Print(b.String())
	return nil
}

func (a *app) showConsistency(ctx context.Context) error {
	if a.sessionKey == 0 {
		return fmt.Errorf("collect a session first")
	}
	entries, err := a.collector.GetConsistencyAnalysis(ctx, a.sessionKey)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no position data")
		return nil
	}
	var b bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&b)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"NUM", "INDEX", "BEST", "WORST", "RECORDS"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.DriverNumber, e.ConsistencyIndex, e.BestPosition, e.WorstPosition, e.TotalRecords})
	}
	t.Render()
	fmt.Print(b.String())
	return nil
}

func (a *app) exportRecords(format, name string) error {
	if len(a.records) == 0 {
		return fmt.Errorf("collect a session first")
	}
	if name == "" {
		first := a.records[0]
		name = strings.ReplaceAll(
			fmt.Sprintf("%s_%d_%s", first.CountryName, first.Year, first.SessionName), " ", "_")
	}

	var path string
	var err error
	switch format {
	case "csv":
		path, err = a.exporter.ToCSV(a.records, name)
	case "json":
		path, err = a.exporter.ToJSON(a.records, name)
	default:
		return fmt.Errorf("unknown format %q, want csv or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("saved to %s\n", path)
	return nil
}

func (a *app) setAvgLap(value string) error {
	avg, err := strconv.ParseFloat(value, 64)
	if err != nil || avg <= 0 {
		return fmt.Errorf("invalid lap duration %q", value)
	}
	a.collector.AvgLapSeconds = avg
	return a.savePrefs()
}

func (a *app) setOutputDir(dir string) error {
	a.exporter.OutputDir = dir
	return a.savePrefs()
}

func (a *app) savePrefs() error {
	return a.prefs.Save(settings.Preferences{
		AvgLapSeconds: a.collector.AvgLapSeconds,
		OutputDir:     a.exporter.OutputDir,
	})
}
