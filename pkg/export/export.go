// Package export writes a consolidated record set to disk.
package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"f1datacollector/pkg/model"

	"github.com/pkg/errors"
)

// DefaultOutputDir is where exports land unless configured otherwise.
const DefaultOutputDir = "./data/outputs"

var csvHeader = []string{
	"session_key", "session_name", "session_type", "country_name",
	"circuit_name", "year", "session_date",
	"driver_number", "driver_name", "driver_acronym", "team_name",
	"team_colour", "country_code", "headshot_url",
	"position", "timestamp", "lap_number", "lap_estimated",
	"meeting_key", "seconds_from_start",
}

// Exporter serializes consolidated records into a target directory.
type Exporter struct {
	OutputDir string
}

func New(outputDir string) Exporter {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return Exporter{OutputDir: outputDir}
}

// ToCSV writes the records as tabular text and returns the resolved path.
func (e Exporter) ToCSV(records []model.ConsolidatedRecord, filename string) (string, error) {
	path, err := e.resolve(filename, ".csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return "", errors.Wrap(err, "writing csv header")
	}
	for _, r := range records {
		if err := w.Write(csvRow(r)); err != nil {
			return "", errors.Wrap(err, "writing csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flushing csv")
	}
	return path, nil
}

// ToJSON writes the records as structured text and returns the resolved path.
func (e Exporter) ToJSON(records []model.ConsolidatedRecord, filename string) (string, error) {
	path, err := e.resolve(filename, ".json")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding records")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}

func (e Exporter) resolve(filename, ext string) (string, error) {
	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", e.OutputDir)
	}
	if !strings.HasSuffix(filename, ext) {
		filename += ext
	}
	return filepath.Join(e.OutputDir, filename), nil
}

func csvRow(r model.ConsolidatedRecord) []string {
	sessionDate := ""
	if r.SessionDate != nil {
		sessionDate = r.SessionDate.Format(time.RFC3339)
	}
	lap := ""
	if r.LapNumber != nil {
		lap = strconv.Itoa(*r.LapNumber)
	}
	return []string{
		strconv.Itoa(r.SessionKey),
		r.SessionName,
		r.SessionType,
		r.CountryName,
		r.CircuitName,
		strconv.Itoa(r.Year),
		sessionDate,
		strconv.Itoa(r.DriverNumber),
		r.DriverName,
		r.DriverAcronym,
		r.TeamName,
		r.TeamColour,
		r.CountryCode,
		r.HeadshotURL,
		strconv.Itoa(r.Position),
		r.Timestamp.Format(time.RFC3339Nano),
		lap,
		strconv.FormatBool(r.LapEstimated),
		strconv.Itoa(r.MeetingKey),
		strconv.FormatFloat(r.SecondsFromStart, 'f', 3, 64),
	}
}
