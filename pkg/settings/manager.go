// Package settings persists the user-tunable knobs of the collector in a
// small sqlite database.
package settings

import (
	"database/sql"
	"log"
	"strconv"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultDbName = "./f1datacollector.db"

	keyAvgLapSeconds = "avg_lap_seconds"
	keyOutputDir     = "output_dir"
)

// Preferences are the persisted tunables: the average lap duration feeding
// the lap estimation and the directory exports land in.
type Preferences struct {
	AvgLapSeconds float64
	OutputDir     string
}

func DefaultPreferences() Preferences {
	return Preferences{
		AvgLapSeconds: 90,
		OutputDir:     "./data/outputs",
	}
}

type Manager struct {
	db *sql.DB
	mu sync.Mutex
}

func NewManager(dbName string) (*Manager, error) {
	if dbName == "" {
		dbName = DefaultDbName
	}
	db, err := sql.Open("sqlite3", dbName)
	if err != nil {
		log.Printf("error opening database: %s\n", err)
		return nil, err
	}

	initTableStmt := buildCreatePreferencesTable()

	_, err = db.Exec(initTableStmt)
	if err != nil {
		log.Printf("error init database: %s\n", err)
		return nil, err
	}

	return &Manager{
		db: db,
		mu: sync.Mutex{},
	}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.db.Close()
}

// Load returns the stored preferences, falling back to the defaults for any
// value never saved.
func (m *Manager) Load() (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := DefaultPreferences()

	sqlCmd, read := buildSelectPreferencesCommand()
	rows, err := m.db.Query(sqlCmd)
	if err != nil {
		return p, err
	}
	values, err := read(rows)
	if err != nil {
		return p, err
	}

	if v, ok := values[keyAvgLapSeconds]; ok {
		if avg, err := strconv.ParseFloat(v, 64); err == nil && avg > 0 {
			p.AvgLapSeconds = avg
		}
	}
	if v, ok := values[keyOutputDir]; ok && v != "" {
		p.OutputDir = v
	}
	return p, nil
}

// Save stores the preferences.
func (m *Manager) Save(p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := map[string]string{
		keyAvgLapSeconds: strconv.FormatFloat(p.AvgLapSeconds, 'f', -1, 64),
		keyOutputDir:     p.OutputDir,
	}
	for name, value := range values {
		_, err := m.db.Exec(buildUpsertPreferenceCommand(name, value))
		if err != nil {
			log.Printf("error updating database: %s\n", err)
			return err
		}
	}
	return nil
}
