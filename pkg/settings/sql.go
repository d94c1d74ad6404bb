package settings

import (
	"database/sql"
	"fmt"
	"strings"
)

func buildCreatePreferencesTable() string {
	return `CREATE TABLE IF NOT EXISTS preferences (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL);`
}

func buildSelectPreferencesCommand() (string, func(*sql.Rows) (map[string]string, error)) {
	fields := "name, value"
	return fmt.Sprintf(`SELECT %s FROM preferences`, fields), processSelectPreferencesRows
}

func processSelectPreferencesRows(rows *sql.Rows) (map[string]string, error) {
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name string
		var value string
		err := rows.Scan(&name, &value)
		if err != nil {
			return values, err
		}
		values[name] = value
	}
	err := rows.Err()
	if err != nil {
		return values, err
	}
	return values, err
}

func buildUpsertPreferenceCommand(name, value string) string {
	fields := "name, value"
	values := fmt.Sprintf(`'%s', '%s'`, escape(name), escape(value))
	return fmt.Sprintf(`INSERT OR REPLACE INTO preferences (%s) VALUES (%s)`, fields, values)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
