package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Record is a raw field-value row as returned by the API. It only exists at
// the fetch boundary; everything past the normalizers works with typed
// entities.
type Record map[string]any

var utcOffsetSuffix = regexp.MustCompile(`[+-]\d{2}:?\d{2}$`)

func (r Record) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (r Record) integer(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return 0
}

func (r Record) optInt(key string) *int {
	if v, ok := r[key]; !ok || v == nil {
		return nil
	}
	n := r.integer(key)
	return &n
}

// parseTimestamp normalizes ISO-8601 text that may carry a trailing `Z` or a
// numeric UTC offset. It first strips the suffix and tries a simplified
// layout, then falls back to a full RFC3339 parse. Both forms resolve to the
// same UTC instant. A value that survives neither attempt is a hard error,
// never a silent default.
func parseTimestamp(field, value string) (time.Time, error) {
	trimmed := value
	if strings.HasSuffix(trimmed, "Z") {
		trimmed = strings.TrimSuffix(trimmed, "Z")
	} else if loc := utcOffsetSuffix.FindStringIndex(trimmed); loc != nil && loc[0] > 10 {
		trimmed = trimmed[:loc[0]]
	}

	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", trimmed, time.UTC)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, errors.Errorf("unparsable timestamp in %q: %q", field, value)
}

// optTimestamp parses an optional timestamp field. A missing or empty value
// is absent, a present but unparsable one is an error.
func (r Record) optTimestamp(key string) (*time.Time, error) {
	value := r.str(key)
	if value == "" {
		return nil, nil
	}
	t, err := parseTimestamp(key, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
