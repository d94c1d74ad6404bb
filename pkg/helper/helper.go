package helper

import (
	"fmt"
	"strings"
)

// method to convert from seconds to minutes:seconds:milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds / 60)
	seconds = seconds - float64(minutes*60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, int(seconds), milliseconds)
}

func SecondsToHoursAndMinutes(seconds float64) string {
	if seconds <= 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	seconds = seconds - float64(hours*3600)
	minutes := int(seconds / 60)
	return fmt.Sprintf("%02dh %02dm", hours, minutes)
}

// FormatDelta renders a signed position change, e.g. "+3", "-2" or "0".
func FormatDelta(delta int) string {
	if delta > 0 {
		return fmt.Sprintf("+%d", delta)
	}
	return fmt.Sprintf("%d", delta)
}

// FormatOptionalSeconds renders a duration in seconds, or "-" when absent.
func FormatOptionalSeconds(seconds *float64) string {
	if seconds == nil {
		return "-"
	}
	return SecondsToMinutes(*seconds)
}

// GetDriverCodeName reads a name with possible surname and returns a short
// uppercase code, e.g. "Max Verstappen" -> "MVE".
func GetDriverCodeName(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Split(name, " ")
	code := string(words[0][0])
	if len(words) > 1 && len(words[1]) >= 2 {
		code += words[1][:2]
	} else if len(words[0]) > 2 {
		code += words[0][1:3]
	} else {
		code += words[0]
	}
	return strings.ToUpper(code)
}
