// Package dateutil parses the date formats accepted on the command line and
// resolves extraction windows.
package dateutil

import (
	"fmt"
	"time"
)

// DateFormat is the canonical window boundary format.
const DateFormat = "2006-01-02"

// layouts are tried in order when parsing a date argument.
var layouts = []string{
	DateFormat,
	"2006/01/02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Parse interprets s against the accepted layouts.
func Parse(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (expected a format like 2024-03-07)", s)
}

// Normalize parses s and renders it as YYYY-MM-DD. Time-of-day components
// are dropped: windows are whole days.
func Normalize(s string) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateFormat), nil
}

// Window resolves the extraction window from CLI arguments. No arguments
// selects yesterday through today in UTC; one argument runs from that date
// through today; two arguments are used as given after normalization.
func Window(args []string, now time.Time) (startDate, endDate string, err error) {
	today := now.UTC().Format(DateFormat)

	switch len(args) {
	case 0:
		yesterday := now.UTC().AddDate(0, 0, -1).Format(DateFormat)
		return yesterday, today, nil
	case 1:
		start, err := Normalize(args[0])
		if err != nil {
			return "", "", err
		}
		return start, today, nil
	case 2:
		start, err := Normalize(args[0])
		if err != nil {
			return "", "", err
		}
		end, err := Normalize(args[1])
		if err != nil {
			return "", "", err
		}
		return start, end, nil
	default:
		return "", "", fmt.Errorf("expected at most 2 date arguments, got %d", len(args))
	}
}
