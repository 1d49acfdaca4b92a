package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
)

type TimeRange string

const (
	AllTime     TimeRange = "allTime"
	LastWeek    TimeRange = "lastWeek"
	LastMonth   TimeRange = "lastMonth"
	Last3Months TimeRange = "last3Months"
	Last6Months TimeRange = "last6Months"
	Year        TimeRange = "year"
)

var TimeRanges = []TimeRange{AllTime, LastWeek, LastMonth, Last3Months, Last6Months, Year}

func ParseTimeRange(value string) (TimeRange, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return AllTime, nil
	}
	for _, r := range TimeRanges {
		if strings.EqualFold(string(r), trimmed) {
			return r, nil
		}
	}
	return AllTime, fmt.Errorf("unknown time range %q", value)
}

func (r TimeRange) Label() string {
	switch r {
	case LastWeek:
		return "Last week"
	case LastMonth:
		return "Last month"
	case Last3Months:
		return "Last 3 months"
	case Last6Months:
		return "Last 6 months"
	case Year:
		return "Year"
	default:
		return "All time"
	}
}

// Next cycles through TimeRanges in order.
func (r TimeRange) Next() TimeRange {
	for i, candidate := range TimeRanges {
		if candidate == r {
			return TimeRanges[(i+1)%len(TimeRanges)]
		}
	}
	return AllTime
}

// Window is a half-open span of whole calendar days: [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Days() int {
	return max(0, dates.DaysBetween(w.Start, w.End))
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WindowFor resolves a time range relative to now. Every range ends after
// today except a past year, which ends at the following January 1. AllTime
// starts at the earliest activity day, or today when there is none.
func WindowFor(r TimeRange, now time.Time, year int, earliest time.Time) Window {
	today := dates.StartOfDay(now)
	tomorrow := dates.AddDays(today, 1)

	switch r {
	case LastWeek:
		return Window{Start: dates.AddDays(tomorrow, -7), End: tomorrow}
	case LastMonth:
		return Window{Start: tomorrow.AddDate(0, -1, 0), End: tomorrow}
	case Last3Months:
		return Window{Start: tomorrow.AddDate(0, -3, 0), End: tomorrow}
	case Last6Months:
		return Window{Start: tomorrow.AddDate(0, -6, 0), End: tomorrow}
	case Year:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(1, 0, 0)
		if end.After(tomorrow) {
			end = tomorrow
		}
		if end.Before(start) {
			end = start
		}
		return Window{Start: start, End: end}
	default:
		start := today
		if !earliest.IsZero() && earliest.Before(start) {
			start = dates.StartOfDay(earliest)
		}
		return Window{Start: start, End: tomorrow}
	}
}

func Earliest(timestamps []time.Time) time.Time {
	var earliest time.Time
	for _, ts := range timestamps {
		if earliest.IsZero() || ts.Before(earliest) {
			earliest = ts
		}
	}
	return earliest
}

func InWindow(timestamps []time.Time, window Window) []time.Time {
	result := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if window.Contains(ts) {
			result = append(result, ts)
		}
	}
	return result
}
