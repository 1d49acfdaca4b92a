package stats

import (
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
)

type WeekBin struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

type MonthBins struct {
	Month time.Time `json:"month"`
	Weeks []WeekBin `json:"weeks"`
}

// HistogramMonths picks the months a histogram covers: the trailing twelve
// months for AllTime, the calendar year for Year, and the months the window
// touches otherwise.
func HistogramMonths(r TimeRange, now time.Time, year int) []time.Time {
	switch r {
	case AllTime:
		current := dates.StartOfMonth(now)
		return dates.Months(current.AddDate(0, -11, 0), current.AddDate(0, 1, 0))
	case Year:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		return dates.Months(start, start.AddDate(1, 0, 0))
	default:
		window := WindowFor(r, now, year, time.Time{})
		return dates.Months(window.Start, window.End)
	}
}

func WeeklyHistogram(timestamps []time.Time, r TimeRange, now time.Time, year int, firstWeekday time.Weekday) []MonthBins {
	return WeeklyHistogramForMonths(timestamps, HistogramMonths(r, now, year), firstWeekday)
}

// WeeklyHistogramForMonths splits each month into calendar weeks and counts
// the timestamps falling inside each seven-day window. Empty weeks are kept.
func WeeklyHistogramForMonths(timestamps []time.Time, months []time.Time, firstWeekday time.Weekday) []MonthBins {
	result := make([]MonthBins, 0, len(months))
	for _, month := range months {
		weeks := dates.WeeksOfMonth(month, firstWeekday)
		bins := make([]WeekBin, 0, len(weeks))
		for _, start := range weeks {
			window := Window{Start: start, End: dates.AddDays(start, 7)}
			count := 0
			for _, ts := range timestamps {
				if window.Contains(ts) {
					count++
				}
			}
			bins = append(bins, WeekBin{Start: start, Count: count})
		}
		result = append(result, MonthBins{Month: dates.StartOfMonth(month), Weeks: bins})
	}
	return result
}

// MaxBin is the largest week count, used to scale bars.
func MaxBin(months []MonthBins) int {
	largest := 0
	for _, month := range months {
		for _, week := range month.Weeks {
			largest = max(largest, week.Count)
		}
	}
	return largest
}
