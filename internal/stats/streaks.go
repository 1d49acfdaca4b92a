package stats

import (
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
)

// CurrentStreak counts consecutive active days ending at the most recent
// active day, provided that day is today or yesterday.
func CurrentStreak(timestamps []time.Time, now time.Time) int {
	days := dates.DistinctDays(timestamps)
	if len(days) == 0 {
		return 0
	}

	last := days[len(days)-1]
	gap := dates.DaysBetween(last, now)
	if gap < 0 || gap > 1 {
		return 0
	}

	streak := 1
	for i := len(days) - 1; i > 0; i-- {
		if dates.DaysBetween(days[i-1], days[i]) != 1 {
			break
		}
		streak++
	}
	return streak
}

func LongestStreak(timestamps []time.Time) int {
	days := dates.DistinctDays(timestamps)
	if len(days) == 0 {
		return 0
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if dates.DaysBetween(days[i-1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	return longest
}

// ConsistencyRate is the truncated percentage of days in the window with at
// least one entry.
func ConsistencyRate(timestamps []time.Time, window Window) int {
	total := window.Days()
	if total == 0 {
		return 0
	}
	active := len(dates.DistinctDays(InWindow(timestamps, window)))
	return active * 100 / total
}

type Summary struct {
	TotalEntries    int `json:"total_entries"`
	DaysActive      int `json:"days_active"`
	WindowDays      int `json:"window_days"`
	CurrentStreak   int `json:"current_streak"`
	LongestStreak   int `json:"longest_streak"`
	ConsistencyRate int `json:"consistency_rate"`
}

// Summarize reports window-scoped counts and rate. Streaks look at the full
// history since a streak that started before the window is still running.
func Summarize(timestamps []time.Time, window Window, now time.Time) Summary {
	inWindow := InWindow(timestamps, window)
	return Summary{
		TotalEntries:    len(inWindow),
		DaysActive:      len(dates.DistinctDays(inWindow)),
		WindowDays:      window.Days(),
		CurrentStreak:   CurrentStreak(timestamps, now),
		LongestStreak:   LongestStreak(timestamps),
		ConsistencyRate: ConsistencyRate(timestamps, window),
	}
}
