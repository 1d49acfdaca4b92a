// Package dates holds the calendar arithmetic shared by the statistics engine,
// the calendar controller and the renderers. Every function is total: bad input
// degrades to a sensible value instead of an error.
package dates

import (
	"sort"
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

func StartOfDay(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the start of the following day, the exclusive bound of t's day.
func EndOfDay(t time.Time) time.Time {
	return AddDays(StartOfDay(t), 1)
}

// AddDays moves by calendar days rather than 24h steps so DST shifts never
// land on the wrong day.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func StartOfWeek(t time.Time, firstWeekday time.Weekday) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) - int(firstWeekday) + 7) % 7
	return AddDays(day, -offset)
}

func StartOfMonth(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func StartOfYear(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// AddMonths shifts a month anchor. The day is pinned to the 1st so that
// January 31 plus one month is February, not March.
func AddMonths(t time.Time, n int) time.Time {
	return StartOfMonth(t).AddDate(0, n, 0)
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween counts calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	start := time.Date(ay, am, ad, 12, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 12, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func DaysInMonth(t time.Time) int {
	return StartOfMonth(t).AddDate(0, 1, -1).Day()
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear reports 366/365 for past years and the number of days elapsed so
// far, today included, for the current year. Future years have no days yet.
func DaysInYear(year int, now time.Time) int {
	switch {
	case year < now.Year():
		if IsLeapYear(year) {
			return 366
		}
		return 365
	case year == now.Year():
		return now.YearDay()
	default:
		return 0
	}
}

// DistinctDays returns the start of every calendar day touched by the given
// timestamps, ascending.
func DistinctDays(timestamps []time.Time) []time.Time {
	if len(timestamps) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(timestamps))
	days := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		key := ts.Format(dayLayout)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, StartOfDay(ts))
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

func ParseDay(value string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(dayLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Months lists the first day of every month overlapping [start, end).
func Months(start, end time.Time) []time.Time {
	if !end.After(start) {
		return nil
	}
	last := StartOfMonth(end.Add(-time.Nanosecond))
	var months []time.Time
	for month := StartOfMonth(start); !month.After(last); month = month.AddDate(0, 1, 0) {
		months = append(months, month)
	}
	return months
}

// WeeksOfMonth lists week starts from the week holding the 1st of the month
// through the week holding its last day.
func WeeksOfMonth(month time.Time, firstWeekday time.Weekday) []time.Time {
	first := StartOfMonth(month)
	lastDay := AddDays(first, DaysInMonth(first)-1)
	lastWeek := StartOfWeek(lastDay, firstWeekday)

	var weeks []time.Time
	for week := StartOfWeek(first, firstWeekday); !week.After(lastWeek); week = AddDays(week, 7) {
		weeks = append(weeks, week)
	}
	return weeks
}

// WeekdayOffset is the grid column of t's weekday when columns start at firstWeekday.
func WeekdayOffset(t time.Time, firstWeekday time.Weekday) int {
	return (int(t.Weekday()) - int(firstWeekday) + 7) % 7
}

func Weekdays(firstWeekday time.Weekday) []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, time.Weekday((int(firstWeekday)+i)%7))
	}
	return days
}

func WeekdayNames(firstWeekday time.Weekday) []string {
	names := make([]string, 0, 7)
	for _, day := range Weekdays(firstWeekday) {
		names = append(names, ShortWeekday(day))
	}
	return names
}

func ShortWeekday(day time.Weekday) string {
	return day.String()[:3]
}

// ParseWeekday accepts full or three-letter English names; anything else is Sunday.
func ParseWeekday(value string) time.Weekday {
	lower := strings.ToLower(strings.TrimSpace(value))
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if lower == name || lower == name[:3] {
			return day
		}
	}
	return time.Sunday
}
