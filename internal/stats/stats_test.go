package stats

import (
	"testing"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/model"
)

func ts(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func TestStreaks(t *testing.T) {
	timestamps := []time.Time{
		ts(2026, time.January, 1, 9),
		ts(2026, time.January, 2, 9),
		ts(2026, time.January, 2, 18),
		ts(2026, time.January, 3, 9),
		ts(2026, time.January, 5, 9),
	}

	if got := LongestStreak(timestamps); got != 3 {
		t.Fatalf("expected longest streak 3, got %d", got)
	}
	if got := CurrentStreak(timestamps, ts(2026, time.January, 5, 21)); got != 1 {
		t.Fatalf("expected current streak 1, got %d", got)
	}
	if got := CurrentStreak(timestamps, ts(2026, time.January, 6, 8)); got != 1 {
		t.Fatalf("expected streak to survive until the day after, got %d", got)
	}
	if got := CurrentStreak(timestamps, ts(2026, time.January, 7, 8)); got != 0 {
		t.Fatalf("expected streak to reset after a missed day, got %d", got)
	}
	if got := CurrentStreak(timestamps[:4], ts(2026, time.January, 4, 8)); got != 3 {
		t.Fatalf("expected streak of 3 ending yesterday, got %d", got)
	}
	if CurrentStreak(nil, ts(2026, time.January, 4, 8)) != 0 || LongestStreak(nil) != 0 {
		t.Fatalf("expected empty input to produce zero streaks")
	}
}

func TestConsistencyRate(t *testing.T) {
	now := ts(2026, time.October, 19, 12)
	window := WindowFor(LastWeek, now, now.Year(), time.Time{})
	if window.Days() != 7 {
		t.Fatalf("expected 7 day window, got %d", window.Days())
	}

	timestamps := []time.Time{
		ts(2026, time.October, 13, 9),
		ts(2026, time.October, 15, 9),
		ts(2026, time.October, 15, 10),
		ts(2026, time.October, 19, 7),
		ts(2026, time.October, 1, 7),
	}
	if got := ConsistencyRate(timestamps, window); got != 42 {
		t.Fatalf("expected 42%%, got %d", got)
	}
	if got := ConsistencyRate(timestamps, Window{Start: now, End: now}); got != 0 {
		t.Fatalf("expected empty window to yield 0, got %d", got)
	}
}

func TestWindowForRanges(t *testing.T) {
	now := ts(2026, time.October, 19, 12)

	all := WindowFor(AllTime, now, 2026, ts(2026, time.October, 10, 22))
	if all.Days() != 10 {
		t.Fatalf("expected all-time window to count today, got %d days", all.Days())
	}
	if empty := WindowFor(AllTime, now, 2026, time.Time{}); empty.Days() != 1 {
		t.Fatalf("expected all-time window without entries to be just today, got %d", empty.Days())
	}

	past := WindowFor(Year, now, 2024, time.Time{})
	if past.Days() != 366 {
		t.Fatalf("expected full leap year, got %d", past.Days())
	}
	current := WindowFor(Year, now, 2026, time.Time{})
	if current.Days() != now.YearDay() {
		t.Fatalf("expected elapsed days %d, got %d", now.YearDay(), current.Days())
	}
	if future := WindowFor(Year, now, 2027, time.Time{}); future.Days() != 0 {
		t.Fatalf("expected empty future year, got %d", future.Days())
	}

	month := WindowFor(LastMonth, now, 2026, time.Time{})
	if !month.Start.Equal(ts(2026, time.September, 20, 0)) {
		t.Fatalf("unexpected last month start %s", month.Start)
	}
}

func TestParseTimeRange(t *testing.T) {
	r, err := ParseTimeRange("last3months")
	if err != nil || r != Last3Months {
		t.Fatalf("expected last3Months, got %v (%v)", r, err)
	}
	if _, err := ParseTimeRange("fortnight"); err == nil {
		t.Fatalf("expected unknown range to fail")
	}
	if Year.Next() != AllTime {
		t.Fatalf("expected ranges to cycle")
	}
}

func TestWeeklyHistogramKeepsEmptyWeeks(t *testing.T) {
	// February 2026 runs Sunday the 1st through Saturday the 28th.
	timestamps := []time.Time{
		ts(2026, time.February, 9, 8),
		ts(2026, time.February, 10, 8),
		ts(2026, time.February, 14, 23),
	}
	months := WeeklyHistogramForMonths(timestamps, []time.Time{ts(2026, time.February, 1, 0)}, time.Sunday)
	if len(months) != 1 {
		t.Fatalf("expected 1 month, got %d", len(months))
	}
	want := []int{0, 3, 0, 0}
	if len(months[0].Weeks) != len(want) {
		t.Fatalf("expected %d weeks, got %d", len(want), len(months[0].Weeks))
	}
	for i, count := range want {
		if months[0].Weeks[i].Count != count {
			t.Fatalf("week %d: expected %d, got %d", i, count, months[0].Weeks[i].Count)
		}
	}
	if MaxBin(months) != 3 {
		t.Fatalf("expected max bin 3")
	}
}

func TestWeeklyHistogramMonthsPerRange(t *testing.T) {
	now := ts(2026, time.October, 19, 12)

	all := WeeklyHistogram(nil, AllTime, now, 2026, time.Sunday)
	if len(all) != 12 {
		t.Fatalf("expected trailing 12 months, got %d", len(all))
	}
	if !all[11].Month.Equal(ts(2026, time.October, 1, 0)) || !all[0].Month.Equal(ts(2025, time.November, 1, 0)) {
		t.Fatalf("unexpected month span %s..%s", all[0].Month, all[11].Month)
	}

	year := WeeklyHistogram(nil, Year, now, 2025, time.Sunday)
	if len(year) != 12 || year[0].Month.Month() != time.January {
		t.Fatalf("expected calendar year months, got %d", len(year))
	}

	week := WeeklyHistogram(nil, LastWeek, now, 2026, time.Sunday)
	if len(week) != 1 {
		t.Fatalf("expected last week to touch 1 month, got %d", len(week))
	}
}

func TestDayOfWeekDistribution(t *testing.T) {
	timestamps := []time.Time{
		ts(2026, time.October, 18, 9), // Sunday
		ts(2026, time.October, 19, 9), // Monday
		ts(2026, time.October, 12, 9), // Monday
	}
	slices := DayOfWeekDistribution(timestamps, time.Sunday)
	if len(slices) != 7 {
		t.Fatalf("expected 7 slices, got %d", len(slices))
	}
	if slices[0].Label != "Sun" || slices[0].Count != 1 {
		t.Fatalf("unexpected first slice %+v", slices[0])
	}
	if slices[1].Label != "Mon" || slices[1].Count != 2 {
		t.Fatalf("unexpected second slice %+v", slices[1])
	}
	if slices[0].Color == slices[6].Color {
		t.Fatalf("expected color intensity to vary by index")
	}

	empty := DayOfWeekDistribution(nil, time.Monday)
	if len(empty) != 7 || empty[0].Label != "Mon" || empty[0].Percent != 0 {
		t.Fatalf("unexpected empty distribution %+v", empty)
	}
}

func TestSourceDistributionOmitsEmptySources(t *testing.T) {
	window := Window{Start: ts(2026, time.January, 1, 0), End: ts(2027, time.January, 1, 0)}
	goal := model.Goal{
		ID:      "g1",
		Title:   "Marathon",
		Entries: []model.JournalEntry{{Timestamp: ts(2026, time.March, 1, 9)}},
		Habits: []model.Habit{
			{ID: "h1", Title: "Run", Entries: []model.JournalEntry{
				{Timestamp: ts(2026, time.March, 2, 9)},
				{Timestamp: ts(2026, time.March, 3, 9)},
			}},
			{ID: "h2", Title: "Stretch"},
		},
	}

	slices := SourceDistributionForGoal(goal, window)
	if len(slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(slices))
	}
	if slices[0].Label != "Run" || slices[0].Count != 2 || slices[1].Label != "Marathon" {
		t.Fatalf("expected slices sorted by count, got %+v", slices)
	}
}

func fixture() ([]model.Goal, []model.Habit) {
	day := ts(2026, time.May, 4, 0)
	run := model.Habit{ID: "h1", Title: "Run", GoalIDs: []string{"g1"}, Entries: []model.JournalEntry{
		{ID: "e2", Owner: model.HabitOwner("h1"), Timestamp: day.Add(7 * time.Hour), Text: "5k"},
	}}
	read := model.Habit{ID: "h2", Title: "Read"}
	goals := []model.Goal{
		{ID: "g1", Title: "Marathon", Habits: []model.Habit{run}, Entries: []model.JournalEntry{
			{ID: "e1", Owner: model.GoalOwner("g1"), Timestamp: day.Add(20 * time.Hour), Text: "X"},
		}},
		{ID: "g2", Title: "Learn Go"},
	}
	return goals, []model.Habit{run, read}
}

func TestJournalEntriesForDay(t *testing.T) {
	goals, habits := fixture()
	day := ts(2026, time.May, 4, 12)

	entries := JournalEntries(day, goals[:1], nil, model.AllOf(goals[:1], nil))
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "X" || entries[0].SourceType != "Goal" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}

	all := JournalEntries(day, goals, habits, model.AllOf(goals, habits))
	if len(all) != 2 || all[0].ID != "e1" || all[1].SourceType != "Habit" {
		t.Fatalf("expected newest-first entries, got %+v", all)
	}

	if len(JournalEntries(day, goals, habits, model.NewFilter())) != 0 {
		t.Fatalf("expected no entries with an empty filter")
	}
	if HasJournalEntries(ts(2026, time.May, 5, 12), goals, habits, model.AllOf(goals, habits)) {
		t.Fatalf("expected no entries on the next day")
	}
	if !HasJournalEntries(day, goals, habits, model.AllOf(goals, habits)) {
		t.Fatalf("expected entries on the day")
	}
}

func TestDailyProgress(t *testing.T) {
	goals, habits := fixture()
	day := ts(2026, time.May, 4, 12)

	if got := DailyProgress(day, goals, habits, model.NewFilter()); got != 0 {
		t.Fatalf("expected 0 with empty filter, got %v", got)
	}

	// g1 worked (own entry), g2 not, h2 standalone and idle; h1 is related to g1.
	if got := DailyProgress(day, goals, habits, model.AllOf(goals, habits)); got != 1.0/3.0 {
		t.Fatalf("expected 1/3, got %v", got)
	}

	// A related habit's entry satisfies its goal.
	onlyHabitDay := model.Goal{ID: "g1", Title: "Marathon", Habits: goals[0].Habits}
	filter := model.AllOf([]model.Goal{onlyHabitDay}, nil)
	if got := DailyProgress(day, []model.Goal{onlyHabitDay}, habits, filter); got != 1 {
		t.Fatalf("expected related habit to satisfy the goal, got %v", got)
	}

	// With g1 deselected, h1 becomes standalone.
	filter = model.AllOf(goals, habits)
	delete(filter.Goals, "g1")
	if got := DailyProgress(day, goals, habits, filter); got != 1.0/3.0 {
		t.Fatalf("expected 1/3 with h1 standalone, got %v", got)
	}
}

func TestBuildOverview(t *testing.T) {
	goals, habits := fixture()
	now := ts(2026, time.May, 5, 9)

	overview := BuildOverview(goals, habits, model.AllOf(goals, habits), AllTime, now, 2026, time.Sunday)
	if overview.Summary.TotalEntries != 2 {
		t.Fatalf("expected 2 entries, got %d", overview.Summary.TotalEntries)
	}
	if overview.Summary.CurrentStreak != 1 || overview.Summary.LongestStreak != 1 {
		t.Fatalf("unexpected streaks %+v", overview.Summary)
	}
	if overview.Summary.ConsistencyRate != 50 {
		t.Fatalf("expected 50%% consistency over 2 days, got %d", overview.Summary.ConsistencyRate)
	}
	if len(overview.Sources) != 4 || overview.GoalsTracked != 2 {
		t.Fatalf("unexpected sources %+v", overview.Sources)
	}
	if len(overview.BySource) != 2 {
		t.Fatalf("expected 2 non-empty sources, got %d", len(overview.BySource))
	}

	heatmap := MonthHeatmap(now, goals, habits, model.AllOf(goals, habits))
	if len(heatmap) != 31 || heatmap[3].Entries != 2 {
		t.Fatalf("unexpected heatmap %+v", heatmap[3])
	}
}
