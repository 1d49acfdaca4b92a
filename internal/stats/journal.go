package stats

import (
	"sort"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/model"
)

// Entry is a journal entry tagged with the goal or habit it was logged on.
type Entry struct {
	model.JournalEntry
	SourceID   string `json:"source_id"`
	SourceName string `json:"source_name"`
	SourceType string `json:"source_type"`
}

func JournalEntries(day time.Time, goals []model.Goal, habits []model.Habit, filter model.Filter) []Entry {
	var result []Entry
	for _, goal := range filter.SelectedGoals(goals) {
		for _, entry := range goal.Entries {
			if dates.SameDay(entry.Timestamp, day) {
				result = append(result, Entry{JournalEntry: entry, SourceID: goal.ID, SourceName: goal.Title, SourceType: model.OwnerGoal.Label()})
			}
		}
	}
	for _, habit := range filter.SelectedHabits(habits) {
		for _, entry := range habit.Entries {
			if dates.SameDay(entry.Timestamp, day) {
				result = append(result, Entry{JournalEntry: entry, SourceID: habit.ID, SourceName: habit.Title, SourceType: model.OwnerHabit.Label()})
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result
}

func HasJournalEntries(day time.Time, goals []model.Goal, habits []model.Habit, filter model.Filter) bool {
	for _, goal := range filter.SelectedGoals(goals) {
		if hasEntryOn(goal.Entries, day) {
			return true
		}
	}
	for _, habit := range filter.SelectedHabits(habits) {
		if hasEntryOn(habit.Entries, day) {
			return true
		}
	}
	return false
}

// DailyProgress is the share of selected goals and standalone habits worked
// on that day. A goal counts as worked when it or one of its related habits
// has an entry. A habit is standalone when no selected goal is related to it.
func DailyProgress(day time.Time, goals []model.Goal, habits []model.Habit, filter model.Filter) float64 {
	selectedGoals := filter.SelectedGoals(goals)
	standalone := standaloneHabits(filter.SelectedHabits(habits), selectedGoals)

	total := len(selectedGoals) + len(standalone)
	if total == 0 {
		return 0
	}

	done := 0
	for _, goal := range selectedGoals {
		if goalWorkedOn(goal, day) {
			done++
		}
	}
	for _, habit := range standalone {
		if hasEntryOn(habit.Entries, day) {
			done++
		}
	}
	return float64(done) / float64(total)
}

type HeatmapDay struct {
	Date     time.Time `json:"date"`
	Entries  int       `json:"entries"`
	Progress float64   `json:"progress"`
}

// MonthHeatmap reports per-day entry counts and daily progress for every day
// of the month containing month.
func MonthHeatmap(month time.Time, goals []model.Goal, habits []model.Habit, filter model.Filter) []HeatmapDay {
	first := dates.StartOfMonth(month)
	total := dates.DaysInMonth(first)
	result := make([]HeatmapDay, 0, total)
	for i := 0; i < total; i++ {
		day := dates.AddDays(first, i)
		result = append(result, HeatmapDay{
			Date:     day,
			Entries:  len(JournalEntries(day, goals, habits, filter)),
			Progress: DailyProgress(day, goals, habits, filter),
		})
	}
	return result
}

// FilteredTimestamps gathers entry timestamps from every selected source.
func FilteredTimestamps(goals []model.Goal, habits []model.Habit, filter model.Filter) []time.Time {
	var timestamps []time.Time
	for _, goal := range filter.SelectedGoals(goals) {
		timestamps = append(timestamps, goal.Timestamps()...)
	}
	for _, habit := range filter.SelectedHabits(habits) {
		timestamps = append(timestamps, habit.Timestamps()...)
	}
	return timestamps
}

func goalWorkedOn(goal model.Goal, day time.Time) bool {
	if hasEntryOn(goal.Entries, day) {
		return true
	}
	for _, habit := range goal.Habits {
		if hasEntryOn(habit.Entries, day) {
			return true
		}
	}
	return false
}

func standaloneHabits(habits []model.Habit, goals []model.Goal) []model.Habit {
	result := make([]model.Habit, 0, len(habits))
	for _, habit := range habits {
		related := false
		for _, goal := range goals {
			if goal.RelatedTo(habit.ID) || habit.RelatedTo(goal.ID) {
				related = true
				break
			}
		}
		if !related {
			result = append(result, habit)
		}
	}
	return result
}

func hasEntryOn(entries []model.JournalEntry, day time.Time) bool {
	for _, entry := range entries {
		if dates.SameDay(entry.Timestamp, day) {
			return true
		}
	}
	return false
}
