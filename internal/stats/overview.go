package stats

import (
	"time"

	"github.com/Joseda-hg/lazygoals/internal/model"
)

type SourceSummary struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Kind          model.OwnerKind `json:"kind"`
	DaysWorked    int             `json:"days_worked"`
	DaysRemaining int             `json:"days_remaining,omitempty"`
	Completed     bool            `json:"completed"`
	Summary       Summary         `json:"summary"`
}

// Overview is everything the statistics screens render for one time range.
type Overview struct {
	Range        TimeRange       `json:"range"`
	Year         int             `json:"year"`
	Window       Window          `json:"window"`
	Summary      Summary         `json:"summary"`
	Histogram    []MonthBins     `json:"histogram"`
	DayOfWeek    []Slice         `json:"day_of_week"`
	BySource     []Slice         `json:"by_source"`
	Sources      []SourceSummary `json:"sources"`
	GoalsDone    int             `json:"goals_done"`
	GoalsTracked int             `json:"goals_tracked"`
}

func BuildOverview(goals []model.Goal, habits []model.Habit, filter model.Filter, r TimeRange, now time.Time, year int, firstWeekday time.Weekday) Overview {
	timestamps := FilteredTimestamps(goals, habits, filter)
	window := WindowFor(r, now, year, Earliest(timestamps))
	inWindow := InWindow(timestamps, window)

	overview := Overview{
		Range:     r,
		Year:      year,
		Window:    window,
		Summary:   Summarize(timestamps, window, now),
		Histogram: WeeklyHistogram(timestamps, r, now, year, firstWeekday),
		DayOfWeek: DayOfWeekDistribution(inWindow, firstWeekday),
		BySource:  SourceDistribution(goals, habits, filter, window),
	}

	for _, goal := range filter.SelectedGoals(goals) {
		overview.GoalsTracked++
		if goal.IsCompleted() {
			overview.GoalsDone++
		}
		overview.Sources = append(overview.Sources, GoalSummary(goal, r, now, year))
	}
	for _, habit := range filter.SelectedHabits(habits) {
		overview.Sources = append(overview.Sources, HabitSummary(habit, r, now, year))
	}
	return overview
}

// GoalSummary scores a goal on its own activity plus its related habits.
func GoalSummary(goal model.Goal, r TimeRange, now time.Time, year int) SourceSummary {
	timestamps := goal.ActivityTimestamps()
	window := WindowFor(r, now, year, Earliest(timestamps))
	return SourceSummary{
		ID:            goal.ID,
		Title:         goal.Title,
		Kind:          model.OwnerGoal,
		DaysWorked:    goal.DaysWorked(),
		DaysRemaining: goal.DaysRemaining(now),
		Completed:     goal.IsCompleted(),
		Summary:       Summarize(timestamps, window, now),
	}
}

func HabitSummary(habit model.Habit, r TimeRange, now time.Time, year int) SourceSummary {
	timestamps := habit.Timestamps()
	window := WindowFor(r, now, year, Earliest(timestamps))
	return SourceSummary{
		ID:         habit.ID,
		Title:      habit.Title,
		Kind:       model.OwnerHabit,
		DaysWorked: habit.DaysWorked(),
		Summary:    Summarize(timestamps, window, now),
	}
}
