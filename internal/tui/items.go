package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/report"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

// gocui interprets ANSI escapes itself, so colour is forced on whatever
// stdout detection decided.
var (
	activeDayColor = forcedColor(color.FgGreen)
	headingColor   = forcedColor(color.Bold)
)

func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// sourceOption is a goal or habit offered by a picker field.
type sourceOption struct {
	Owner model.Owner
	Label string
}

func sourceOptions(goals []model.Goal, habits []model.Habit) []sourceOption {
	options := make([]sourceOption, 0, len(goals)+len(habits))
	for _, goal := range goals {
		options = append(options, sourceOption{Owner: model.GoalOwner(goal.ID), Label: "Goal: " + goal.Title})
	}
	for _, habit := range habits {
		options = append(options, sourceOption{Owner: model.HabitOwner(habit.ID), Label: "Habit: " + habit.Title})
	}
	return options
}

func habitOptions(habits []model.Habit) []sourceOption {
	options := make([]sourceOption, 0, len(habits))
	for _, habit := range habits {
		options = append(options, sourceOption{Owner: model.HabitOwner(habit.ID), Label: habit.Title})
	}
	return options
}

func optionIndex(options []sourceOption, owner model.Owner) int {
	for i, option := range options {
		if option.Owner == owner {
			return i
		}
	}
	return 0
}

func cycleIndex(index, delta, length int) int {
	if length == 0 {
		return 0
	}
	return ((index+delta)%length + length) % length
}

func filterMarker(selected bool) string {
	if selected {
		return "x"
	}
	return " "
}

func formatGoalSummary(goal model.Goal, now time.Time) string {
	progress := fmt.Sprintf("%3.0f%%", goal.CompletionProgress()*100)
	if goal.IsCompleted() {
		progress = "done"
	}
	return fmt.Sprintf("%s | %s | %dd worked | %s", goal.Title, humanize.RelTime(goal.Deadline, dates.StartOfDay(now), "overdue", "left"), goal.DaysWorked(), progress)
}

func formatHabitSummary(habit model.Habit, now time.Time) string {
	streak := stats.CurrentStreak(habit.Timestamps(), now)
	return fmt.Sprintf("%s | %dd worked | streak %d", habit.Title, habit.DaysWorked(), streak)
}

func formatMilestone(milestone model.Milestone) string {
	mark := "[ ]"
	if milestone.Completed {
		mark = "[x]"
	}
	criterion := ""
	if milestone.CountsTowardCompletion {
		criterion = " *"
	}
	return fmt.Sprintf("%s %s%s", mark, milestone.Text, criterion)
}

func formatJournalEntry(entry stats.Entry) string {
	return fmt.Sprintf("%s %s: %s | %s", entry.Timestamp.Format("15:04"), entry.SourceType, entry.SourceName, strings.TrimSpace(entry.Text))
}

// calendarCell renders one grid cell four columns wide: brackets mark the
// selected day and green marks days with journal entries.
func calendarCell(day time.Time, selected bool, active bool) string {
	if day.IsZero() {
		return "    "
	}
	number := fmt.Sprintf("%2d", day.Day())
	if active {
		number = activeDayColor.Sprint(number)
	}
	if selected {
		return "[" + number + "]"
	}
	return " " + number + " "
}

func statsLines(overview stats.Overview) []string {
	heading := overview.Range.Label()
	if overview.Range == stats.Year {
		heading = fmt.Sprintf("%s %d", heading, overview.Year)
	}
	summary := overview.Summary
	lines := []string{
		headingColor.Sprint(heading),
		fmt.Sprintf("Entries: %d | Days active: %d/%d | Consistency: %d%%", summary.TotalEntries, summary.DaysActive, summary.WindowDays, summary.ConsistencyRate),
		fmt.Sprintf("Streak: %d current | %d longest | Goals done: %d/%d", summary.CurrentStreak, summary.LongestStreak, overview.GoalsDone, overview.GoalsTracked),
		"",
	}
	lines = append(lines, strings.Split(report.Histogram(overview.Histogram), "\n")...)
	lines = append(lines, "")
	for _, slice := range overview.DayOfWeek {
		lines = append(lines, fmt.Sprintf("%s %s %d", slice.Label, report.Bar(slice.Percent, 100, 12), slice.Count))
	}
	if len(overview.BySource) > 0 {
		lines = append(lines, "")
		for _, slice := range overview.BySource {
			lines = append(lines, fmt.Sprintf("%5.1f%% %s", slice.Percent, slice.Label))
		}
	}
	return lines
}
