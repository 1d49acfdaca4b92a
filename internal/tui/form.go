package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/db"
	"github.com/Joseda-hg/lazygoals/internal/model"
)

type formKind int

const (
	formGoal formKind = iota
	formHabit
	formEntry
	formMilestone
	formLink
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldToggle
	fieldPicker
)

type formField struct {
	Label string
	Value string
	Kind  fieldKind
}

// Field positions per form kind.
const (
	goalTitle = iota
	goalDeadline
	goalNotes
	goalPrivate
)

const (
	habitTitle = iota
	habitNotes
	habitPrivate
)

const (
	entrySource = iota
	entryTime
	entryText
)

const (
	milestoneText = iota
	milestoneCounts
)

const linkHabit = 0

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func buildGoalFields(goal *model.Goal, now time.Time) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Deadline (YYYY-MM-DD)"},
		{Label: "Notes"},
		{Label: "Private (space)", Kind: fieldToggle, Value: yesNo(false)},
	}
	if goal == nil {
		fields[goalDeadline].Value = now.AddDate(0, 1, 0).Format("2006-01-02")
		return fields
	}
	fields[goalTitle].Value = goal.Title
	fields[goalDeadline].Value = goal.Deadline.Format("2006-01-02")
	fields[goalNotes].Value = goal.Notes
	fields[goalPrivate].Value = yesNo(goal.Private)
	return fields
}

func buildHabitFields(habit *model.Habit) []formField {
	fields := []formField{
		{Label: "Title"},
		{Label: "Notes"},
		{Label: "Private (space)", Kind: fieldToggle, Value: yesNo(false)},
	}
	if habit == nil {
		return fields
	}
	fields[habitTitle].Value = habit.Title
	fields[habitNotes].Value = habit.Notes
	fields[habitPrivate].Value = yesNo(habit.Private)
	return fields
}

func buildEntryFields(entry *model.JournalEntry, now time.Time) []formField {
	fields := []formField{
		{Label: "Source (space/←→)", Kind: fieldPicker},
		{Label: "Time (HH:MM)", Value: now.Format("15:04")},
		{Label: "Text"},
	}
	if entry == nil {
		return fields
	}
	fields[entryTime].Value = entry.Timestamp.Format("15:04")
	fields[entryText].Value = entry.Text
	return fields
}

func buildMilestoneFields(milestone *model.Milestone) []formField {
	fields := []formField{
		{Label: "Text"},
		{Label: "Counts toward completion (space)", Kind: fieldToggle, Value: yesNo(false)},
	}
	if milestone == nil {
		return fields
	}
	fields[milestoneText].Value = milestone.Text
	fields[milestoneCounts].Value = yesNo(milestone.CountsTowardCompletion)
	return fields
}

func buildLinkFields() []formField {
	return []formField{
		{Label: "Habit (space/←→)", Kind: fieldPicker},
	}
}

func parseGoalFields(fields []formField) (db.GoalInput, error) {
	deadline, err := parseDeadline(fields[goalDeadline].Value)
	if err != nil {
		return db.GoalInput{}, err
	}
	return db.GoalInput{
		Title:    strings.TrimSpace(fields[goalTitle].Value),
		Deadline: deadline,
		Notes:    strings.TrimSpace(fields[goalNotes].Value),
		Private:  fields[goalPrivate].Value == yesNo(true),
	}, nil
}

func parseHabitFields(fields []formField) db.HabitInput {
	return db.HabitInput{
		Title:   strings.TrimSpace(fields[habitTitle].Value),
		Notes:   strings.TrimSpace(fields[habitNotes].Value),
		Private: fields[habitPrivate].Value == yesNo(true),
	}
}

// parseEntryTime places the HH:MM clock value on day.
func parseEntryTime(day time.Time, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	start := dates.StartOfDay(day)
	if trimmed == "" {
		return start, nil
	}
	clock, err := time.Parse("15:04", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time")
	}
	return time.Date(start.Year(), start.Month(), start.Day(), clock.Hour(), clock.Minute(), 0, 0, start.Location()), nil
}

func parseDeadline(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, model.ErrDeadlineRequired
	}
	parsed, ok := dates.ParseDay(trimmed, time.Local)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid deadline")
	}
	return parsed, nil
}
