package model

import (
	"strings"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
)

func (g Goal) Timestamps() []time.Time {
	return entryTimestamps(g.Entries)
}

// ActivityTimestamps includes entries logged on related habits.
func (g Goal) ActivityTimestamps() []time.Time {
	timestamps := entryTimestamps(g.Entries)
	for _, habit := range g.Habits {
		timestamps = append(timestamps, entryTimestamps(habit.Entries)...)
	}
	return timestamps
}

func (g Goal) DaysWorked() int {
	return len(dates.DistinctDays(g.ActivityTimestamps()))
}

func (g Goal) DaysRemaining(now time.Time) int {
	if g.Deadline.IsZero() {
		return 0
	}
	return max(0, dates.DaysBetween(now, g.Deadline))
}

func (g Goal) IsCompleted() bool {
	required := 0
	for _, milestone := range g.Milestones {
		if !milestone.CountsTowardCompletion {
			continue
		}
		required++
		if !milestone.Completed {
			return false
		}
	}
	return required > 0
}

// CompletionProgress is the share of completion-criterion milestones done.
func (g Goal) CompletionProgress() float64 {
	required, done := 0, 0
	for _, milestone := range g.Milestones {
		if !milestone.CountsTowardCompletion {
			continue
		}
		required++
		if milestone.Completed {
			done++
		}
	}
	if required == 0 {
		return 0
	}
	return float64(done) / float64(required)
}

func (g Goal) RelatedTo(habitID string) bool {
	for _, habit := range g.Habits {
		if habit.ID == habitID {
			return true
		}
	}
	return false
}

func (h Habit) Timestamps() []time.Time {
	return entryTimestamps(h.Entries)
}

func (h Habit) DaysWorked() int {
	return len(dates.DistinctDays(h.Timestamps()))
}

func (h Habit) RelatedTo(goalID string) bool {
	for _, id := range h.GoalIDs {
		if id == goalID {
			return true
		}
	}
	return false
}

// SetCompleted flips the completed flag and keeps CompletedAt in step with it.
func (m *Milestone) SetCompleted(done bool, now time.Time) {
	m.Completed = done
	if !done {
		m.CompletedAt = nil
		return
	}
	if m.CompletedAt == nil {
		completedAt := now
		m.CompletedAt = &completedAt
	}
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	return nil
}

func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrTextRequired
	}
	return nil
}

func entryTimestamps(entries []JournalEntry) []time.Time {
	timestamps := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		timestamps = append(timestamps, entry.Timestamp)
	}
	return timestamps
}
