package model

import (
	"errors"
	"testing"
	"time"
)

func at(month time.Month, day, hour int) time.Time {
	return time.Date(2026, month, day, hour, 0, 0, 0, time.UTC)
}

func TestGoalDaysWorkedIncludesRelatedHabits(t *testing.T) {
	goal := Goal{
		ID: "g1",
		Entries: []JournalEntry{
			{Timestamp: at(time.March, 1, 9)},
			{Timestamp: at(time.March, 1, 20)},
			{Timestamp: at(time.March, 2, 9)},
		},
		Habits: []Habit{{
			ID: "h1",
			Entries: []JournalEntry{
				{Timestamp: at(time.March, 2, 7)},
				{Timestamp: at(time.March, 4, 7)},
			},
		}},
	}

	if got := goal.DaysWorked(); got != 3 {
		t.Fatalf("expected 3 days worked, got %d", got)
	}
	if got := goal.Habits[0].DaysWorked(); got != 2 {
		t.Fatalf("expected habit to have 2 days worked, got %d", got)
	}
}

func TestGoalDaysRemainingNeverNegative(t *testing.T) {
	goal := Goal{Deadline: at(time.March, 10, 0)}

	if got := goal.DaysRemaining(at(time.March, 7, 23)); got != 3 {
		t.Fatalf("expected 3 days remaining, got %d", got)
	}
	if got := goal.DaysRemaining(at(time.March, 12, 8)); got != 0 {
		t.Fatalf("expected 0 days remaining after deadline, got %d", got)
	}
}

func TestGoalIsCompleted(t *testing.T) {
	t.Run("no criterion milestones", func(t *testing.T) {
		goal := Goal{Milestones: []Milestone{{Text: "optional", Completed: true}}}
		if goal.IsCompleted() {
			t.Fatalf("expected goal without completion criteria to be incomplete")
		}
	})

	t.Run("criterion pending", func(t *testing.T) {
		goal := Goal{Milestones: []Milestone{
			{Text: "a", CountsTowardCompletion: true, Completed: true},
			{Text: "b", CountsTowardCompletion: true},
			{Text: "c", Completed: true},
		}}
		if goal.IsCompleted() {
			t.Fatalf("expected goal with a pending criterion to be incomplete")
		}
		if got := goal.CompletionProgress(); got != 0.5 {
			t.Fatalf("expected progress 0.5, got %v", got)
		}
	})

	t.Run("all criteria done", func(t *testing.T) {
		goal := Goal{Milestones: []Milestone{
			{Text: "a", CountsTowardCompletion: true, Completed: true},
			{Text: "b"},
		}}
		if !goal.IsCompleted() {
			t.Fatalf("expected goal to be completed")
		}
	})
}

func TestMilestoneSetCompletedKeepsDateInStep(t *testing.T) {
	milestone := Milestone{Text: "ship"}
	now := at(time.April, 1, 12)

	milestone.SetCompleted(true, now)
	if !milestone.Completed || milestone.CompletedAt == nil || !milestone.CompletedAt.Equal(now) {
		t.Fatalf("expected completed milestone with completion date, got %+v", milestone)
	}

	milestone.SetCompleted(false, now)
	if milestone.Completed || milestone.CompletedAt != nil {
		t.Fatalf("expected cleared completion date, got %+v", milestone)
	}
}

func TestValidation(t *testing.T) {
	if err := ValidateTitle("   "); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if err := ValidateText(""); !errors.Is(err, ErrTextRequired) {
		t.Fatalf("expected ErrTextRequired, got %v", err)
	}
	if err := ValidateTitle("Run"); err != nil {
		t.Fatalf("expected valid title, got %v", err)
	}
}

func TestFilterSelection(t *testing.T) {
	goals := []Goal{{ID: "g1"}, {ID: "g2"}}
	habits := []Habit{{ID: "h1"}}

	filter := AllOf(goals, habits)
	delete(filter.Goals, "g2")

	if got := filter.SelectedGoals(goals); len(got) != 1 || got[0].ID != "g1" {
		t.Fatalf("expected only g1 selected, got %+v", got)
	}
	if !filter.Includes(HabitOwner("h1")) {
		t.Fatalf("expected habit h1 to be included")
	}

	clone := filter.Clone()
	delete(clone.Habits, "h1")
	if !filter.IncludesHabit("h1") {
		t.Fatalf("expected clone to be independent")
	}
	if NewFilter().Empty() != true {
		t.Fatalf("expected new filter to be empty")
	}
}
