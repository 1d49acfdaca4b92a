package model

import (
	"errors"
	"time"
)

var (
	ErrTitleRequired    = errors.New("title is required")
	ErrTextRequired     = errors.New("text is required")
	ErrDeadlineRequired = errors.New("deadline is required")
)

type OwnerKind string

const (
	OwnerGoal  OwnerKind = "goal"
	OwnerHabit OwnerKind = "habit"
)

// Label is the user-facing source type used by journal listings.
func (k OwnerKind) Label() string {
	switch k {
	case OwnerGoal:
		return "Goal"
	case OwnerHabit:
		return "Habit"
	default:
		return "Unknown"
	}
}

type Owner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

func GoalOwner(id string) Owner {
	return Owner{Kind: OwnerGoal, ID: id}
}

func HabitOwner(id string) Owner {
	return Owner{Kind: OwnerHabit, ID: id}
}

type Goal struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Deadline   time.Time      `json:"deadline"`
	Notes      string         `json:"notes"`
	Private    bool           `json:"private"`
	CreatedAt  time.Time      `json:"created_at"`
	Milestones []Milestone    `json:"milestones"`
	Entries    []JournalEntry `json:"entries"`
	Habits     []Habit        `json:"habits"`
}

type Habit struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Notes      string         `json:"notes"`
	Private    bool           `json:"private"`
	CreatedAt  time.Time      `json:"created_at"`
	Milestones []Milestone    `json:"milestones"`
	Entries    []JournalEntry `json:"entries"`
	GoalIDs    []string       `json:"goal_ids"`
}

type GoalHabitRelation struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goal_id"`
	HabitID   string    `json:"habit_id"`
	CreatedAt time.Time `json:"created_at"`
}

type JournalEntry struct {
	ID        string    `json:"id"`
	Owner     Owner     `json:"owner"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

type Milestone struct {
	ID                     string     `json:"id"`
	Owner                  Owner      `json:"owner"`
	Text                   string     `json:"text"`
	Completed              bool       `json:"completed"`
	CompletedAt            *time.Time `json:"completed_at"`
	CountsTowardCompletion bool       `json:"counts_toward_completion"`
	Position               int        `json:"position"`
}

// Filter is the set of goals and habits whose data feeds the calendar and
// statistics views.
type Filter struct {
	Goals  map[string]struct{} `json:"goals"`
	Habits map[string]struct{} `json:"habits"`
}
