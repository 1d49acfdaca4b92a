package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/model"
)

var errAmbiguous = errors.New("ambiguous reference")

// matchRef reports how well ref names an item: 2 for an exact id or title,
// 1 for an id prefix, 0 for no match.
func matchRef(ref, id, title string) int {
	switch {
	case id == ref, strings.EqualFold(title, ref):
		return 2
	case strings.HasPrefix(id, ref):
		return 1
	default:
		return 0
	}
}

type candidate struct {
	owner model.Owner
	title string
	score int
}

func pick(ref string, candidates []candidate) (candidate, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return candidate{}, fmt.Errorf("reference is required")
	}
	best := 0
	var matches []candidate
	for _, c := range candidates {
		switch {
		case c.score > best:
			best = c.score
			matches = []candidate{c}
		case c.score == best && best > 0:
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return candidate{}, fmt.Errorf("no goal or habit matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return candidate{}, fmt.Errorf("%w %q: %d matches", errAmbiguous, ref, len(matches))
	}
}

func goalCandidates(ref string, goals []model.Goal) []candidate {
	candidates := make([]candidate, 0, len(goals))
	for _, goal := range goals {
		candidates = append(candidates, candidate{owner: model.GoalOwner(goal.ID), title: goal.Title, score: matchRef(ref, goal.ID, goal.Title)})
	}
	return candidates
}

func habitCandidates(ref string, habits []model.Habit) []candidate {
	candidates := make([]candidate, 0, len(habits))
	for _, habit := range habits {
		candidates = append(candidates, candidate{owner: model.HabitOwner(habit.ID), title: habit.Title, score: matchRef(ref, habit.ID, habit.Title)})
	}
	return candidates
}

func findGoal(ref string, goals []model.Goal) (model.Goal, error) {
	match, err := pick(ref, goalCandidates(ref, goals))
	if err != nil {
		return model.Goal{}, err
	}
	for _, goal := range goals {
		if goal.ID == match.owner.ID {
			return goal, nil
		}
	}
	return model.Goal{}, fmt.Errorf("no goal matches %q", ref)
}

func findHabit(ref string, habits []model.Habit) (model.Habit, error) {
	match, err := pick(ref, habitCandidates(ref, habits))
	if err != nil {
		return model.Habit{}, err
	}
	for _, habit := range habits {
		if habit.ID == match.owner.ID {
			return habit, nil
		}
	}
	return model.Habit{}, fmt.Errorf("no habit matches %q", ref)
}

// findSource resolves ref against goals and habits together.
func findSource(ref string, goals []model.Goal, habits []model.Habit) (model.Owner, string, error) {
	candidates := append(goalCandidates(ref, goals), habitCandidates(ref, habits)...)
	match, err := pick(ref, candidates)
	if err != nil {
		return model.Owner{}, "", err
	}
	return match.owner, match.title, nil
}

// findMilestone resolves a milestone by id or id prefix across every source.
func findMilestone(ref string, goals []model.Goal, habits []model.Habit) (model.Milestone, error) {
	var milestones []model.Milestone
	for _, goal := range goals {
		milestones = append(milestones, goal.Milestones...)
	}
	for _, habit := range habits {
		milestones = append(milestones, habit.Milestones...)
	}

	var matches []model.Milestone
	for _, milestone := range milestones {
		if milestone.ID == ref {
			return milestone, nil
		}
		if ref != "" && strings.HasPrefix(milestone.ID, ref) {
			matches = append(matches, milestone)
		}
	}
	switch len(matches) {
	case 0:
		return model.Milestone{}, fmt.Errorf("no milestone matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return model.Milestone{}, fmt.Errorf("%w %q: %d matches", errAmbiguous, ref, len(matches))
	}
}

// parseWhen combines optional YYYY-MM-DD and HH:MM flags. Both empty means
// now, signalled by the zero time.
func parseWhen(day, clock string, now time.Time) (time.Time, error) {
	day = strings.TrimSpace(day)
	clock = strings.TrimSpace(clock)
	if day == "" && clock == "" {
		return time.Time{}, nil
	}

	base := now
	if day != "" {
		parsed, ok := dates.ParseDay(day, now.Location())
		if !ok {
			return time.Time{}, fmt.Errorf("invalid date %q", day)
		}
		base = parsed.Add(now.Sub(dates.StartOfDay(now)))
	}
	if clock == "" {
		return base, nil
	}
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	start := dates.StartOfDay(base)
	return time.Date(start.Year(), start.Month(), start.Day(), parsed.Hour(), parsed.Minute(), 0, 0, start.Location()), nil
}

func parseMonth(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return dates.StartOfMonth(now), nil
	}
	parsed, err := time.ParseInLocation("2006-01", value, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", value)
	}
	return parsed, nil
}
