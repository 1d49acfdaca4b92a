package stats

import (
	"sort"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/model"
)

var (
	sliceBase  = colorful.Color{R: 0.29, G: 0.56, B: 0.89}
	sliceLight = colorful.Color{R: 0.90, G: 0.94, B: 0.99}
)

type Slice struct {
	Label    string          `json:"label"`
	SourceID string          `json:"source_id,omitempty"`
	Kind     model.OwnerKind `json:"kind,omitempty"`
	Count    int             `json:"count"`
	Percent  float64         `json:"percent"`
	Color    string          `json:"color"`
}

// DayOfWeekDistribution always yields seven slices, starting at firstWeekday.
func DayOfWeekDistribution(timestamps []time.Time, firstWeekday time.Weekday) []Slice {
	counts := make(map[time.Weekday]int, 7)
	for _, ts := range timestamps {
		counts[ts.Weekday()]++
	}

	weekdays := dates.Weekdays(firstWeekday)
	slices := make([]Slice, 0, len(weekdays))
	for i, day := range weekdays {
		slices = append(slices, Slice{
			Label: dates.ShortWeekday(day),
			Count: counts[day],
			Color: SliceColor(i, len(weekdays)),
		})
	}
	fillPercent(slices, len(timestamps))
	return slices
}

// SourceDistributionForGoal splits a goal's activity between the goal itself
// and each related habit.
func SourceDistributionForGoal(goal model.Goal, window Window) []Slice {
	slices := []Slice{{
		Label:    goal.Title,
		SourceID: goal.ID,
		Kind:     model.OwnerGoal,
		Count:    len(InWindow(goal.Timestamps(), window)),
	}}
	for _, habit := range goal.Habits {
		slices = append(slices, Slice{
			Label:    habit.Title,
			SourceID: habit.ID,
			Kind:     model.OwnerHabit,
			Count:    len(InWindow(habit.Timestamps(), window)),
		})
	}
	return finishSources(slices)
}

func SourceDistribution(goals []model.Goal, habits []model.Habit, filter model.Filter, window Window) []Slice {
	var slices []Slice
	for _, goal := range filter.SelectedGoals(goals) {
		slices = append(slices, Slice{
			Label:    goal.Title,
			SourceID: goal.ID,
			Kind:     model.OwnerGoal,
			Count:    len(InWindow(goal.Timestamps(), window)),
		})
	}
	for _, habit := range filter.SelectedHabits(habits) {
		slices = append(slices, Slice{
			Label:    habit.Title,
			SourceID: habit.ID,
			Kind:     model.OwnerHabit,
			Count:    len(InWindow(habit.Timestamps(), window)),
		})
	}
	return finishSources(slices)
}

// SliceColor scales from a light tint to the base color by index.
func SliceColor(index, total int) string {
	if total <= 1 {
		return sliceBase.Hex()
	}
	t := 0.25 + 0.75*float64(index)/float64(total-1)
	return sliceLight.BlendLab(sliceBase, t).Clamped().Hex()
}

func finishSources(slices []Slice) []Slice {
	kept := make([]Slice, 0, len(slices))
	total := 0
	for _, slice := range slices {
		if slice.Count == 0 {
			continue
		}
		total += slice.Count
		kept = append(kept, slice)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Count > kept[j].Count
	})
	for i := range kept {
		kept[i].Color = SliceColor(len(kept)-1-i, len(kept))
	}
	fillPercent(kept, total)
	return kept
}

func fillPercent(slices []Slice, total int) {
	if total == 0 {
		return
	}
	for i := range slices {
		slices[i].Percent = float64(slices[i].Count) * 100 / float64(total)
	}
}
