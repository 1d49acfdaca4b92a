package model

func NewFilter() Filter {
	return Filter{Goals: make(map[string]struct{}), Habits: make(map[string]struct{})}
}

// AllOf builds a filter that includes every given goal and habit.
func AllOf(goals []Goal, habits []Habit) Filter {
	filter := NewFilter()
	for _, goal := range goals {
		filter.Goals[goal.ID] = struct{}{}
	}
	for _, habit := range habits {
		filter.Habits[habit.ID] = struct{}{}
	}
	return filter
}

func (f Filter) IncludesGoal(id string) bool {
	_, ok := f.Goals[id]
	return ok
}

func (f Filter) IncludesHabit(id string) bool {
	_, ok := f.Habits[id]
	return ok
}

func (f Filter) Includes(owner Owner) bool {
	if owner.Kind == OwnerGoal {
		return f.IncludesGoal(owner.ID)
	}
	return f.IncludesHabit(owner.ID)
}

func (f Filter) Empty() bool {
	return len(f.Goals) == 0 && len(f.Habits) == 0
}

func (f Filter) Clone() Filter {
	clone := NewFilter()
	for id := range f.Goals {
		clone.Goals[id] = struct{}{}
	}
	for id := range f.Habits {
		clone.Habits[id] = struct{}{}
	}
	return clone
}

func (f Filter) SelectedGoals(goals []Goal) []Goal {
	selected := make([]Goal, 0, len(goals))
	for _, goal := range goals {
		if f.IncludesGoal(goal.ID) {
			selected = append(selected, goal)
		}
	}
	return selected
}

func (f Filter) SelectedHabits(habits []Habit) []Habit {
	selected := make([]Habit, 0, len(habits))
	for _, habit := range habits {
		if f.IncludesHabit(habit.ID) {
			selected = append(selected, habit)
		}
	}
	return selected
}
