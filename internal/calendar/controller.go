// Package calendar tracks which slice of time a screen is looking at: the
// month, week and year being browsed, the selected day, and the goals and
// habits whose data is included.
package calendar

import (
	"time"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/model"
)

type EventKind int

const (
	// TimeframeChanged fires when the month, week or year anchor moves.
	TimeframeChanged EventKind = iota
	SelectionChanged
	FiltersChanged
)

type Event struct {
	Kind     EventKind
	Selected time.Time
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func WithFirstWeekday(day time.Weekday) Option {
	return func(c *Controller) {
		c.firstWeekday = day
	}
}

// Controller is owned by a single screen; it is not safe for concurrent use.
type Controller struct {
	now          func() time.Time
	firstWeekday time.Weekday

	month    time.Time
	week     time.Time
	selected time.Time
	year     int

	filter      model.Filter
	initialized bool
	timeframe   bool

	nextListener int
	listeners    map[int]func(Event)
}

func New(opts ...Option) *Controller {
	c := &Controller{
		now:       time.Now,
		filter:    model.NewFilter(),
		listeners: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset(c.clock())
	return c
}

func (c *Controller) clock() time.Time {
	now := c.now()
	if now.IsZero() {
		return time.Now()
	}
	return now
}

func (c *Controller) reset(day time.Time) {
	c.selected = dates.StartOfDay(day)
	c.month = dates.StartOfMonth(day)
	c.week = dates.StartOfWeek(day, c.firstWeekday)
	c.year = day.Year()
}

// Subscribe registers fn for change notifications and returns a function that
// removes it again.
func (c *Controller) Subscribe(fn func(Event)) func() {
	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() {
		delete(c.listeners, id)
	}
}

func (c *Controller) notify(kind EventKind) {
	if kind == TimeframeChanged {
		c.timeframe = !c.timeframe
	}
	event := Event{Kind: kind, Selected: c.selected}
	for _, fn := range c.listeners {
		fn(event)
	}
}

func (c *Controller) MoveMonth(delta int) {
	c.month = dates.AddMonths(c.month, delta)
	c.notify(TimeframeChanged)
}

func (c *Controller) MoveWeek(delta int) {
	c.week = dates.AddDays(c.week, 7*delta)
	c.notify(TimeframeChanged)
}

func (c *Controller) MoveYear(delta int) {
	c.year += delta
	c.notify(TimeframeChanged)
}

// MoveDay shifts the selection and drags the month and week anchors along
// when the new day falls outside them. It is a selection change, not a
// timeframe change.
func (c *Controller) MoveDay(delta int) {
	c.Select(dates.AddDays(c.selected, delta))
}

func (c *Controller) Select(day time.Time) {
	if day.IsZero() {
		day = c.clock()
	}
	c.selected = dates.StartOfDay(day)
	if month := dates.StartOfMonth(c.selected); !month.Equal(c.month) {
		c.month = month
	}
	if week := dates.StartOfWeek(c.selected, c.firstWeekday); !week.Equal(c.week) {
		c.week = week
	}
	c.notify(SelectionChanged)
}

func (c *Controller) Today() {
	c.reset(c.clock())
	c.notify(TimeframeChanged)
}

// InitializeFilters selects every known goal and habit. Only the first call
// has an effect; later loads keep the user's selection.
func (c *Controller) InitializeFilters(goals []model.Goal, habits []model.Habit) {
	if c.initialized {
		return
	}
	c.initialized = true
	c.filter = model.AllOf(goals, habits)
	c.notify(FiltersChanged)
}

// SyncFilters adds newly created sources to the selection and forgets
// deleted ones.
func (c *Controller) SyncFilters(goals []model.Goal, habits []model.Habit, added model.Filter) {
	if !c.initialized {
		c.InitializeFilters(goals, habits)
		return
	}
	next := model.NewFilter()
	for _, goal := range goals {
		if c.filter.IncludesGoal(goal.ID) || added.IncludesGoal(goal.ID) {
			next.Goals[goal.ID] = struct{}{}
		}
	}
	for _, habit := range habits {
		if c.filter.IncludesHabit(habit.ID) || added.IncludesHabit(habit.ID) {
			next.Habits[habit.ID] = struct{}{}
		}
	}
	c.filter = next
	c.notify(FiltersChanged)
}

func (c *Controller) ToggleGoal(id string) {
	if c.filter.IncludesGoal(id) {
		delete(c.filter.Goals, id)
	} else {
		c.filter.Goals[id] = struct{}{}
	}
	c.notify(FiltersChanged)
}

func (c *Controller) ToggleHabit(id string) {
	if c.filter.IncludesHabit(id) {
		delete(c.filter.Habits, id)
	} else {
		c.filter.Habits[id] = struct{}{}
	}
	c.notify(FiltersChanged)
}

func (c *Controller) SelectAll(goals []model.Goal, habits []model.Habit) {
	c.initialized = true
	c.filter = model.AllOf(goals, habits)
	c.notify(FiltersChanged)
}

func (c *Controller) ClearFilters() {
	c.filter = model.NewFilter()
	c.notify(FiltersChanged)
}

func (c *Controller) Filter() model.Filter {
	return c.filter.Clone()
}

func (c *Controller) Selected() time.Time {
	return c.selected
}

func (c *Controller) Year() int {
	return c.year
}

func (c *Controller) Now() time.Time {
	return c.clock()
}

func (c *Controller) FirstWeekday() time.Weekday {
	return c.firstWeekday
}

// Timeframe flips on every timeframe change; observers compare it with the
// value they last rendered.
func (c *Controller) Timeframe() bool {
	return c.timeframe
}

func (c *Controller) MonthStart() time.Time {
	return c.month
}

func (c *Controller) WeekStart() time.Time {
	return c.week
}

func (c *Controller) YearStart() time.Time {
	return time.Date(c.year, time.January, 1, 0, 0, 0, 0, c.month.Location())
}

func (c *Controller) DaysInMonth() int {
	return dates.DaysInMonth(c.month)
}

// DaysInSelectedYear reports the day count of the browsed year.
func (c *Controller) DaysInSelectedYear() int {
	return c.DaysInYear(c.year)
}

func (c *Controller) DaysInYear(year int) int {
	return dates.DaysInYear(year, c.clock())
}

// FirstWeekdayOffset is the number of blank grid cells before the 1st.
func (c *Controller) FirstWeekdayOffset() int {
	return dates.WeekdayOffset(c.month, c.firstWeekday)
}

func (c *Controller) WeekdayNames() []string {
	return dates.WeekdayNames(c.firstWeekday)
}

// WeekDays lists the seven days of the browsed week.
func (c *Controller) WeekDays() []time.Time {
	days := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, dates.AddDays(c.week, i))
	}
	return days
}

// MonthGrid lays the browsed month out as weeks of seven cells; cells outside
// the month are zero times.
func (c *Controller) MonthGrid() [][]time.Time {
	offset := c.FirstWeekdayOffset()
	total := c.DaysInMonth()
	rows := (offset + total + 6) / 7

	grid := make([][]time.Time, 0, rows)
	for row := 0; row < rows; row++ {
		cells := make([]time.Time, 7)
		for col := 0; col < 7; col++ {
			day := row*7 + col - offset + 1
			if day >= 1 && day <= total {
				cells[col] = dates.AddDays(c.month, day-1)
			}
		}
		grid = append(grid, cells)
	}
	return grid
}
