package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/Joseda-hg/lazygoals/internal/calendar"
	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/db"
	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

const (
	viewHeader     = "header"
	viewFooter     = "footer"
	viewCalendar   = "calendar"
	viewGoals      = "goals"
	viewHabits     = "habits"
	viewMilestones = "milestones"
	viewJournal    = "journal"
	viewStats      = "stats"
	viewForm       = "form"
	viewHelp       = "help"
)

var focusOrder = []string{viewCalendar, viewGoals, viewHabits, viewMilestones, viewJournal, viewStats}

type Options struct {
	FirstWeekday time.Weekday
	Range        stats.TimeRange
	Now          func() time.Time
}

type UI struct {
	store    *db.Store
	gui      *gocui.Gui
	calendar *calendar.Controller
	now      func() time.Time

	goals      []model.Goal
	habits     []model.Habit
	journal    []stats.Entry
	overview   stats.Overview
	statsStale bool
	timeRange  stats.TimeRange

	selectedGoal      int
	selectedHabit     int
	selectedMilestone int
	selectedJournal   int
	// source picks which list feeds the milestones pane.
	source model.OwnerKind
	focus  string

	form       *formState
	formEditor *formEditor
	helpActive bool
	status     string
}

type formState struct {
	kind    formKind
	id      string
	owner   model.Owner
	day     time.Time
	fields  []formField
	options []sourceOption
	option  int
	index   int
}

type formEditor struct {
	ui *UI
}

func Run(store *db.Store, opts Options) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(store, opts)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.reload(model.NewFilter()); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func newUI(store *db.Store, opts Options) *UI {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	timeRange := opts.Range
	if timeRange == "" {
		timeRange = stats.AllTime
	}

	ui := &UI{
		store:      store,
		now:        now,
		calendar:   calendar.New(calendar.WithClock(now), calendar.WithFirstWeekday(opts.FirstWeekday)),
		timeRange:  timeRange,
		statsStale: true,
		source:     model.OwnerGoal,
		focus:      viewCalendar,
	}
	ui.formEditor = &formEditor{ui: ui}
	ui.calendar.Subscribe(ui.onCalendarEvent)
	return ui
}

func (u *UI) onCalendarEvent(event calendar.Event) {
	switch event.Kind {
	case calendar.SelectionChanged:
		u.selectedJournal = 0
		u.refreshJournal()
	case calendar.FiltersChanged:
		u.refreshJournal()
	}
	u.statsStale = true
}

type keyBinding struct {
	view    string
	key     any
	handler func(*gocui.Gui, *gocui.View) error
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []keyBinding{
		{"", gocui.KeyCtrlC, u.quit},
		{"", 'q', u.quit},
		{"", '?', u.toggleHelp},
		{"", gocui.KeyTab, u.switchFocus},
		{"", 'h', u.moveDay(-1)},
		{"", 'l', u.moveDay(1)},
		{"", '[', u.moveMonth(-1)},
		{"", ']', u.moveMonth(1)},
		{"", '{', u.moveYear(-1)},
		{"", '}', u.moveYear(1)},
		{"", ',', u.moveWeek(-1)},
		{"", '.', u.moveWeek(1)},
		{"", 't', u.today},
		{"", 'r', u.cycleRange},
		{"", 'a', u.addItem},
		{"", 'e', u.editItem},
		{"", 'd', u.deleteItem},
		{"", 'x', u.toggleMilestone},
		{"", 'L', u.openLink},
		{"", 'g', u.selectAll},
		{viewCalendar, gocui.KeyArrowLeft, u.moveDay(-1)},
		{viewCalendar, gocui.KeyArrowRight, u.moveDay(1)},
		{viewCalendar, gocui.KeyArrowUp, u.moveDay(-7)},
		{viewCalendar, gocui.KeyArrowDown, u.moveDay(7)},
		{viewGoals, gocui.KeySpace, u.toggleFilter},
		{viewHabits, gocui.KeySpace, u.toggleFilter},
		{viewForm, gocui.KeyEnter, u.submitForm},
		{viewForm, gocui.KeyCtrlJ, u.submitForm},
		{viewForm, gocui.KeyTab, u.nextFormField},
		{viewForm, gocui.KeyBacktab, u.prevFormField},
		{viewForm, gocui.KeyArrowDown, u.nextFormField},
		{viewForm, gocui.KeyArrowUp, u.prevFormField},
		{viewForm, gocui.KeyEsc, u.cancelForm},
		{viewHelp, gocui.KeyEsc, u.closeHelp},
		{viewHelp, 'q', u.closeHelp},
		{viewHelp, '?', u.closeHelp},
	}
	for _, name := range []string{viewGoals, viewHabits, viewMilestones, viewJournal} {
		bindings = append(bindings,
			keyBinding{name, gocui.KeyArrowDown, u.moveDown},
			keyBinding{name, 'j', u.moveDown},
			keyBinding{name, gocui.KeyArrowUp, u.moveUp},
			keyBinding{name, 'k', u.moveUp},
		)
	}
	for _, binding := range bindings {
		if err := gui.SetKeybinding(binding.view, binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewCalendar, viewGoals, viewHabits, viewMilestones, viewJournal, viewStats} {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-2, 1)
	footerY0 := max(footerY1-2, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Title = ""
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	footerView.BgColor = gocui.ColorDefault
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	layout := computeLayout(maxX, bodyBottom-bodyTop+1)
	leftX0 := 0
	leftX1 := leftX0 + layout.leftWidth - 1
	rightX0 := leftX1 + 1
	if rightX0 >= maxX {
		rightX0 = leftX1
	}
	rightX1 := maxX - 1

	calendarY0 := bodyTop
	calendarY1 := calendarY0 + layout.calendarHeight - 1
	goalsY0 := calendarY1 + 1
	goalsY1 := goalsY0 + layout.goalsHeight - 1
	habitsY0 := goalsY1 + 1
	habitsY1 := bodyBottom

	milestonesY0 := bodyTop
	milestonesY1 := milestonesY0 + layout.milestonesHeight - 1
	journalY0 := milestonesY1 + 1
	journalY1 := journalY0 + layout.journalHeight - 1
	statsY0 := journalY1 + 1
	statsY1 := bodyBottom

	calendarView, err := gui.SetView(viewCalendar, leftX0, calendarY0, leftX1, calendarY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	calendarView.Title = u.calendar.MonthStart().Format("January 2006")
	applyViewStyle(calendarView, u.focus == viewCalendar, false)
	if u.focus != viewCalendar {
		calendarView.TitleColor = gocui.ColorMagenta
	}
	calendarView.Clear()
	fmt.Fprint(calendarView, strings.Join(u.calendarLines(), "\n"))

	goalsView, err := gui.SetView(viewGoals, leftX0, goalsY0, leftX1, goalsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	goalsView.Title = "Goals"
	goalsView.TitleColor = gocui.ColorGreen
	applyViewStyle(goalsView, u.focus == viewGoals, true)
	u.renderList(goalsView, u.goalLines(), u.selectedGoal, u.focus == viewGoals)

	habitsView, err := gui.SetView(viewHabits, leftX0, habitsY0, leftX1, habitsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	habitsView.Title = "Habits"
	habitsView.TitleColor = gocui.ColorYellow
	applyViewStyle(habitsView, u.focus == viewHabits, true)
	u.renderList(habitsView, u.habitLines(), u.selectedHabit, u.focus == viewHabits)

	milestonesView, err := gui.SetView(viewMilestones, rightX0, milestonesY0, rightX1, milestonesY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	milestonesView.Title = "Milestones"
	if _, title, _, ok := u.currentSource(); ok {
		milestonesView.Title = "Milestones: " + title
	}
	applyViewStyle(milestonesView, u.focus == viewMilestones, true)
	u.renderList(milestonesView, u.milestoneLines(), u.selectedMilestone, u.focus == viewMilestones)

	journalView, err := gui.SetView(viewJournal, rightX0, journalY0, rightX1, journalY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	journalView.Title = "Journal: " + u.calendar.Selected().Format("Mon Jan 2 2006")
	applyViewStyle(journalView, u.focus == viewJournal, true)
	u.renderList(journalView, u.journalLines(), u.selectedJournal, u.focus == viewJournal)

	statsView, err := gui.SetView(viewStats, rightX0, statsY0, rightX1, statsY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	statsView.Title = "Statistics"
	statsView.TitleColor = gocui.ColorCyan
	applyViewStyle(statsView, u.focus == viewStats, false)
	statsView.Clear()
	fmt.Fprint(statsView, strings.Join(statsLines(u.currentOverview()), "\n"))

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.form != nil

	return nil
}

type layout struct {
	leftWidth        int
	calendarHeight   int
	goalsHeight      int
	habitsHeight     int
	milestonesHeight int
	journalHeight    int
	statsHeight      int
}

func computeLayout(width, height int) layout {
	safeWidth := max(width-2, 20)
	safeHeight := max(height, 12)

	leftWidth := max(safeWidth*2/5, 32)
	if leftWidth > safeWidth-20 {
		leftWidth = safeWidth / 2
	}

	// Weekday header, up to six weeks, a blank line and the week summary.
	calendarHeight := 11
	remaining := max(safeHeight-calendarHeight, 8)
	goalsHeight := max(remaining/2, 4)
	habitsHeight := max(remaining-goalsHeight, 4)

	milestonesHeight := max(int(float64(safeHeight)*0.25), 4)
	statsHeight := max(int(float64(safeHeight)*0.45), 6)
	journalHeight := max(safeHeight-milestonesHeight-statsHeight, 4)

	return layout{
		leftWidth:        leftWidth,
		calendarHeight:   calendarHeight,
		goalsHeight:      goalsHeight,
		habitsHeight:     habitsHeight,
		milestonesHeight: milestonesHeight,
		journalHeight:    journalHeight,
		statsHeight:      statsHeight,
	}
}

// reload reads everything from the store. Ids in added join the filter;
// deleted ids leave it.
func (u *UI) reload(added model.Filter) error {
	goals, habits, err := u.store.Load(context.Background())
	if err != nil {
		return err
	}
	u.goals = goals
	u.habits = habits

	u.selectedGoal = clampIndex(u.selectedGoal, len(u.goals))
	u.selectedHabit = clampIndex(u.selectedHabit, len(u.habits))
	if _, _, milestones, ok := u.currentSource(); ok {
		u.selectedMilestone = clampIndex(u.selectedMilestone, len(milestones))
	} else {
		u.selectedMilestone = 0
	}

	u.calendar.SyncFilters(goals, habits, added)
	u.refreshJournal()
	u.statsStale = true
	return nil
}

func (u *UI) refreshJournal() {
	u.journal = stats.JournalEntries(u.calendar.Selected(), u.goals, u.habits, u.calendar.Filter())
	u.selectedJournal = clampIndex(u.selectedJournal, len(u.journal))
}

func (u *UI) currentOverview() stats.Overview {
	if u.statsStale {
		u.overview = stats.BuildOverview(u.goals, u.habits, u.calendar.Filter(), u.timeRange, u.now(), u.calendar.Year(), u.calendar.FirstWeekday())
		u.statsStale = false
	}
	return u.overview
}

func clampIndex(index, length int) int {
	if index >= length {
		index = length - 1
	}
	return max(index, 0)
}

func (u *UI) selectedGoalItem() *model.Goal {
	if u.selectedGoal >= 0 && u.selectedGoal < len(u.goals) {
		return &u.goals[u.selectedGoal]
	}
	return nil
}

func (u *UI) selectedHabitItem() *model.Habit {
	if u.selectedHabit >= 0 && u.selectedHabit < len(u.habits) {
		return &u.habits[u.selectedHabit]
	}
	return nil
}

// currentSource is the goal or habit whose milestones are shown.
func (u *UI) currentSource() (model.Owner, string, []model.Milestone, bool) {
	if u.source == model.OwnerHabit {
		if habit := u.selectedHabitItem(); habit != nil {
			return model.HabitOwner(habit.ID), habit.Title, habit.Milestones, true
		}
		return model.Owner{}, "", nil, false
	}
	if goal := u.selectedGoalItem(); goal != nil {
		return model.GoalOwner(goal.ID), goal.Title, goal.Milestones, true
	}
	return model.Owner{}, "", nil, false
}

func (u *UI) selectedMilestoneItem() *model.Milestone {
	_, _, milestones, ok := u.currentSource()
	if !ok || u.selectedMilestone < 0 || u.selectedMilestone >= len(milestones) {
		return nil
	}
	return &milestones[u.selectedMilestone]
}

func (u *UI) selectedJournalEntry() *stats.Entry {
	if u.selectedJournal >= 0 && u.selectedJournal < len(u.journal) {
		return &u.journal[u.selectedJournal]
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	filter := u.calendar.Filter()
	rangeLabel := u.timeRange.Label()
	if u.timeRange == stats.Year {
		rangeLabel = fmt.Sprintf("%s %d", rangeLabel, u.calendar.Year())
	}
	fmt.Fprintf(view, "LazyGoals | %s | Week of %s | Range: %s | Filter: %d/%d goals, %d/%d habits",
		u.calendar.Selected().Format("Mon 2006-01-02"),
		u.calendar.WeekStart().Format("Jan 2"),
		rangeLabel,
		len(filter.SelectedGoals(u.goals)), len(u.goals),
		len(filter.SelectedHabits(u.habits)), len(u.habits),
	)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	fmt.Fprintln(view, "h/l day | ,/. week | [/] month | {/} year | t today | r range | space filter | g all | tab pane")
	fmt.Fprintln(view, "a add | e edit | d delete | x milestone | L link habit | enter save | esc cancel | ? help | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderList(view *gocui.View, lines []string, selected int, focused bool) {
	view.Clear()
	for i, line := range lines {
		prefix := " "
		if i == selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, line)
	}
	if focused {
		view.SetCursor(0, min(selected, len(lines)-1))
	}
}

func (u *UI) calendarLines() []string {
	filter := u.calendar.Filter()
	selected := u.calendar.Selected()

	header := make([]string, 0, 7)
	for _, name := range u.calendar.WeekdayNames() {
		header = append(header, fmt.Sprintf("%4s", name))
	}
	lines := []string{strings.Join(header, "")}

	for _, week := range u.calendar.MonthGrid() {
		var b strings.Builder
		for _, day := range week {
			active := !day.IsZero() && stats.HasJournalEntries(day, u.goals, u.habits, filter)
			b.WriteString(calendarCell(day, !day.IsZero() && dates.SameDay(day, selected), active))
		}
		lines = append(lines, b.String())
	}

	weekEntries := 0
	for _, day := range u.calendar.WeekDays() {
		weekEntries += len(stats.JournalEntries(day, u.goals, u.habits, filter))
	}
	lines = append(lines, "", fmt.Sprintf("Week of %s: %d entries", u.calendar.WeekStart().Format("Jan 2"), weekEntries))
	return lines
}

func (u *UI) goalLines() []string {
	filter := u.calendar.Filter()
	now := u.now()
	lines := make([]string, 0, len(u.goals))
	for _, goal := range u.goals {
		lines = append(lines, fmt.Sprintf("[%s] %s", filterMarker(filter.IncludesGoal(goal.ID)), formatGoalSummary(goal, now)))
	}
	return lines
}

func (u *UI) habitLines() []string {
	filter := u.calendar.Filter()
	now := u.now()
	lines := make([]string, 0, len(u.habits))
	for _, habit := range u.habits {
		lines = append(lines, fmt.Sprintf("[%s] %s", filterMarker(filter.IncludesHabit(habit.ID)), formatHabitSummary(habit, now)))
	}
	return lines
}

func (u *UI) milestoneLines() []string {
	_, _, milestones, ok := u.currentSource()
	if !ok {
		return nil
	}
	lines := make([]string, 0, len(milestones))
	for _, milestone := range milestones {
		lines = append(lines, formatMilestone(milestone))
	}
	return lines
}

func (u *UI) journalLines() []string {
	lines := make([]string, 0, len(u.journal))
	for _, entry := range u.journal {
		lines = append(lines, formatJournalEntry(entry))
	}
	return lines
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	x0, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewCalendar:
		grid := u.calendar.MonthGrid()
		col := (opts.X - x0 - 1) / 4
		if row >= 1 && row-1 < len(grid) && col >= 0 && col < 7 {
			if day := grid[row-1][col]; !day.IsZero() {
				u.calendar.Select(day)
			}
		}
	case viewGoals:
		u.selectedGoal = clampIndex(row, len(u.goals))
	case viewHabits:
		u.selectedHabit = clampIndex(row, len(u.habits))
	case viewMilestones:
		_, _, milestones, _ := u.currentSource()
		u.selectedMilestone = clampIndex(row, len(milestones))
	case viewJournal:
		u.selectedJournal = clampIndex(row, len(u.journal))
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	for _, name := range focusOrder {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	next := focusOrder[0]
	for i, name := range focusOrder {
		if name == u.focus {
			next = focusOrder[(i+1)%len(focusOrder)]
			break
		}
	}
	return u.setFocus(gui, next)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() {
		return nil
	}
	switch name {
	case viewGoals:
		if u.source != model.OwnerGoal {
			u.selectedMilestone = 0
		}
		u.source = model.OwnerGoal
	case viewHabits:
		if u.source != model.OwnerHabit {
			u.selectedMilestone = 0
		}
		u.source = model.OwnerHabit
	}
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	return u.moveSelection(1)
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	return u.moveSelection(-1)
}

func (u *UI) moveSelection(delta int) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewGoals:
		next := clampIndex(u.selectedGoal+delta, len(u.goals))
		if next != u.selectedGoal {
			u.selectedGoal = next
			u.selectedMilestone = 0
		}
	case viewHabits:
		next := clampIndex(u.selectedHabit+delta, len(u.habits))
		if next != u.selectedHabit {
			u.selectedHabit = next
			u.selectedMilestone = 0
		}
	case viewMilestones:
		_, _, milestones, _ := u.currentSource()
		u.selectedMilestone = clampIndex(u.selectedMilestone+delta, len(milestones))
	case viewJournal:
		u.selectedJournal = clampIndex(u.selectedJournal+delta, len(u.journal))
	}
	return nil
}

func (u *UI) moveDay(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.inputActive() {
			return nil
		}
		u.calendar.MoveDay(delta)
		return nil
	}
}

func (u *UI) moveWeek(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.inputActive() {
			return nil
		}
		u.calendar.MoveWeek(delta)
		return nil
	}
}

func (u *UI) moveMonth(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.inputActive() {
			return nil
		}
		u.calendar.MoveMonth(delta)
		return nil
	}
}

func (u *UI) moveYear(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(_ *gocui.Gui, _ *gocui.View) error {
		if u.inputActive() {
			return nil
		}
		u.calendar.MoveYear(delta)
		return nil
	}
}

func (u *UI) today(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.calendar.Today()
	u.refreshJournal()
	return nil
}

func (u *UI) cycleRange(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.timeRange = u.timeRange.Next()
	u.statsStale = true
	u.status = "Range: " + u.timeRange.Label()
	return nil
}

func (u *UI) toggleFilter(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewGoals:
		if goal := u.selectedGoalItem(); goal != nil {
			u.calendar.ToggleGoal(goal.ID)
		}
	case viewHabits:
		if habit := u.selectedHabitItem(); habit != nil {
			u.calendar.ToggleHabit(habit.ID)
		}
	}
	return nil
}

func (u *UI) selectAll(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.calendar.SelectAll(u.goals, u.habits)
	return nil
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	u.closeOverlay(gui, viewHelp)
	return nil
}

func (u *UI) closeOverlay(gui *gocui.Gui, name string) {
	if gui == nil {
		return
	}
	_ = gui.DeleteView(name)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 22
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewHelp, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func (u *UI) addItem(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	now := u.now()
	switch u.focus {
	case viewGoals:
		u.form = &formState{kind: formGoal, fields: buildGoalFields(nil, now)}
	case viewHabits:
		u.form = &formState{kind: formHabit, fields: buildHabitFields(nil)}
	case viewMilestones:
		owner, _, _, ok := u.currentSource()
		if !ok {
			u.status = "Select a goal or habit first"
			return nil
		}
		u.form = &formState{kind: formMilestone, owner: owner, fields: buildMilestoneFields(nil)}
	default:
		options := sourceOptions(u.goals, u.habits)
		if len(options) == 0 {
			u.status = "Add a goal or habit first"
			return nil
		}
		form := &formState{kind: formEntry, day: u.calendar.Selected(), fields: buildEntryFields(nil, now), options: options}
		if owner, _, _, ok := u.currentSource(); ok {
			form.option = optionIndex(options, owner)
		}
		form.index = entryText
		u.form = form
	}
	return nil
}

func (u *UI) editItem(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewGoals:
		if goal := u.selectedGoalItem(); goal != nil {
			u.form = &formState{kind: formGoal, id: goal.ID, fields: buildGoalFields(goal, u.now())}
		}
	case viewHabits:
		if habit := u.selectedHabitItem(); habit != nil {
			u.form = &formState{kind: formHabit, id: habit.ID, fields: buildHabitFields(habit)}
		}
	case viewMilestones:
		if milestone := u.selectedMilestoneItem(); milestone != nil {
			u.form = &formState{kind: formMilestone, id: milestone.ID, owner: milestone.Owner, fields: buildMilestoneFields(milestone)}
		}
	case viewJournal:
		if entry := u.selectedJournalEntry(); entry != nil {
			// Entries keep their source; the picker only shows it.
			options := []sourceOption{{Owner: entry.Owner, Label: entry.SourceType + ": " + entry.SourceName}}
			u.form = &formState{kind: formEntry, id: entry.ID, day: entry.Timestamp, fields: buildEntryFields(&entry.JournalEntry, u.now()), options: options, index: entryText}
		}
	}
	return nil
}

func (u *UI) openLink(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	goal := u.selectedGoalItem()
	if goal == nil {
		u.status = "Select a goal first"
		return nil
	}
	if len(u.habits) == 0 {
		u.status = "Add a habit first"
		return nil
	}
	u.form = &formState{kind: formLink, owner: model.GoalOwner(goal.ID), fields: buildLinkFields(), options: habitOptions(u.habits)}
	return nil
}

func (u *UI) formTitle() string {
	if u.form == nil {
		return ""
	}
	verb := "New"
	if u.form.id != "" {
		verb = "Edit"
	}
	switch u.form.kind {
	case formGoal:
		return verb + " Goal"
	case formHabit:
		return verb + " Habit"
	case formEntry:
		return verb + " Entry: " + u.form.day.Format("Mon Jan 2")
	case formMilestone:
		return verb + " Milestone"
	case formLink:
		if goal := u.goalByID(u.form.owner.ID); goal != nil {
			return "Link Habit: " + goal.Title
		}
		return "Link Habit"
	default:
		return "Editor"
	}
}

func (u *UI) goalByID(id string) *model.Goal {
	for i := range u.goals {
		if u.goals[i].ID == id {
			return &u.goals[i]
		}
	}
	return nil
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := min(10, max(6, maxY/2))
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewForm, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.formTitle()
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

// submitForm persists the form. On failure the form stays open with its
// values and the error goes to the footer.
func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	added, err := u.persistForm(context.Background())
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.form = nil
	u.status = ""
	u.closeOverlay(gui, viewForm)
	return u.reload(added)
}

func (u *UI) persistForm(ctx context.Context) (model.Filter, error) {
	form := u.form
	added := model.NewFilter()

	switch form.kind {
	case formGoal:
		input, err := parseGoalFields(form.fields)
		if err != nil {
			return added, err
		}
		if form.id != "" {
			_, err := u.store.UpdateGoal(ctx, form.id, input)
			return added, err
		}
		goal, err := u.store.CreateGoal(ctx, input)
		if err != nil {
			return added, err
		}
		added.Goals[goal.ID] = struct{}{}
	case formHabit:
		input := parseHabitFields(form.fields)
		if form.id != "" {
			_, err := u.store.UpdateHabit(ctx, form.id, input)
			return added, err
		}
		habit, err := u.store.CreateHabit(ctx, input)
		if err != nil {
			return added, err
		}
		added.Habits[habit.ID] = struct{}{}
	case formEntry:
		timestamp, err := parseEntryTime(form.day, form.fields[entryTime].Value)
		if err != nil {
			return added, err
		}
		text := form.fields[entryText].Value
		if form.id != "" {
			_, err := u.store.UpdateEntry(ctx, form.id, timestamp, text)
			return added, err
		}
		_, err = u.store.AddEntry(ctx, db.EntryInput{Owner: form.options[form.option].Owner, Timestamp: timestamp, Text: text})
		return added, err
	case formMilestone:
		text := form.fields[milestoneText].Value
		counts := form.fields[milestoneCounts].Value == yesNo(true)
		if form.id != "" {
			_, err := u.store.UpdateMilestone(ctx, form.id, text, counts)
			return added, err
		}
		_, err := u.store.AddMilestone(ctx, db.MilestoneInput{Owner: form.owner, Text: text, CountsTowardCompletion: counts})
		return added, err
	case formLink:
		habitID := form.options[form.option].Owner.ID
		if goal := u.goalByID(form.owner.ID); goal != nil && goal.RelatedTo(habitID) {
			return added, u.store.UnlinkHabit(ctx, form.owner.ID, habitID)
		}
		_, err := u.store.LinkHabit(ctx, form.owner.ID, habitID)
		return added, err
	}
	return added, nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.form = nil
	u.closeOverlay(gui, viewForm)
	return nil
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) fieldValue(field formField) string {
	if field.Kind != fieldPicker || len(u.form.options) == 0 {
		return field.Value
	}
	option := u.form.options[u.form.option]
	value := option.Label
	if u.form.kind == formLink {
		if goal := u.goalByID(u.form.owner.ID); goal != nil && goal.RelatedTo(option.Owner.ID) {
			value += " [linked, enter unlinks]"
		}
	}
	return value
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, u.fieldValue(field))
	}
	current := u.form.fields[u.form.index]
	label := current.Label + ": "
	cursorX := len([]rune(label)) + len([]rune(u.fieldValue(current))) + 2
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	switch field.Kind {
	case fieldToggle:
		switch key {
		case gocui.KeyArrowRight, gocui.KeyArrowLeft, gocui.KeySpace:
			field.Value = yesNo(field.Value != yesNo(true))
		}
		ui.renderForm(view)
		return true
	case fieldPicker:
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			ui.form.option = cycleIndex(ui.form.option, 1, len(ui.form.options))
		case gocui.KeyArrowLeft:
			ui.form.option = cycleIndex(ui.form.option, -1, len(ui.form.options))
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) deleteItem(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	ctx := context.Background()
	var err error
	label := ""
	switch u.focus {
	case viewGoals:
		goal := u.selectedGoalItem()
		if goal == nil {
			return nil
		}
		label = "goal " + goal.Title
		err = u.store.DeleteGoal(ctx, goal.ID)
	case viewHabits:
		habit := u.selectedHabitItem()
		if habit == nil {
			return nil
		}
		label = "habit " + habit.Title
		err = u.store.DeleteHabit(ctx, habit.ID)
	case viewMilestones:
		milestone := u.selectedMilestoneItem()
		if milestone == nil {
			return nil
		}
		label = "milestone " + milestone.Text
		err = u.store.DeleteMilestone(ctx, milestone.ID)
	case viewJournal:
		entry := u.selectedJournalEntry()
		if entry == nil {
			return nil
		}
		label = "entry"
		err = u.store.DeleteEntry(ctx, entry.ID)
	default:
		return nil
	}
	if err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = "Deleted " + label
	return u.reload(model.NewFilter())
}

func (u *UI) toggleMilestone(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus != viewMilestones {
		return nil
	}
	milestone := u.selectedMilestoneItem()
	if milestone == nil {
		return nil
	}
	if _, err := u.store.SetMilestoneCompleted(context.Background(), milestone.ID, !milestone.Completed); err != nil {
		u.status = err.Error()
		return nil
	}
	u.status = ""
	return u.reload(model.NewFilter())
}

func (u *UI) inputActive() bool {
	return u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return gocui.ErrQuit
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes (calendar/goals/habits/milestones/journal/stats)",
		"  h/l or arrows (calendar) previous/next day",
		"  ,/. previous/next week | [/] month | {/} year | t today",
		"  j/k or arrows move selection | mouse click to focus/select",
		"",
		"Actions:",
		"  a add (goal, habit, milestone or journal entry, by pane)",
		"  e edit | d delete | x toggle milestone | L link/unlink habit (Goals pane)",
		"  enter save (form) | tab next field | esc cancel",
		"",
		"Filters and statistics:",
		"  space include/exclude the selected goal or habit",
		"  g include everything | r cycle time range",
		"",
		"Other:",
		"  ? help | esc/q close help | q quit",
	}, "\n")
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}
