package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Joseda-hg/lazygoals/internal/calendar"
	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/db"
	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/report"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"day": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04")
	},
	"percent": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
	"heat": func(day stats.HeatmapDay) int {
		return report.HeatLevel(day.Progress, day.Entries)
	},
	"short": report.ShortID,
}

var (
	indexTemplate  = template.Must(template.New("index.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.tmpl"))
	sourceTemplate = template.Must(template.New("source.tmpl").Funcs(templateFuncs).ParseFS(templateFS, "templates/source.tmpl"))
)

const statsCacheSize = 128

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func WithFirstWeekday(day time.Weekday) Option {
	return func(s *Server) {
		s.firstWeekday = day
	}
}

func WithDefaultRange(r stats.TimeRange) Option {
	return func(s *Server) {
		s.defaultRange = r
	}
}

type Server struct {
	store        *db.Store
	now          func() time.Time
	firstWeekday time.Weekday
	defaultRange stats.TimeRange

	// Keys start with the store revision, so a mutation retires every entry.
	statsCache *lru.Cache[string, stats.Overview]
}

func NewServer(store *db.Store, opts ...Option) *Server {
	cache, err := lru.New[string, stats.Overview](statsCacheSize)
	if err != nil {
		panic(err)
	}
	s := &Server{
		store:        store,
		now:          time.Now,
		defaultRange: stats.AllTime,
		statsCache:   cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.indexHandler)
	r.Get("/goals/{id}", s.goalPageHandler)
	r.Get("/habits/{id}", s.habitPageHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthHandler)

		r.Get("/goals", s.listGoalsHandler)
		r.Post("/goals", s.createGoalHandler)
		r.Get("/goals/{id}", s.getGoalHandler)
		r.Delete("/goals/{id}", s.deleteGoalHandler)
		r.Post("/goals/{id}/habits/{habitID}", s.linkHabitHandler)
		r.Delete("/goals/{id}/habits/{habitID}", s.unlinkHabitHandler)

		r.Get("/habits", s.listHabitsHandler)
		r.Post("/habits", s.createHabitHandler)
		r.Get("/habits/{id}", s.getHabitHandler)
		r.Delete("/habits/{id}", s.deleteHabitHandler)

		r.Post("/entries", s.createEntryHandler)
		r.Delete("/entries/{id}", s.deleteEntryHandler)

		r.Post("/milestones", s.createMilestoneHandler)
		r.Post("/milestones/{id}/complete", s.completeMilestoneHandler)

		r.Get("/journal", s.journalHandler)
		r.Get("/stats", s.statsHandler)
		r.Get("/calendar", s.calendarHandler)
	})
	return r
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	goals, habits, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	controller := s.controllerFor(r, goals, habits)
	filter := controller.Filter()
	timeRange := s.rangeFromRequest(r)
	overview := s.overview(goals, habits, filter, timeRange, controller.Year(), filterKey(r))

	data := struct {
		Month     time.Time
		PrevMonth string
		NextMonth string
		Weekdays  []string
		Grid      [][]stats.HeatmapDay
		Goals     []model.Goal
		Habits    []model.Habit
		Journal   []stats.Entry
		Overview  stats.Overview
		Now       time.Time
	}{
		Month:     controller.MonthStart(),
		PrevMonth: dates.AddMonths(controller.MonthStart(), -1).Format("2006-01"),
		NextMonth: dates.AddMonths(controller.MonthStart(), 1).Format("2006-01"),
		Weekdays:  controller.WeekdayNames(),
		Grid:      heatmapGrid(controller, goals, habits, filter),
		Goals:     goals,
		Habits:    habits,
		Journal:   stats.JournalEntries(controller.Selected(), goals, habits, filter),
		Overview:  overview,
		Now:       s.now(),
	}

	if err := indexTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

// heatmapGrid pairs every cell of the month grid with its heat-map day.
// Blank cells keep a zero Date.
func heatmapGrid(controller *calendar.Controller, goals []model.Goal, habits []model.Habit, filter model.Filter) [][]stats.HeatmapDay {
	days := stats.MonthHeatmap(controller.MonthStart(), goals, habits, filter)
	grid := controller.MonthGrid()
	rows := make([][]stats.HeatmapDay, 0, len(grid))
	for _, week := range grid {
		row := make([]stats.HeatmapDay, len(week))
		for i, cell := range week {
			if !cell.IsZero() {
				row[i] = days[cell.Day()-1]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

type sourcePage struct {
	Kind       string
	Title      string
	Notes      string
	Deadline   time.Time
	Summary    stats.SourceSummary
	Progress   float64
	Milestones []model.Milestone
	Entries    []model.JournalEntry
	Related    []string
	Now        time.Time
}

func (s *Server) goalPageHandler(w http.ResponseWriter, r *http.Request) {
	goal, err := s.store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	timeRange := s.rangeFromRequest(r)
	now := s.now()
	data := sourcePage{
		Kind:       model.OwnerGoal.Label(),
		Title:      goal.Title,
		Notes:      goal.Notes,
		Deadline:   goal.Deadline,
		Summary:    stats.GoalSummary(goal, timeRange, now, now.Year()),
		Progress:   goal.CompletionProgress(),
		Milestones: goal.Milestones,
		Entries:    newestFirst(goal.Entries),
		Now:        now,
	}
	for _, habit := range goal.Habits {
		data.Related = append(data.Related, habit.Title)
	}

	if err := sourceTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) habitPageHandler(w http.ResponseWriter, r *http.Request) {
	goals, habits, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	id := chi.URLParam(r, "id")
	var habit *model.Habit
	for i := range habits {
		if habits[i].ID == id {
			habit = &habits[i]
			break
		}
	}
	if habit == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("habit %s: %w", id, db.ErrNotFound))
		return
	}

	timeRange := s.rangeFromRequest(r)
	now := s.now()
	data := sourcePage{
		Kind:       model.OwnerHabit.Label(),
		Title:      habit.Title,
		Notes:      habit.Notes,
		Summary:    stats.HabitSummary(*habit, timeRange, now, now.Year()),
		Milestones: habit.Milestones,
		Entries:    newestFirst(habit.Entries),
		Now:        now,
	}
	for _, goal := range goals {
		if habit.RelatedTo(goal.ID) {
			data.Related = append(data.Related, goal.Title)
		}
	}

	if err := sourceTemplate.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"revision": s.store.Revision(),
	})
}

type goalRequest struct {
	Title    string `json:"title"`
	Deadline string `json:"deadline"`
	Notes    string `json:"notes"`
	Private  bool   `json:"private"`
}

type habitRequest struct {
	Title   string `json:"title"`
	Notes   string `json:"notes"`
	Private bool   `json:"private"`
}

type ownerRequest struct {
	GoalID  string `json:"goal_id"`
	HabitID string `json:"habit_id"`
}

func (o ownerRequest) owner() (model.Owner, error) {
	switch {
	case o.GoalID != "" && o.HabitID != "":
		return model.Owner{}, errors.New("exactly one of goal_id and habit_id is required")
	case o.GoalID != "":
		return model.GoalOwner(o.GoalID), nil
	case o.HabitID != "":
		return model.HabitOwner(o.HabitID), nil
	default:
		return model.Owner{}, errors.New("goal_id or habit_id is required")
	}
}

type entryRequest struct {
	ownerRequest
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

type milestoneRequest struct {
	ownerRequest
	Text                   string `json:"text"`
	CountsTowardCompletion bool   `json:"counts_toward_completion"`
}

type completeRequest struct {
	Completed *bool `json:"completed"`
}

func (s *Server) listGoalsHandler(w http.ResponseWriter, r *http.Request) {
	goals, err := s.store.ListGoals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(goals))
}

func (s *Server) createGoalHandler(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var deadline time.Time
	if strings.TrimSpace(req.Deadline) != "" {
		parsed, ok := dates.ParseDay(req.Deadline, time.Local)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid deadline %q", req.Deadline))
			return
		}
		deadline = parsed
	}

	goal, err := s.store.CreateGoal(r.Context(), db.GoalInput{Title: req.Title, Deadline: deadline, Notes: req.Notes, Private: req.Private})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) getGoalHandler(w http.ResponseWriter, r *http.Request) {
	goal, err := s.store.GetGoal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) deleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteGoal(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) linkHabitHandler(w http.ResponseWriter, r *http.Request) {
	relation, err := s.store.LinkHabit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "habitID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relation)
}

func (s *Server) unlinkHabitHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.UnlinkHabit(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "habitID")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listHabitsHandler(w http.ResponseWriter, r *http.Request) {
	habits, err := s.store.ListHabits(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(habits))
}

func (s *Server) createHabitHandler(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	habit, err := s.store.CreateHabit(r.Context(), db.HabitInput{Title: req.Title, Notes: req.Notes, Private: req.Private})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, habit)
}

func (s *Server) getHabitHandler(w http.ResponseWriter, r *http.Request) {
	habit, err := s.store.GetHabit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (s *Server) deleteHabitHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteHabit(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createEntryHandler(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	owner, err := req.owner()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var timestamp time.Time
	if value := strings.TrimSpace(req.Timestamp); value != "" {
		timestamp, err = time.Parse(time.RFC3339, value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid timestamp %q", value))
			return
		}
	}

	entry, err := s.store.AddEntry(r.Context(), db.EntryInput{Owner: owner, Timestamp: timestamp, Text: req.Text})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) deleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	var req milestoneRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	owner, err := req.owner()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	milestone, err := s.store.AddMilestone(r.Context(), db.MilestoneInput{Owner: owner, Text: req.Text, CountsTowardCompletion: req.CountsTowardCompletion})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, milestone)
}

// completeMilestoneHandler marks a milestone done unless the body says
// {"completed": false}.
func (s *Server) completeMilestoneHandler(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	done := req.Completed == nil || *req.Completed

	milestone, err := s.store.SetMilestoneCompleted(r.Context(), chi.URLParam(r, "id"), done)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestone)
}

func (s *Server) journalHandler(w http.ResponseWriter, r *http.Request) {
	day := s.now()
	if value := strings.TrimSpace(r.URL.Query().Get("date")); value != "" {
		parsed, ok := dates.ParseDay(value, time.Local)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date %q", value))
			return
		}
		day = parsed
	}

	goals, habits, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	filter := filterFromRequest(r, goals, habits)

	writeJSON(w, http.StatusOK, struct {
		Date     string        `json:"date"`
		Progress float64       `json:"progress"`
		Entries  []stats.Entry `json:"entries"`
	}{
		Date:     dates.DayKey(day),
		Progress: stats.DailyProgress(day, goals, habits, filter),
		Entries:  orEmpty(stats.JournalEntries(day, goals, habits, filter)),
	})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	timeRange := s.defaultRange
	if value := r.URL.Query().Get("range"); value != "" {
		parsed, err := stats.ParseTimeRange(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		timeRange = parsed
	}
	year := s.now().Year()
	if value := strings.TrimSpace(r.URL.Query().Get("year")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid year %q", value))
			return
		}
		year = parsed
	}

	key := s.statsKey(timeRange, year, filterKey(r))
	if overview, ok := s.statsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, overview)
		return
	}

	goals, habits, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	overview := stats.BuildOverview(goals, habits, filterFromRequest(r, goals, habits), timeRange, s.now(), year, s.firstWeekday)
	s.statsCache.Add(key, overview)
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) calendarHandler(w http.ResponseWriter, r *http.Request) {
	goals, habits, err := s.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if value := strings.TrimSpace(r.URL.Query().Get("month")); value != "" {
		if _, err := time.ParseInLocation("2006-01", value, time.Local); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid month %q", value))
			return
		}
	}

	controller := s.controllerFor(r, goals, habits)
	writeJSON(w, http.StatusOK, struct {
		Month              string             `json:"month"`
		DaysInMonth        int                `json:"days_in_month"`
		FirstWeekdayOffset int                `json:"first_weekday_offset"`
		WeekdayNames       []string           `json:"weekday_names"`
		Days               []stats.HeatmapDay `json:"days"`
	}{
		Month:              controller.MonthStart().Format("2006-01"),
		DaysInMonth:        controller.DaysInMonth(),
		FirstWeekdayOffset: controller.FirstWeekdayOffset(),
		WeekdayNames:       controller.WeekdayNames(),
		Days:               stats.MonthHeatmap(controller.MonthStart(), goals, habits, controller.Filter()),
	})
}

// statsKey includes the day because streaks and windows move at midnight.
func (s *Server) statsKey(timeRange stats.TimeRange, year int, filter string) string {
	return fmt.Sprintf("%d|%s|%s|%d|%s", s.store.Revision(), dates.DayKey(s.now()), timeRange, year, filter)
}

func (s *Server) overview(goals []model.Goal, habits []model.Habit, filter model.Filter, timeRange stats.TimeRange, year int, filterKey string) stats.Overview {
	key := s.statsKey(timeRange, year, filterKey)
	if overview, ok := s.statsCache.Get(key); ok {
		return overview
	}
	overview := stats.BuildOverview(goals, habits, filter, timeRange, s.now(), year, s.firstWeekday)
	s.statsCache.Add(key, overview)
	return overview
}

// controllerFor positions a calendar controller on the month and day named
// by the request and applies its filter.
func (s *Server) controllerFor(r *http.Request, goals []model.Goal, habits []model.Habit) *calendar.Controller {
	controller := calendar.New(calendar.WithClock(s.now), calendar.WithFirstWeekday(s.firstWeekday))
	query := r.URL.Query()
	if value := strings.TrimSpace(query.Get("date")); value != "" {
		if day, ok := dates.ParseDay(value, time.Local); ok {
			controller.Select(day)
		}
	} else if value := strings.TrimSpace(query.Get("month")); value != "" {
		if month, err := time.ParseInLocation("2006-01", value, time.Local); err == nil {
			controller.Select(month)
		}
	}
	if value := strings.TrimSpace(query.Get("year")); value != "" {
		if year, err := strconv.Atoi(value); err == nil {
			controller.MoveYear(year - controller.Year())
		}
	}

	filter := filterFromRequest(r, goals, habits)
	controller.ClearFilters()
	for id := range filter.Goals {
		controller.ToggleGoal(id)
	}
	for id := range filter.Habits {
		controller.ToggleHabit(id)
	}
	return controller
}

func (s *Server) rangeFromRequest(r *http.Request) stats.TimeRange {
	value := r.URL.Query().Get("range")
	if value == "" {
		return s.defaultRange
	}
	timeRange, err := stats.ParseTimeRange(value)
	if err != nil {
		return s.defaultRange
	}
	return timeRange
}

// filterFromRequest reads comma separated goals= and habits= ids. A request
// naming neither includes everything.
func filterFromRequest(r *http.Request, goals []model.Goal, habits []model.Habit) model.Filter {
	query := r.URL.Query()
	_, hasGoals := query["goals"]
	_, hasHabits := query["habits"]
	if !hasGoals && !hasHabits {
		return model.AllOf(goals, habits)
	}

	filter := model.NewFilter()
	for _, id := range splitIDs(query.Get("goals")) {
		filter.Goals[id] = struct{}{}
	}
	for _, id := range splitIDs(query.Get("habits")) {
		filter.Habits[id] = struct{}{}
	}
	return filter
}

func filterKey(r *http.Request) string {
	query := r.URL.Query()
	_, hasGoals := query["goals"]
	_, hasHabits := query["habits"]
	if !hasGoals && !hasHabits {
		return "all"
	}
	return "g=" + query.Get("goals") + "&h=" + query.Get("habits")
}

func splitIDs(value string) []string {
	var ids []string
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

func newestFirst(entries []model.JournalEntry) []model.JournalEntry {
	result := make([]model.JournalEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		result = append(result, entries[i])
	}
	return result
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, model.ErrTitleRequired), errors.Is(err, model.ErrTextRequired), errors.Is(err, model.ErrDeadlineRequired):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}
