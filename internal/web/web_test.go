package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/db"
	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

func newTestServer(t *testing.T) (*Server, *db.Store, func()) {
	t.Helper()
	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := db.NewStore(sqlDB)
	now := func() time.Time {
		return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)
	}
	return NewServer(store, WithClock(now)), store, func() {
		_ = sqlDB.Close()
	}
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateGoalValidation(t *testing.T) {
	server, _, cleanup := newTestServer(t)
	defer cleanup()
	handler := server.Handler()

	rec := do(t, handler, http.MethodPost, "/api/goals", `{"title":"  ","deadline":"2026-12-31"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", rec.Code)
	}
	rec = do(t, handler, http.MethodPost, "/api/goals", `{"title":"Ship it"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing deadline, got %d", rec.Code)
	}

	rec = do(t, handler, http.MethodPost, "/api/goals", `{"title":"Ship it","deadline":"2026-12-31"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var goal model.Goal
	if err := json.Unmarshal(rec.Body.Bytes(), &goal); err != nil {
		t.Fatalf("decode goal: %v", err)
	}
	if goal.Title != "Ship it" || goal.Deadline.Day() != 31 {
		t.Fatalf("unexpected goal %+v", goal)
	}

	rec = do(t, handler, http.MethodGet, "/api/goals/"+goal.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching goal, got %d", rec.Code)
	}
	rec = do(t, handler, http.MethodDelete, "/api/goals/"+goal.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting goal, got %d", rec.Code)
	}
	rec = do(t, handler, http.MethodGet, "/api/goals/"+goal.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestEntriesAndJournal(t *testing.T) {
	server, store, cleanup := newTestServer(t)
	defer cleanup()
	handler := server.Handler()

	habit, err := store.CreateHabit(context.Background(), db.HabitInput{Title: "Meditate"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	rec := do(t, handler, http.MethodPost, "/api/entries", `{"habit_id":"`+habit.ID+`","text":"ten minutes","timestamp":"2026-10-18T07:30:00Z"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(t, handler, http.MethodPost, "/api/entries", `{"text":"orphan"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without owner, got %d", rec.Code)
	}
	rec = do(t, handler, http.MethodPost, "/api/entries", `{"goal_id":"missing","text":"orphan"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown goal, got %d", rec.Code)
	}

	day := time.Date(2026, time.October, 18, 7, 30, 0, 0, time.UTC).Local().Format("2006-01-02")
	rec = do(t, handler, http.MethodGet, "/api/journal?date="+day, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var journal struct {
		Progress float64       `json:"progress"`
		Entries  []stats.Entry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &journal); err != nil {
		t.Fatalf("decode journal: %v", err)
	}
	if len(journal.Entries) != 1 || journal.Entries[0].SourceName != "Meditate" || journal.Entries[0].SourceType != "Habit" {
		t.Fatalf("unexpected journal %+v", journal.Entries)
	}
	if journal.Progress != 1 {
		t.Fatalf("expected full progress, got %v", journal.Progress)
	}

	rec = do(t, handler, http.MethodGet, "/api/journal?date=yesterday", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rec.Code)
	}
}

func TestMilestoneCompletion(t *testing.T) {
	server, store, cleanup := newTestServer(t)
	defer cleanup()
	handler := server.Handler()

	goal, err := store.CreateGoal(context.Background(), db.GoalInput{Title: "Learn piano", Deadline: time.Now().AddDate(0, 2, 0)})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	rec := do(t, handler, http.MethodPost, "/api/milestones", `{"goal_id":"`+goal.ID+`","text":"First song","counts_toward_completion":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var milestone model.Milestone
	if err := json.Unmarshal(rec.Body.Bytes(), &milestone); err != nil {
		t.Fatalf("decode milestone: %v", err)
	}

	rec = do(t, handler, http.MethodPost, "/api/milestones/"+milestone.ID+"/complete", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	completed, err := store.GetGoal(context.Background(), goal.ID)
	if err != nil {
		t.Fatalf("get goal: %v", err)
	}
	if !completed.IsCompleted() {
		t.Fatalf("expected goal completed")
	}

	rec = do(t, handler, http.MethodPost, "/api/milestones/"+milestone.ID+"/complete", `{"completed":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &milestone); err != nil {
		t.Fatalf("decode milestone: %v", err)
	}
	if milestone.Completed || milestone.CompletedAt != nil {
		t.Fatalf("expected completion cleared, got %+v", milestone)
	}
}

func TestStatsCacheFollowsRevision(t *testing.T) {
	server, store, cleanup := newTestServer(t)
	defer cleanup()
	handler := server.Handler()

	habit, err := store.CreateHabit(context.Background(), db.HabitInput{Title: "Walk"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	fetch := func() stats.Overview {
		rec := do(t, handler, http.MethodGet, "/api/stats?range=lastWeek", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var overview stats.Overview
		if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
			t.Fatalf("decode stats: %v", err)
		}
		return overview
	}

	if got := fetch().Summary.TotalEntries; got != 0 {
		t.Fatalf("expected no entries, got %d", got)
	}
	if server.statsCache.Len() != 1 {
		t.Fatalf("expected one cached overview, got %d", server.statsCache.Len())
	}
	fetch()
	if server.statsCache.Len() != 1 {
		t.Fatalf("expected cache hit, got %d entries", server.statsCache.Len())
	}

	at := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.Local)
	if _, err := store.AddEntry(context.Background(), db.EntryInput{Owner: model.HabitOwner(habit.ID), Timestamp: at, Text: "5k"}); err != nil {
		t.Fatalf("add entry: %v", err)
	}
	overview := fetch()
	if overview.Summary.TotalEntries != 1 || overview.Summary.WindowDays != 7 {
		t.Fatalf("expected fresh stats after mutation, got %+v", overview.Summary)
	}

	rec := do(t, handler, http.MethodGet, "/api/stats?range=forever", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown range, got %d", rec.Code)
	}
}

func TestLinkAndPages(t *testing.T) {
	server, store, cleanup := newTestServer(t)
	defer cleanup()
	handler := server.Handler()

	goal, err := store.CreateGoal(context.Background(), db.GoalInput{Title: "Get strong", Deadline: time.Now().AddDate(0, 1, 0)})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	habit, err := store.CreateHabit(context.Background(), db.HabitInput{Title: "Lift"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	rec := do(t, handler, http.MethodPost, "/api/goals/"+goal.ID+"/habits/"+habit.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 linking, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, handler, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for index, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Get strong") || !strings.Contains(body, "Lift") || !strings.Contains(body, "October 2026") {
		t.Fatalf("expected goals, habits and month in index")
	}

	rec = do(t, handler, http.MethodGet, "/habits/"+habit.ID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Get strong") {
		t.Fatalf("expected habit page listing its goal, got %d", rec.Code)
	}
	rec = do(t, handler, http.MethodGet, "/goals/"+goal.ID, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Lift") {
		t.Fatalf("expected goal page listing its habit, got %d", rec.Code)
	}

	rec = do(t, handler, http.MethodDelete, "/api/goals/"+goal.ID+"/habits/"+habit.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 unlinking, got %d", rec.Code)
	}
	rec = do(t, handler, http.MethodDelete, "/api/goals/"+goal.ID+"/habits/"+habit.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 unlinking twice, got %d", rec.Code)
	}

	rec = do(t, handler, http.MethodGet, "/api/calendar?month=2026-02", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for calendar, got %d", rec.Code)
	}
	var cal struct {
		Month       string `json:"month"`
		DaysInMonth int    `json:"days_in_month"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cal); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if cal.Month != "2026-02" || cal.DaysInMonth != 28 {
		t.Fatalf("unexpected calendar %+v", cal)
	}
}

func TestCompleteMilestoneWithChunkedEmptyBody(t *testing.T) {
	server, store, cleanup := newTestServer(t)
	defer cleanup()
	handler := server.Handler()

	habit, err := store.CreateHabit(context.Background(), db.HabitInput{Title: "Floss"})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	milestone, err := store.AddMilestone(context.Background(), db.MilestoneInput{Owner: model.HabitOwner(habit.ID), Text: "A full week"})
	if err != nil {
		t.Fatalf("add milestone: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/milestones/"+milestone.ID+"/complete", strings.NewReader(""))
	req.ContentLength = -1
	req.TransferEncoding = []string{"chunked"}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty chunked body, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := store.GetMilestone(context.Background(), milestone.ID)
	if err != nil {
		t.Fatalf("get milestone: %v", err)
	}
	if !updated.Completed {
		t.Fatalf("expected milestone completed")
	}

	rec = do(t, handler, http.MethodPost, "/api/milestones/"+milestone.ID+"/complete", `{"completed":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for truncated body, got %d", rec.Code)
	}
}
