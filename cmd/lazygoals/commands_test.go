package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/lazygoals/internal/model"
)

func TestPrintCalendarShowsMonthOnce(t *testing.T) {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.Local)
	habits := []model.Habit{{
		ID:    "h1",
		Title: "Walk",
		Entries: []model.JournalEntry{
			{ID: "e1", Owner: model.HabitOwner("h1"), Timestamp: now, Text: "5k"},
			{ID: "e2", Owner: model.HabitOwner("h1"), Timestamp: now.AddDate(0, 0, -2), Text: "3k"},
		},
	}}

	var buf bytes.Buffer
	printCalendar(&buf, nil, habits, now, now, time.Monday)
	out := buf.String()
	if got := strings.Count(out, "October 2026"); got != 1 {
		t.Fatalf("expected month title once, got %d in:\n%s", got, out)
	}
	if !strings.Contains(out, "2 entries over 31 days") {
		t.Fatalf("expected entry count, got:\n%s", out)
	}

	buf.Reset()
	month := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.Local)
	printCalendar(&buf, nil, habits, month, now, time.Monday)
	out = buf.String()
	if strings.Count(out, "February 2024") != 1 || !strings.Contains(out, "0 entries over 29 days") {
		t.Fatalf("unexpected February output:\n%s", out)
	}
}
