package tui

import (
	"strings"
	"testing"
	"time"
)

func TestCalendarCellMarksActiveAndSelectedDays(t *testing.T) {
	day := time.Date(2026, time.October, 7, 0, 0, 0, 0, time.Local)

	if got := calendarCell(time.Time{}, false, false); got != "    " {
		t.Fatalf("expected blank padding cell, got %q", got)
	}
	if got := calendarCell(day, false, false); got != "  7 " {
		t.Fatalf("expected plain cell, got %q", got)
	}
	if got := calendarCell(day, true, false); got != "[ 7]" {
		t.Fatalf("expected bracketed selection, got %q", got)
	}

	active := calendarCell(day, true, true)
	if active != "["+activeDayColor.Sprint(" 7")+"]" {
		t.Fatalf("expected coloured day inside brackets, got %q", active)
	}
	if !strings.Contains(active, "\x1b[32m") {
		t.Fatalf("expected green escape in active cell, got %q", active)
	}
}
