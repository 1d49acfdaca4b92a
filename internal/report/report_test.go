package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

func init() {
	color.NoColor = true
}

func newTestPrinter(buf *bytes.Buffer) *Printer {
	p := New(buf)
	p.Now = func() time.Time {
		return time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestGoalsTable(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPrinter(&buf)

	done := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	p.Goals([]model.Goal{
		{
			ID:       "0123456789abcdef",
			Title:    "Run a marathon",
			Deadline: time.Date(2026, time.October, 29, 0, 0, 0, 0, time.UTC),
			Milestones: []model.Milestone{
				{Text: "Half", Completed: true, CompletedAt: &done, CountsTowardCompletion: true},
			},
		},
	})

	out := buf.String()
	if !strings.Contains(out, "01234567 ") || strings.Contains(out, "0123456789") {
		t.Fatalf("expected shortened id, got %q", out)
	}
	if !strings.Contains(out, "Run a marathon") || !strings.Contains(out, "done") {
		t.Fatalf("expected title and completion, got %q", out)
	}
	if !strings.Contains(out, "from now") {
		t.Fatalf("expected humanized deadline, got %q", out)
	}
}

func TestEmptyListsPrintNone(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPrinter(&buf)
	p.Habits(nil)
	p.Journal(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), nil)

	out := buf.String()
	if strings.Count(out, "none") != 2 {
		t.Fatalf("expected two empty markers, got %q", out)
	}
	if !strings.Contains(out, "Monday, October 19 2026") {
		t.Fatalf("expected journal heading, got %q", out)
	}
}

func TestOverviewPrintsSummary(t *testing.T) {
	var buf bytes.Buffer
	p := newTestPrinter(&buf)

	now := time.Date(2026, time.January, 5, 12, 0, 0, 0, time.UTC)
	habit := model.Habit{ID: "h1", Title: "Stretch"}
	for _, day := range []int{1, 2, 3, 5} {
		habit.Entries = append(habit.Entries, model.JournalEntry{Timestamp: time.Date(2026, time.January, day, 8, 0, 0, 0, time.UTC)})
	}
	habits := []model.Habit{habit}
	overview := stats.BuildOverview(nil, habits, model.AllOf(nil, habits), stats.AllTime, now, 2026, time.Sunday)
	p.Overview(overview)

	out := buf.String()
	for _, want := range []string{"Statistics: All time", "Longest streak:", "By weekday", "Stretch", "Jan 2026"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output %q", want, out)
		}
	}
}

func TestHistogramSparkline(t *testing.T) {
	months := []stats.MonthBins{{
		Month: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		Weeks: []stats.WeekBin{{Count: 0}, {Count: 3}, {Count: 0}, {Count: 0}},
	}}
	got := Histogram(months)
	if got != "Feb 2026  ·█··  3" {
		t.Fatalf("unexpected histogram %q", got)
	}
}

func TestBarAndHeatLevel(t *testing.T) {
	if got := Bar(50, 100, 10); got != "█████░░░░░" {
		t.Fatalf("unexpected bar %q", got)
	}
	if Bar(1, 0, 10) != "" {
		t.Fatalf("expected empty bar for zero total")
	}
	cases := []struct {
		progress float64
		entries  int
		want     int
	}{
		{0, 0, 0},
		{0, 2, 1},
		{0.25, 1, 2},
		{0.5, 1, 3},
		{1, 4, 4},
	}
	for _, tc := range cases {
		if got := HeatLevel(tc.progress, tc.entries); got != tc.want {
			t.Fatalf("HeatLevel(%v, %d) = %d, want %d", tc.progress, tc.entries, got, tc.want)
		}
	}
}

func TestHeatmapLaysOutMonth(t *testing.T) {
	month := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	days := []stats.HeatmapDay{{Date: time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC), Entries: 1, Progress: 1}}
	out := Heatmap(month, days, time.Monday, time.Time{})

	if !strings.Contains(out, "February 2026") {
		t.Fatalf("expected month title, got %q", out)
	}
	if !strings.Contains(out, "Mon") || !strings.Contains(out, "28") || strings.Contains(out, "29") {
		t.Fatalf("unexpected grid %q", out)
	}
}
