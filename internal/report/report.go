// Package report prints goals, habits, journals and statistics for the
// command line.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

const shortIDLen = 8

type Printer struct {
	Out io.Writer
	Now func() time.Time
}

func New(out io.Writer) *Printer {
	if out == nil {
		out = color.Output
	}
	return &Printer{Out: out, Now: time.Now}
}

func (p *Printer) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func (p *Printer) title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(p.Out, title)
}

func (p *Printer) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(p.Out, " none\n\n")
}

func (p *Printer) table(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(p.Out, tbl.String())
	_, _ = fmt.Fprintln(p.Out, "")
}

func newTable(headers ...any) *uitable.Table {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	row := make([]any, 0, len(headers))
	for _, header := range headers {
		row = append(row, bold.Sprint(header))
	}
	tbl.AddRow(row...)
	return tbl
}

func (p *Printer) Goals(goals []model.Goal) {
	p.title("Goals")
	if len(goals) == 0 {
		p.none()
		return
	}

	now := p.now()
	done := color.New(color.FgGreen)
	tbl := newTable("ID", "Title", "Deadline", "Days left", "Worked", "Progress", "Habits")
	for _, goal := range goals {
		progress := fmt.Sprintf("%3.0f%%", goal.CompletionProgress()*100)
		if goal.IsCompleted() {
			progress = done.Sprint("done")
		}
		tbl.AddRow(ShortID(goal.ID), goal.Title, Deadline(goal.Deadline, now), goal.DaysRemaining(now), goal.DaysWorked(), progress, len(goal.Habits))
	}
	p.table(tbl)
}

func (p *Printer) Habits(habits []model.Habit) {
	p.title("Habits")
	if len(habits) == 0 {
		p.none()
		return
	}

	now := p.now()
	tbl := newTable("ID", "Title", "Worked", "Streak", "Last entry", "Goals")
	for _, habit := range habits {
		timestamps := habit.Timestamps()
		last := "never"
		if latest := latestTime(timestamps); !latest.IsZero() {
			last = humanize.RelTime(latest, now, "ago", "from now")
		}
		tbl.AddRow(ShortID(habit.ID), habit.Title, habit.DaysWorked(), stats.CurrentStreak(timestamps, now), last, len(habit.GoalIDs))
	}
	p.table(tbl)
}

func (p *Printer) Goal(goal model.Goal) {
	now := p.now()
	p.title(goal.Title)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID:", goal.ID)
	tbl.AddRow("Deadline:", Deadline(goal.Deadline, now))
	tbl.AddRow("Days worked:", goal.DaysWorked())
	tbl.AddRow("Progress:", fmt.Sprintf("%.0f%%", goal.CompletionProgress()*100))
	if goal.Notes != "" {
		tbl.AddRow("Notes:", goal.Notes)
	}
	if len(goal.Habits) > 0 {
		titles := make([]string, 0, len(goal.Habits))
		for _, habit := range goal.Habits {
			titles = append(titles, habit.Title)
		}
		tbl.AddRow("Habits:", strings.Join(titles, ", "))
	}
	p.table(tbl)

	p.Milestones(goal.Milestones)
	p.Entries(goal.Entries)
}

func (p *Printer) Habit(habit model.Habit) {
	p.title(habit.Title)

	timestamps := habit.Timestamps()
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("ID:", habit.ID)
	tbl.AddRow("Days worked:", habit.DaysWorked())
	tbl.AddRow("Current streak:", stats.CurrentStreak(timestamps, p.now()))
	tbl.AddRow("Longest streak:", stats.LongestStreak(timestamps))
	if habit.Notes != "" {
		tbl.AddRow("Notes:", habit.Notes)
	}
	p.table(tbl)

	p.Milestones(habit.Milestones)
	p.Entries(habit.Entries)
}

func (p *Printer) Milestones(milestones []model.Milestone) {
	p.title("Milestones")
	if len(milestones) == 0 {
		p.none()
		return
	}

	now := p.now()
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, milestone := range milestones {
		mark := "[ ]"
		when := ""
		if milestone.Completed {
			mark = "[x]"
			if milestone.CompletedAt != nil {
				when = faint.Sprint(humanize.RelTime(*milestone.CompletedAt, now, "ago", "from now"))
			}
		}
		criterion := ""
		if milestone.CountsTowardCompletion {
			criterion = "*"
		}
		tbl.AddRow(ShortID(milestone.ID), mark+criterion, milestone.Text, when)
	}
	p.table(tbl)
}

func (p *Printer) Entries(entries []model.JournalEntry) {
	p.title("Journal")
	if len(entries) == 0 {
		p.none()
		return
	}

	y := color.New(color.FgHiYellow, color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		tbl.AddRow(y.Sprint(entry.Timestamp.Format("2006-01-02 15:04")), entry.Text)
	}
	p.table(tbl)
}

// Journal prints the entries of one day, newest first.
func (p *Printer) Journal(day time.Time, entries []stats.Entry) {
	p.title("Journal for " + day.Format("Monday, January 2 2006"))
	if len(entries) == 0 {
		p.none()
		return
	}

	y := color.New(color.FgHiYellow, color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 60
	for _, entry := range entries {
		tbl.AddRow(y.Sprint(entry.Timestamp.Format("15:04")), entry.SourceType, entry.SourceName, entry.Text)
	}
	p.table(tbl)
}

func (p *Printer) Overview(overview stats.Overview) {
	heading := overview.Range.Label()
	if overview.Range == stats.Year {
		heading = fmt.Sprintf("%s %d", heading, overview.Year)
	}
	p.title("Statistics: " + heading)

	summary := overview.Summary
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Entries:", summary.TotalEntries)
	tbl.AddRow("Days active:", fmt.Sprintf("%d of %d", summary.DaysActive, summary.WindowDays))
	tbl.AddRow("Consistency:", fmt.Sprintf("%d%%", summary.ConsistencyRate))
	tbl.AddRow("Current streak:", summary.CurrentStreak)
	tbl.AddRow("Longest streak:", summary.LongestStreak)
	tbl.AddRow("Goals completed:", fmt.Sprintf("%d of %d", overview.GoalsDone, overview.GoalsTracked))
	p.table(tbl)

	p.title("Weekly activity")
	_, _ = fmt.Fprintln(p.Out, Histogram(overview.Histogram))
	_, _ = fmt.Fprintln(p.Out, "")

	p.title("By weekday")
	p.slices(overview.DayOfWeek)

	p.title("By source")
	if len(overview.BySource) == 0 {
		p.none()
	} else {
		p.slices(overview.BySource)
	}

	if len(overview.Sources) > 0 {
		p.title("Sources")
		src := newTable("Type", "Title", "Entries", "Streak", "Consistency")
		for _, source := range overview.Sources {
			src.AddRow(source.Kind.Label(), source.Title, source.Summary.TotalEntries, source.Summary.CurrentStreak, fmt.Sprintf("%d%%", source.Summary.ConsistencyRate))
		}
		p.table(src)
	}
}

func (p *Printer) slices(slices []stats.Slice) {
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, slice := range slices {
		tbl.AddRow(slice.Label, slice.Count, fmt.Sprintf("%5.1f%%", slice.Percent), Bar(slice.Percent, 100, 20))
	}
	p.table(tbl)
}

// Deadline renders a deadline date with a humanized distance from now.
func Deadline(deadline, now time.Time) string {
	if deadline.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", deadline.Format("2006-01-02"), humanize.RelTime(deadline, now, "ago", "from now"))
}

var sparks = []rune(" ▁▂▃▄▅▆▇█")

// Histogram renders one sparkline row per month.
func Histogram(months []stats.MonthBins) string {
	largest := stats.MaxBin(months)
	var b strings.Builder
	for i, month := range months {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(month.Month.Format("Jan 2006"))
		b.WriteString("  ")
		total := 0
		for _, week := range month.Weeks {
			b.WriteRune(spark(week.Count, largest))
			total += week.Count
		}
		fmt.Fprintf(&b, "  %d", total)
	}
	return b.String()
}

func spark(count, largest int) rune {
	if count == 0 || largest == 0 {
		return '·'
	}
	level := 1 + (count*(len(sparks)-2))/largest
	return sparks[min(level, len(sparks)-1)]
}

// Bar is a fixed width bar scaled against total.
func Bar(value, total float64, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := int(value / total * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func latestTime(timestamps []time.Time) time.Time {
	var latest time.Time
	for _, ts := range timestamps {
		if ts.After(latest) {
			latest = ts
		}
	}
	return latest
}
