package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

var (
	heatTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	heatHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Width(4).
			Align(lipgloss.Right)

	heatCellStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Right)

	heatSelectedStyle = heatCellStyle.
				Underline(true).
				Bold(true)

	heatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)

	// Greens from no activity to every selected source worked on.
	heatLevels = []lipgloss.Color{"#3A3A3A", "#0E4429", "#006D32", "#26A641", "#39D353"}
)

// Heatmap draws a month as a calendar grid coloured by daily progress.
func Heatmap(month time.Time, days []stats.HeatmapDay, firstWeekday time.Weekday, selected time.Time) string {
	first := dates.StartOfMonth(month)
	byDay := make(map[int]stats.HeatmapDay, len(days))
	for _, day := range days {
		if day.Date.Year() == first.Year() && day.Date.Month() == first.Month() {
			byDay[day.Date.Day()] = day
		}
	}

	header := make([]string, 0, 7)
	for _, name := range dates.WeekdayNames(firstWeekday) {
		header = append(header, heatHeaderStyle.Render(name))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	offset := dates.WeekdayOffset(first, firstWeekday)
	total := dates.DaysInMonth(first)
	cells := make([]string, 0, 7)
	for i := 0; i < offset; i++ {
		cells = append(cells, heatCellStyle.Render(""))
	}
	for d := 1; d <= total; d++ {
		day := byDay[d]
		style := heatCellStyle
		if !selected.IsZero() && dates.SameDay(selected, dates.AddDays(first, d-1)) {
			style = heatSelectedStyle
		}
		style = style.Foreground(heatLevels[HeatLevel(day.Progress, day.Entries)])
		cells = append(cells, style.Render(fmt.Sprintf("%d", d)))
		if len(cells) == 7 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = cells[:0]
		}
	}
	if len(cells) > 0 {
		for len(cells) < 7 {
			cells = append(cells, heatCellStyle.Render(""))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	legend := make([]string, 0, len(heatLevels))
	for _, level := range heatLevels {
		legend = append(legend, lipgloss.NewStyle().Foreground(level).Render("■"))
	}
	rows = append(rows, "", "less "+strings.Join(legend, " ")+" more")

	grid := heatBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.JoinVertical(lipgloss.Left, heatTitleStyle.Render(first.Format("January 2006")), grid)
}

// HeatLevel buckets a day into one of the heat-map shades. Days with entries
// but no selected source progress still get the faintest green.
func HeatLevel(progress float64, entries int) int {
	switch {
	case entries == 0 && progress <= 0:
		return 0
	case progress >= 1:
		return 4
	case progress >= 0.5:
		return 3
	case progress > 0:
		return 2
	default:
		return 1
	}
}
