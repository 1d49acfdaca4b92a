package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/lazygoals/internal/calendar"
	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/db"
	"github.com/Joseda-hg/lazygoals/internal/model"
	"github.com/Joseda-hg/lazygoals/internal/report"
	"github.com/Joseda-hg/lazygoals/internal/stats"
)

func (a *app) load(ctx context.Context) ([]model.Goal, []model.Habit, error) {
	return a.store.Load(ctx)
}

func (a *app) goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
	}

	var deadline, notes string
	var private bool
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := dates.ParseDay(deadline, time.Local)
			if !ok {
				return fmt.Errorf("--deadline must be YYYY-MM-DD")
			}
			goal, err := a.store.CreateGoal(cmd.Context(), db.GoalInput{
				Title:    strings.Join(args, " "),
				Deadline: parsed,
				Notes:    notes,
				Private:  private,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added goal %s: %s (%s)\n", report.ShortID(goal.ID), goal.Title, report.Deadline(goal.Deadline, time.Now()))
			return nil
		},
	}
	add.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD)")
	add.Flags().StringVar(&notes, "notes", "", "notes")
	add.Flags().BoolVar(&private, "private", false, "mark as private")
	_ = add.MarkFlagRequired("deadline")

	list := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			a.printer.Goals(goals)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show [goal]",
		Short: "Show a goal with its milestones and journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			goal, err := findGoal(args[0], goals)
			if err != nil {
				return err
			}
			a.printer.Goal(goal)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [goal]",
		Short: "Delete a goal with its entries and milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, _, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			goal, err := findGoal(args[0], goals)
			if err != nil {
				return err
			}
			if err := a.store.DeleteGoal(cmd.Context(), goal.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted goal %s\n", goal.Title)
			return nil
		},
	}

	link := &cobra.Command{
		Use:   "link [goal] [habit]",
		Short: "Relate a habit to a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, habit, err := a.goalAndHabit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if _, err := a.store.LinkHabit(cmd.Context(), goal.ID, habit.ID); err != nil {
				return err
			}
			fmt.Printf("Linked %s to %s\n", habit.Title, goal.Title)
			return nil
		},
	}

	unlink := &cobra.Command{
		Use:   "unlink [goal] [habit]",
		Short: "Remove a habit from a goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, habit, err := a.goalAndHabit(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if err := a.store.UnlinkHabit(cmd.Context(), goal.ID, habit.ID); err != nil {
				return err
			}
			fmt.Printf("Unlinked %s from %s\n", habit.Title, goal.Title)
			return nil
		},
	}

	cmd.AddCommand(add, list, show, rm, link, unlink)
	return cmd
}

func (a *app) goalAndHabit(ctx context.Context, goalRef, habitRef string) (model.Goal, model.Habit, error) {
	goals, habits, err := a.load(ctx)
	if err != nil {
		return model.Goal{}, model.Habit{}, err
	}
	goal, err := findGoal(goalRef, goals)
	if err != nil {
		return model.Goal{}, model.Habit{}, err
	}
	habit, err := findHabit(habitRef, habits)
	if err != nil {
		return model.Goal{}, model.Habit{}, err
	}
	return goal, habit, nil
}

func (a *app) habitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage habits",
	}

	var notes string
	var private bool
	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			habit, err := a.store.CreateHabit(cmd.Context(), db.HabitInput{
				Title:   strings.Join(args, " "),
				Notes:   notes,
				Private: private,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added habit %s: %s\n", report.ShortID(habit.ID), habit.Title)
			return nil
		},
	}
	add.Flags().StringVar(&notes, "notes", "", "notes")
	add.Flags().BoolVar(&private, "private", false, "mark as private")

	list := &cobra.Command{
		Use:   "list",
		Short: "List habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			a.printer.Habits(habits)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show [habit]",
		Short: "Show a habit with its milestones and journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			habit, err := findHabit(args[0], habits)
			if err != nil {
				return err
			}
			a.printer.Habit(habit)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm [habit]",
		Short: "Delete a habit with its entries and milestones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			habit, err := findHabit(args[0], habits)
			if err != nil {
				return err
			}
			if err := a.store.DeleteHabit(cmd.Context(), habit.ID); err != nil {
				return err
			}
			fmt.Printf("Deleted habit %s\n", habit.Title)
			return nil
		},
	}

	cmd.AddCommand(add, list, show, rm)
	return cmd
}

func (a *app) logCmd() *cobra.Command {
	var day, clock string
	cmd := &cobra.Command{
		Use:   "log [goal or habit] [text]",
		Short: "Add a journal entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			owner, title, err := findSource(args[0], goals, habits)
			if err != nil {
				return err
			}
			when, err := parseWhen(day, clock, time.Now())
			if err != nil {
				return err
			}
			entry, err := a.store.AddEntry(cmd.Context(), db.EntryInput{
				Owner:     owner,
				Timestamp: when,
				Text:      strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Logged %s for %s at %s\n", report.ShortID(entry.ID), title, entry.Timestamp.Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "entry day (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&clock, "time", "", "entry time (HH:MM)")
	return cmd
}

func (a *app) milestoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Manage milestones",
	}

	var counts bool
	add := &cobra.Command{
		Use:   "add [goal or habit] [text]",
		Short: "Add a milestone",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			owner, title, err := findSource(args[0], goals, habits)
			if err != nil {
				return err
			}
			milestone, err := a.store.AddMilestone(cmd.Context(), db.MilestoneInput{
				Owner:                  owner,
				Text:                   strings.Join(args[1:], " "),
				CountsTowardCompletion: counts,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added milestone %s to %s\n", report.ShortID(milestone.ID), title)
			return nil
		},
	}
	add.Flags().BoolVar(&counts, "counts", false, "counts toward goal completion")

	cmd.AddCommand(add, a.milestoneDoneCmd("done", true), a.milestoneDoneCmd("undo", false))
	return cmd
}

func (a *app) milestoneDoneCmd(use string, done bool) *cobra.Command {
	short := "Mark a milestone completed"
	if !done {
		short = "Mark a milestone not completed"
	}
	return &cobra.Command{
		Use:   use + " [milestone id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goals, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			milestone, err := findMilestone(args[0], goals, habits)
			if err != nil {
				return err
			}
			updated, err := a.store.SetMilestoneCompleted(cmd.Context(), milestone.ID, done)
			if err != nil {
				return err
			}
			if updated.Completed {
				fmt.Printf("Completed %s\n", updated.Text)
			} else {
				fmt.Printf("Reopened %s\n", updated.Text)
			}
			return nil
		},
	}
}

func (a *app) journalCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the journal for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := dates.StartOfDay(time.Now())
			if day != "" {
				parsed, ok := dates.ParseDay(day, time.Local)
				if !ok {
					return fmt.Errorf("--date must be YYYY-MM-DD")
				}
				selected = parsed
			}
			goals, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			filter := model.AllOf(goals, habits)
			a.printer.Journal(selected, stats.JournalEntries(selected, goals, habits, filter))
			fmt.Printf("Progress: %s\n", report.Bar(stats.DailyProgress(selected, goals, habits, filter), 1, 20))
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "day (YYYY-MM-DD), default today")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var rangeName string
	var year int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show streaks, consistency and distributions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeRange := a.cfg.Range()
			if rangeName != "" {
				parsed, err := stats.ParseTimeRange(rangeName)
				if err != nil {
					return err
				}
				timeRange = parsed
			}
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			goals, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			overview := stats.BuildOverview(goals, habits, model.AllOf(goals, habits), timeRange, now, year, a.cfg.FirstWeekday())
			a.printer.Overview(overview)
			return nil
		},
	}
	cmd.Flags().StringVar(&rangeName, "range", "", "allTime, lastWeek, lastMonth, last3Months, last6Months or year")
	cmd.Flags().IntVar(&year, "year", 0, "year for --range year, default current")
	return cmd
}

func (a *app) calendarCmd() *cobra.Command {
	var monthFlag string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month heat-map of journal activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			month, err := parseMonth(monthFlag, now)
			if err != nil {
				return err
			}
			goals, habits, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			printCalendar(os.Stdout, goals, habits, month, now, a.cfg.FirstWeekday())
			return nil
		},
	}
	cmd.Flags().StringVar(&monthFlag, "month", "", "month (YYYY-MM), default current")
	return cmd
}

// printCalendar writes the month heat-map followed by an entry count. The
// heat-map carries the month title.
func printCalendar(out io.Writer, goals []model.Goal, habits []model.Habit, month, now time.Time, firstWeekday time.Weekday) {
	controller := calendar.New(calendar.WithClock(func() time.Time { return now }), calendar.WithFirstWeekday(firstWeekday))
	controller.InitializeFilters(goals, habits)
	if !dates.SameDay(dates.StartOfMonth(month), dates.StartOfMonth(now)) {
		controller.Select(month)
	}

	days := stats.MonthHeatmap(controller.MonthStart(), goals, habits, controller.Filter())
	fmt.Fprintln(out, report.Heatmap(controller.MonthStart(), days, controller.FirstWeekday(), controller.Selected()))

	entries := 0
	for _, day := range days {
		entries += day.Entries
	}
	fmt.Fprintf(out, "%d entries over %d days\n", entries, controller.DaysInMonth())
}
