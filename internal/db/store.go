package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Joseda-hg/lazygoals/internal/dates"
	"github.com/Joseda-hg/lazygoals/internal/model"
)

var ErrNotFound = errors.New("not found")

// Times are stored in UTC with a fixed-width fraction so that text order is
// time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	DB *sql.DB

	now      func() time.Time
	revision atomic.Uint64
}

type GoalInput struct {
	Title    string
	Deadline time.Time
	Notes    string
	Private  bool
}

type HabitInput struct {
	Title   string
	Notes   string
	Private bool
}

type EntryInput struct {
	Owner     model.Owner
	Timestamp time.Time
	Text      string
}

type MilestoneInput struct {
	Owner                  model.Owner
	Text                   string
	CountsTowardCompletion bool
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

// Revision changes after every successful mutation.
func (s *Store) Revision() uint64 {
	return s.revision.Load()
}

func (s *Store) changed() {
	s.revision.Add(1)
}

func (s *Store) CreateGoal(ctx context.Context, input GoalInput) (model.Goal, error) {
	if err := validateGoal(input); err != nil {
		return model.Goal{}, err
	}

	id := uuid.New().String()
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO goals (id, title, deadline, notes, private, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, strings.TrimSpace(input.Title), formatTime(dates.StartOfDay(input.Deadline)), strings.TrimSpace(input.Notes), input.Private, formatTime(s.now()),
	); err != nil {
		return model.Goal{}, fmt.Errorf("insert goal: %w", err)
	}
	s.changed()

	return s.GetGoal(ctx, id)
}

func (s *Store) UpdateGoal(ctx context.Context, goalID string, input GoalInput) (model.Goal, error) {
	if err := validateGoal(input); err != nil {
		return model.Goal{}, err
	}

	result, err := s.DB.ExecContext(ctx,
		"UPDATE goals SET title = ?, deadline = ?, notes = ?, private = ? WHERE id = ?",
		strings.TrimSpace(input.Title), formatTime(dates.StartOfDay(input.Deadline)), strings.TrimSpace(input.Notes), input.Private, goalID,
	)
	if err != nil {
		return model.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	if err := expectAffected(result, "goal", goalID); err != nil {
		return model.Goal{}, err
	}
	s.changed()

	return s.GetGoal(ctx, goalID)
}

// DeleteGoal removes the goal with its entries and milestones. Related habits
// survive; only the relation rows go.
func (s *Store) DeleteGoal(ctx context.Context, goalID string) error {
	return s.deleteOwner(ctx, model.GoalOwner(goalID))
}

func (s *Store) GetGoal(ctx context.Context, goalID string) (model.Goal, error) {
	goals, _, err := s.Load(ctx)
	if err != nil {
		return model.Goal{}, err
	}
	for _, goal := range goals {
		if goal.ID == goalID {
			return goal, nil
		}
	}
	return model.Goal{}, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
}

func (s *Store) ListGoals(ctx context.Context) ([]model.Goal, error) {
	goals, _, err := s.Load(ctx)
	return goals, err
}

func (s *Store) CreateHabit(ctx context.Context, input HabitInput) (model.Habit, error) {
	if err := model.ValidateTitle(input.Title); err != nil {
		return model.Habit{}, err
	}

	id := uuid.New().String()
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO habits (id, title, notes, private, created_at) VALUES (?, ?, ?, ?, ?)",
		id, strings.TrimSpace(input.Title), strings.TrimSpace(input.Notes), input.Private, formatTime(s.now()),
	); err != nil {
		return model.Habit{}, fmt.Errorf("insert habit: %w", err)
	}
	s.changed()

	return s.GetHabit(ctx, id)
}

func (s *Store) UpdateHabit(ctx context.Context, habitID string, input HabitInput) (model.Habit, error) {
	if err := model.ValidateTitle(input.Title); err != nil {
		return model.Habit{}, err
	}

	result, err := s.DB.ExecContext(ctx,
		"UPDATE habits SET title = ?, notes = ?, private = ? WHERE id = ?",
		strings.TrimSpace(input.Title), strings.TrimSpace(input.Notes), input.Private, habitID,
	)
	if err != nil {
		return model.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	if err := expectAffected(result, "habit", habitID); err != nil {
		return model.Habit{}, err
	}
	s.changed()

	return s.GetHabit(ctx, habitID)
}

func (s *Store) DeleteHabit(ctx context.Context, habitID string) error {
	return s.deleteOwner(ctx, model.HabitOwner(habitID))
}

func (s *Store) GetHabit(ctx context.Context, habitID string) (model.Habit, error) {
	_, habits, err := s.Load(ctx)
	if err != nil {
		return model.Habit{}, err
	}
	for _, habit := range habits {
		if habit.ID == habitID {
			return habit, nil
		}
	}
	return model.Habit{}, fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
}

func (s *Store) ListHabits(ctx context.Context) ([]model.Habit, error) {
	_, habits, err := s.Load(ctx)
	return habits, err
}

func (s *Store) AddEntry(ctx context.Context, input EntryInput) (model.JournalEntry, error) {
	if err := model.ValidateText(input.Text); err != nil {
		return model.JournalEntry{}, err
	}
	if err := ownerExists(ctx, s.DB, input.Owner); err != nil {
		return model.JournalEntry{}, err
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = s.now()
	}

	entry := model.JournalEntry{
		ID:        uuid.New().String(),
		Owner:     input.Owner,
		Timestamp: timestamp,
		Text:      strings.TrimSpace(input.Text),
	}
	goalID, habitID := ownerColumns(input.Owner)
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO journal_entries (id, goal_id, habit_id, timestamp, text) VALUES (?, ?, ?, ?, ?)",
		entry.ID, goalID, habitID, formatTime(entry.Timestamp), entry.Text,
	); err != nil {
		return model.JournalEntry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	s.changed()

	return entry, nil
}

// UpdateEntry rewrites the text and timestamp; entries never change owner.
func (s *Store) UpdateEntry(ctx context.Context, entryID string, timestamp time.Time, text string) (model.JournalEntry, error) {
	if err := model.ValidateText(text); err != nil {
		return model.JournalEntry{}, err
	}
	entry, err := s.GetEntry(ctx, entryID)
	if err != nil {
		return model.JournalEntry{}, err
	}
	if !timestamp.IsZero() {
		entry.Timestamp = timestamp
	}
	entry.Text = strings.TrimSpace(text)

	if _, err := s.DB.ExecContext(ctx,
		"UPDATE journal_entries SET timestamp = ?, text = ? WHERE id = ?",
		formatTime(entry.Timestamp), entry.Text, entryID,
	); err != nil {
		return model.JournalEntry{}, fmt.Errorf("update journal entry: %w", err)
	}
	s.changed()

	return entry, nil
}

func (s *Store) GetEntry(ctx context.Context, entryID string) (model.JournalEntry, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT id, goal_id, habit_id, timestamp, text FROM journal_entries WHERE id = ?", entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.JournalEntry{}, fmt.Errorf("journal entry %s: %w", entryID, ErrNotFound)
	}
	return entry, err
}

func (s *Store) DeleteEntry(ctx context.Context, entryID string) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM journal_entries WHERE id = ?", entryID)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if err := expectAffected(result, "journal entry", entryID); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *Store) AddMilestone(ctx context.Context, input MilestoneInput) (model.Milestone, error) {
	if err := model.ValidateText(input.Text); err != nil {
		return model.Milestone{}, err
	}
	if err := ownerExists(ctx, s.DB, input.Owner); err != nil {
		return model.Milestone{}, err
	}

	goalID, habitID := ownerColumns(input.Owner)
	var position int
	if err := s.DB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), -1) + 1 FROM milestones WHERE goal_id IS ? AND habit_id IS ?",
		goalID, habitID,
	).Scan(&position); err != nil {
		return model.Milestone{}, fmt.Errorf("next milestone position: %w", err)
	}

	milestone := model.Milestone{
		ID:                     uuid.New().String(),
		Owner:                  input.Owner,
		Text:                   strings.TrimSpace(input.Text),
		CountsTowardCompletion: input.CountsTowardCompletion,
		Position:               position,
	}
	if _, err := s.DB.ExecContext(ctx,
		"INSERT INTO milestones (id, goal_id, habit_id, text, completed, completed_at, counts_toward_completion, position) VALUES (?, ?, ?, ?, 0, NULL, ?, ?)",
		milestone.ID, goalID, habitID, milestone.Text, milestone.CountsTowardCompletion, milestone.Position,
	); err != nil {
		return model.Milestone{}, fmt.Errorf("insert milestone: %w", err)
	}
	s.changed()

	return milestone, nil
}

func (s *Store) UpdateMilestone(ctx context.Context, milestoneID string, text string, countsTowardCompletion bool) (model.Milestone, error) {
	if err := model.ValidateText(text); err != nil {
		return model.Milestone{}, err
	}
	milestone, err := s.GetMilestone(ctx, milestoneID)
	if err != nil {
		return model.Milestone{}, err
	}
	milestone.Text = strings.TrimSpace(text)
	milestone.CountsTowardCompletion = countsTowardCompletion

	if _, err := s.DB.ExecContext(ctx,
		"UPDATE milestones SET text = ?, counts_toward_completion = ? WHERE id = ?",
		milestone.Text, milestone.CountsTowardCompletion, milestoneID,
	); err != nil {
		return model.Milestone{}, fmt.Errorf("update milestone: %w", err)
	}
	s.changed()

	return milestone, nil
}

// SetMilestoneCompleted stamps the completion date when done and clears it
// otherwise.
func (s *Store) SetMilestoneCompleted(ctx context.Context, milestoneID string, done bool) (model.Milestone, error) {
	milestone, err := s.GetMilestone(ctx, milestoneID)
	if err != nil {
		return model.Milestone{}, err
	}
	milestone.SetCompleted(done, s.now())

	var completedAt sql.NullString
	if milestone.CompletedAt != nil {
		completedAt = sql.NullString{String: formatTime(*milestone.CompletedAt), Valid: true}
	}
	if _, err := s.DB.ExecContext(ctx,
		"UPDATE milestones SET completed = ?, completed_at = ? WHERE id = ?",
		milestone.Completed, completedAt, milestoneID,
	); err != nil {
		return model.Milestone{}, fmt.Errorf("update milestone completion: %w", err)
	}
	s.changed()

	return milestone, nil
}

func (s *Store) GetMilestone(ctx context.Context, milestoneID string) (model.Milestone, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT id, goal_id, habit_id, text, completed, completed_at, counts_toward_completion, position FROM milestones WHERE id = ?",
		milestoneID,
	)
	milestone, err := scanMilestone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Milestone{}, fmt.Errorf("milestone %s: %w", milestoneID, ErrNotFound)
	}
	return milestone, err
}

func (s *Store) DeleteMilestone(ctx context.Context, milestoneID string) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM milestones WHERE id = ?", milestoneID)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	if err := expectAffected(result, "milestone", milestoneID); err != nil {
		return err
	}
	s.changed()
	return nil
}

// LinkHabit relates a goal and a habit. Linking an already related pair
// returns the existing relation.
func (s *Store) LinkHabit(ctx context.Context, goalID, habitID string) (model.GoalHabitRelation, error) {
	if err := ownerExists(ctx, s.DB, model.GoalOwner(goalID)); err != nil {
		return model.GoalHabitRelation{}, err
	}
	if err := ownerExists(ctx, s.DB, model.HabitOwner(habitID)); err != nil {
		return model.GoalHabitRelation{}, err
	}

	result, err := s.DB.ExecContext(ctx,
		"INSERT INTO goal_habits (id, goal_id, habit_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (goal_id, habit_id) DO NOTHING",
		uuid.New().String(), goalID, habitID, formatTime(s.now()),
	)
	if err != nil {
		return model.GoalHabitRelation{}, fmt.Errorf("insert goal habit relation: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return model.GoalHabitRelation{}, fmt.Errorf("insert goal habit relation: %w", err)
	}
	if inserted > 0 {
		s.changed()
	}

	row := s.DB.QueryRowContext(ctx, "SELECT id, goal_id, habit_id, created_at FROM goal_habits WHERE goal_id = ? AND habit_id = ?", goalID, habitID)
	return scanRelation(row)
}

func (s *Store) UnlinkHabit(ctx context.Context, goalID, habitID string) error {
	result, err := s.DB.ExecContext(ctx, "DELETE FROM goal_habits WHERE goal_id = ? AND habit_id = ?", goalID, habitID)
	if err != nil {
		return fmt.Errorf("delete goal habit relation: %w", err)
	}
	if err := expectAffected(result, "goal habit relation", goalID+"/"+habitID); err != nil {
		return err
	}
	s.changed()
	return nil
}

func (s *Store) ListRelations(ctx context.Context) ([]model.GoalHabitRelation, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, goal_id, habit_id, created_at FROM goal_habits ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list goal habit relations: %w", err)
	}
	defer rows.Close()

	var relations []model.GoalHabitRelation
	for rows.Next() {
		relation, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		relations = append(relations, relation)
	}
	return relations, rows.Err()
}

// Load reads every goal and habit with their entries, milestones and
// relations. Goals carry copies of their related habits.
func (s *Store) Load(ctx context.Context) ([]model.Goal, []model.Habit, error) {
	goals, err := s.loadGoals(ctx)
	if err != nil {
		return nil, nil, err
	}
	habits, err := s.loadHabits(ctx)
	if err != nil {
		return nil, nil, err
	}

	goalIndex := make(map[string]int, len(goals))
	for i, goal := range goals {
		goalIndex[goal.ID] = i
	}
	habitIndex := make(map[string]int, len(habits))
	for i, habit := range habits {
		habitIndex[habit.ID] = i
	}

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		switch entry.Owner.Kind {
		case model.OwnerGoal:
			if i, ok := goalIndex[entry.Owner.ID]; ok {
				goals[i].Entries = append(goals[i].Entries, entry)
			}
		case model.OwnerHabit:
			if i, ok := habitIndex[entry.Owner.ID]; ok {
				habits[i].Entries = append(habits[i].Entries, entry)
			}
		}
	}

	milestones, err := s.loadMilestones(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, milestone := range milestones {
		switch milestone.Owner.Kind {
		case model.OwnerGoal:
			if i, ok := goalIndex[milestone.Owner.ID]; ok {
				goals[i].Milestones = append(goals[i].Milestones, milestone)
			}
		case model.OwnerHabit:
			if i, ok := habitIndex[milestone.Owner.ID]; ok {
				habits[i].Milestones = append(habits[i].Milestones, milestone)
			}
		}
	}

	relations, err := s.ListRelations(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, relation := range relations {
		if i, ok := habitIndex[relation.HabitID]; ok {
			habits[i].GoalIDs = append(habits[i].GoalIDs, relation.GoalID)
		}
	}
	for _, relation := range relations {
		gi, goalOK := goalIndex[relation.GoalID]
		hi, habitOK := habitIndex[relation.HabitID]
		if goalOK && habitOK {
			goals[gi].Habits = append(goals[gi].Habits, habits[hi])
		}
	}

	return goals, habits, nil
}

func (s *Store) loadGoals(ctx context.Context) ([]model.Goal, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, title, deadline, notes, private, created_at FROM goals ORDER BY deadline, created_at")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		var goal model.Goal
		var deadline, createdAt string
		if err := rows.Scan(&goal.ID, &goal.Title, &deadline, &goal.Notes, &goal.Private, &createdAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if goal.Deadline, err = parseTime(deadline); err != nil {
			return nil, err
		}
		if goal.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (s *Store) loadHabits(ctx context.Context) ([]model.Habit, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, title, notes, private, created_at FROM habits ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		var habit model.Habit
		var createdAt string
		if err := rows.Scan(&habit.ID, &habit.Title, &habit.Notes, &habit.Private, &createdAt); err != nil {
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		if habit.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}
	return habits, rows.Err()
}

func (s *Store) loadEntries(ctx context.Context) ([]model.JournalEntry, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, goal_id, habit_id, timestamp, text FROM journal_entries ORDER BY timestamp")
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) loadMilestones(ctx context.Context) ([]model.Milestone, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, goal_id, habit_id, text, completed, completed_at, counts_toward_completion, position FROM milestones ORDER BY position, rowid")
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []model.Milestone
	for rows.Next() {
		milestone, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		milestones = append(milestones, milestone)
	}
	return milestones, rows.Err()
}

// deleteOwner cascades to owned entries and milestones and nullifies
// relations, all in one transaction.
func (s *Store) deleteOwner(ctx context.Context, owner model.Owner) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", owner.Kind, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ownerExists(ctx, tx, owner); err != nil {
		return err
	}

	column := "goal_id"
	table := "goals"
	if owner.Kind == model.OwnerHabit {
		column = "habit_id"
		table = "habits"
	}

	statements := []string{
		"DELETE FROM journal_entries WHERE " + column + " = ?",
		"DELETE FROM milestones WHERE " + column + " = ?",
		"DELETE FROM goal_habits WHERE " + column + " = ?",
		"DELETE FROM " + table + " WHERE id = ?",
	}
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement, owner.ID); err != nil {
			return fmt.Errorf("delete %s: %w", owner.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", owner.Kind, err)
	}
	s.changed()
	return nil
}

func validateGoal(input GoalInput) error {
	if err := model.ValidateTitle(input.Title); err != nil {
		return err
	}
	if input.Deadline.IsZero() {
		return model.ErrDeadlineRequired
	}
	return nil
}

func ownerExists(ctx context.Context, q queryer, owner model.Owner) error {
	table := ""
	switch owner.Kind {
	case model.OwnerGoal:
		table = "goals"
	case model.OwnerHabit:
		table = "habits"
	default:
		return fmt.Errorf("unknown owner kind %q", owner.Kind)
	}

	var exists int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", owner.ID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", owner.Kind, owner.ID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check %s: %w", owner.Kind, err)
	}
	return nil
}

func ownerColumns(owner model.Owner) (sql.NullString, sql.NullString) {
	if owner.Kind == model.OwnerGoal {
		return sql.NullString{String: owner.ID, Valid: true}, sql.NullString{}
	}
	return sql.NullString{}, sql.NullString{String: owner.ID, Valid: true}
}

func ownerFromColumns(goalID, habitID sql.NullString) model.Owner {
	if goalID.Valid {
		return model.GoalOwner(goalID.String)
	}
	return model.HabitOwner(habitID.String)
}

func expectAffected(result sql.Result, kind, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (model.JournalEntry, error) {
	var entry model.JournalEntry
	var goalID, habitID sql.NullString
	var timestamp string
	if err := row.Scan(&entry.ID, &goalID, &habitID, &timestamp, &entry.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.JournalEntry{}, err
		}
		return model.JournalEntry{}, fmt.Errorf("scan journal entry: %w", err)
	}
	entry.Owner = ownerFromColumns(goalID, habitID)

	parsed, err := parseTime(timestamp)
	if err != nil {
		return model.JournalEntry{}, err
	}
	entry.Timestamp = parsed
	return entry, nil
}

func scanMilestone(row scanner) (model.Milestone, error) {
	var milestone model.Milestone
	var goalID, habitID, completedAt sql.NullString
	if err := row.Scan(&milestone.ID, &goalID, &habitID, &milestone.Text, &milestone.Completed, &completedAt, &milestone.CountsTowardCompletion, &milestone.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Milestone{}, err
		}
		return model.Milestone{}, fmt.Errorf("scan milestone: %w", err)
	}
	milestone.Owner = ownerFromColumns(goalID, habitID)

	if completedAt.Valid {
		parsed, err := parseTime(completedAt.String)
		if err != nil {
			return model.Milestone{}, err
		}
		milestone.CompletedAt = &parsed
	}
	return milestone, nil
}

func scanRelation(row scanner) (model.GoalHabitRelation, error) {
	var relation model.GoalHabitRelation
	var createdAt string
	if err := row.Scan(&relation.ID, &relation.GoalID, &relation.HabitID, &createdAt); err != nil {
		return model.GoalHabitRelation{}, fmt.Errorf("scan goal habit relation: %w", err)
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return model.GoalHabitRelation{}, err
	}
	relation.CreatedAt = parsed
	return relation, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", value, err)
	}
	return parsed.Local(), nil
}
