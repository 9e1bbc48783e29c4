package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/supabase-community/postgrest-go"

	"github.com/sandeepkv93/daycal/internal/model"
)

const (
	taskColumns  = "id,title,date,notes,completed"
	laterColumns = "id,title,notes"
)

// PostgrestRepository talks to a hosted PostgREST endpoint such as Supabase.
// Only the columns of the hosted schema round-trip; time and project stay
// local to the SQLite backend.
type PostgrestRepository struct {
	client *postgrest.Client
}

type taskRow struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Date      string  `json:"date"`
	Notes     *string `json:"notes"`
	Completed bool    `json:"completed"`
}

type laterRow struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Notes *string `json:"notes"`
}

// NewPostgrestRepository builds a client for baseURL (the project URL; the
// REST path is appended) authenticated with key.
func NewPostgrestRepository(baseURL, key string) (*PostgrestRepository, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || strings.TrimSpace(key) == "" {
		return nil, errors.New("storage: postgrest url and key are required")
	}
	headers := map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	}
	client := postgrest.NewClient(baseURL+"/rest/v1", "public", headers)
	if client.ClientError != nil {
		return nil, fmt.Errorf("postgrest client: %w", client.ClientError)
	}
	return &PostgrestRepository{client: client}, nil
}

func (r *PostgrestRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	q := r.client.From("tasks").Select(taskColumns, "", false)
	if filter.Date != "" {
		q = q.Eq("date", filter.Date)
	}
	if filter.Completed != nil {
		q = q.Eq("completed", strconv.FormatBool(*filter.Completed))
	}
	var rows []taskRow
	if _, err := q.ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Task{
			ID:        row.ID,
			Title:     row.Title,
			Date:      row.Date,
			Notes:     row.Notes,
			Completed: row.Completed,
		})
	}
	return out, ctx.Err()
}

func (r *PostgrestRepository) UpsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := validateTasks(tasks); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow{ID: t.ID, Title: t.Title, Date: t.Date, Notes: model.OptionalNotes(t.NotesText()), Completed: t.Completed})
	}
	if _, _, err := r.client.From("tasks").Upsert(rows, "id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("upsert tasks: %w", err)
	}
	return nil
}

func (r *PostgrestRepository) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := r.client.From("tasks").Delete("minimal", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (r *PostgrestRepository) ListLater(ctx context.Context) ([]model.LaterItem, error) {
	var rows []laterRow
	if _, err := r.client.From("later").Select(laterColumns, "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select later: %w", err)
	}
	out := make([]model.LaterItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.LaterItem{ID: row.ID, Title: row.Title, Notes: row.Notes})
	}
	return out, ctx.Err()
}

func (r *PostgrestRepository) UpsertLater(ctx context.Context, items []model.LaterItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := validateLater(items); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]laterRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, laterRow{ID: it.ID, Title: it.Title, Notes: model.OptionalNotes(it.NotesText())})
	}
	if _, _, err := r.client.From("later").Upsert(rows, "id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("upsert later: %w", err)
	}
	return nil
}

func (r *PostgrestRepository) DeleteLater(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := r.client.From("later").Delete("minimal", "").Eq("id", id).Execute(); err != nil {
		return fmt.Errorf("delete later: %w", err)
	}
	return nil
}
