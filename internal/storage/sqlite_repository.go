package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/daycal/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT id, title, date, notes, time, completed, project FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if filter.Date != "" {
		clauses = append(clauses, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.Completed != nil {
		clauses = append(clauses, "completed = ?")
		args = append(args, boolInt(*filter.Completed))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC, rowid ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	if err := validateTasks(tasks); err != nil {
		return err
	}
	stamp := mustTime(r.now())
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO tasks (id, title, date, notes, time, completed, project, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				date = excluded.date,
				notes = excluded.notes,
				time = excluded.time,
				completed = excluded.completed,
				project = excluded.project,
				updated_at = excluded.updated_at`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, t := range tasks {
			if _, err := stmt.ExecContext(ctx, t.ID, t.Title, t.Date, nullString(t.Notes), t.Time, boolInt(t.Completed), t.Project, stamp); err != nil {
				return fmt.Errorf("upsert task %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListLater(ctx context.Context) ([]model.LaterItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, notes FROM later ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.LaterItem, 0)
	for rows.Next() {
		item, scanErr := scanLater(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertLater(ctx context.Context, items []model.LaterItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := validateLater(items); err != nil {
		return err
	}
	stamp := mustTime(r.now())
	return r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO later (id, title, notes, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				notes = excluded.notes,
				updated_at = excluded.updated_at`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, it := range items {
			if _, err := stmt.ExecContext(ctx, it.ID, it.Title, nullString(it.Notes), stamp); err != nil {
				return fmt.Errorf("upsert later %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) DeleteLater(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM later WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var notes sql.NullString
	var completed int
	if err := s.Scan(&out.ID, &out.Title, &out.Date, &notes, &out.Time, &completed, &out.Project); err != nil {
		return model.Task{}, err
	}
	if notes.Valid {
		out.Notes = &notes.String
	}
	out.Completed = completed == 1
	return out, nil
}

func scanLater(s scanner) (model.LaterItem, error) {
	var out model.LaterItem
	var notes sql.NullString
	if err := s.Scan(&out.ID, &out.Title, &notes); err != nil {
		return model.LaterItem{}, err
	}
	if notes.Valid {
		out.Notes = &notes.String
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
