package storage

import (
	"context"
	"errors"

	"github.com/sandeepkv93/daycal/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// Repository is the table contract both backends implement: select, upsert
// keyed on id, and delete by id, over the tasks and later tables.
type Repository interface {
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)
	UpsertTasks(ctx context.Context, tasks []model.Task) error
	DeleteTask(ctx context.Context, id string) error

	ListLater(ctx context.Context) ([]model.LaterItem, error)
	UpsertLater(ctx context.Context, items []model.LaterItem) error
	DeleteLater(ctx context.Context, id string) error
}

// ReplaceTasks makes the tasks table hold exactly tasks. Rows are upserted
// first and stale ids deleted afterwards; concurrent writers race and the
// last one wins.
func ReplaceTasks(ctx context.Context, repo Repository, tasks []model.Task) error {
	existing, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		return err
	}
	if err := repo.UpsertTasks(ctx, tasks); err != nil {
		return err
	}
	keep := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		keep[t.ID] = true
	}
	for _, t := range existing {
		if keep[t.ID] {
			continue
		}
		if err := repo.DeleteTask(ctx, t.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// ReplaceLater is ReplaceTasks for the later table.
func ReplaceLater(ctx context.Context, repo Repository, items []model.LaterItem) error {
	existing, err := repo.ListLater(ctx)
	if err != nil {
		return err
	}
	if err := repo.UpsertLater(ctx, items); err != nil {
		return err
	}
	keep := make(map[string]bool, len(items))
	for _, it := range items {
		keep[it.ID] = true
	}
	for _, it := range existing {
		if keep[it.ID] {
			continue
		}
		if err := repo.DeleteLater(ctx, it.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func validateTasks(tasks []model.Task) error {
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateLater(items []model.LaterItem) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}
