package taskstore

import (
	"context"
	"errors"

	"github.com/sandeepkv93/daycal/internal/model"
	"github.com/sandeepkv93/daycal/internal/storage"
)

// RepositoryReplica exposes a storage.Repository, a direct backend
// connection, as a Replica. Saves are upserts; rows removed locally are only
// removed remotely through DeleteTask/DeleteLater.
type RepositoryReplica struct {
	Repo storage.Repository
}

func (r RepositoryReplica) LoadTasks(ctx context.Context) ([]model.Task, error) {
	return r.Repo.ListTasks(ctx, storage.TaskListFilter{})
}

func (r RepositoryReplica) SaveTasks(ctx context.Context, tasks []model.Task) error {
	return r.Repo.UpsertTasks(ctx, tasks)
}

func (r RepositoryReplica) LoadLater(ctx context.Context) ([]model.LaterItem, error) {
	return r.Repo.ListLater(ctx)
}

func (r RepositoryReplica) SaveLater(ctx context.Context, items []model.LaterItem) error {
	return r.Repo.UpsertLater(ctx, items)
}

func (r RepositoryReplica) DeleteTask(ctx context.Context, id string) error {
	if err := r.Repo.DeleteTask(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func (r RepositoryReplica) DeleteLater(ctx context.Context, id string) error {
	if err := r.Repo.DeleteLater(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}
