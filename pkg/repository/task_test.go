package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

func newTestTask(owner types.AccountID, name string, scheduled *time.Time) *model.Task {
	return &model.Task{
		ID:            types.NewTaskID(),
		Name:          name,
		Customer:      "Globex",
		Status:        "In Progress",
		ScheduledDate: scheduled,
		Location:      "12 Main St",
		Description:   "Replace the pump",
		OwnerID:       owner,
		CreatedAt:     time.Now().UTC(),
	}
}

func runTaskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("ListByOwner with no tasks returns empty slice", func(t *testing.T) {
		repo := newRepo(t)
		tasks, err := repo.Task().ListByOwner(context.Background(), types.NewAccountID())
		gt.NoError(t, err).Required()
		gt.True(t, tasks != nil)
		gt.Array(t, tasks).Length(0)
	})

	t.Run("ListByOwner returns only owned tasks in schedule order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := types.NewAccountID()
		other := types.NewAccountID()

		early := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		late := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

		unscheduled := newTestTask(owner, "Inspect", nil)
		second := newTestTask(owner, "Repair", &late)
		first := newTestTask(owner, "Install", &early)
		foreign := newTestTask(other, "Other", &early)

		for _, task := range []*model.Task{unscheduled, second, first, foreign} {
			gt.NoError(t, repo.Task().Put(ctx, task)).Required()
		}

		tasks, err := repo.Task().ListByOwner(ctx, owner)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(3).Required()
		gt.Value(t, tasks[0].ID).Equal(first.ID)
		gt.Value(t, tasks[1].ID).Equal(second.ID)
		gt.Value(t, tasks[2].ID).Equal(unscheduled.ID)

		gt.Value(t, tasks[0].Customer).Equal("Globex")
		gt.Value(t, tasks[0].Location).Equal("12 Main St")
		gt.Bool(t, tasks[0].ScheduledDate.Equal(early)).True()
		gt.Value(t, tasks[2].ScheduledDate).Nil()
	})

	t.Run("Put overwrites an existing task", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		owner := types.NewAccountID()
		task := newTestTask(owner, "Install", nil)
		gt.NoError(t, repo.Task().Put(ctx, task)).Required()

		task.Status = "Done"
		gt.NoError(t, repo.Task().Put(ctx, task)).Required()

		tasks, err := repo.Task().ListByOwner(ctx, owner)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1).Required()
		gt.Value(t, tasks[0].Status).Equal("Done")
	})

	t.Run("Put rejects task without owner", func(t *testing.T) {
		repo := newRepo(t)
		task := newTestTask("", "Install", nil)
		gt.Value(t, repo.Task().Put(context.Background(), task)).NotNil()
	})
}
