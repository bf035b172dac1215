package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[types.TaskID]*model.Task
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks: make(map[types.TaskID]*model.Task),
	}
}

func copyTask(t *model.Task) *model.Task {
	copied := *t
	if t.ScheduledDate != nil {
		scheduled := *t.ScheduledDate
		copied.ScheduledDate = &scheduled
	}
	return &copied
}

func (r *taskRepository) Put(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID types.AccountID) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Task, 0)
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			result = append(result, copyTask(task))
		}
	}
	model.SortTasks(result)

	return result, nil
}
