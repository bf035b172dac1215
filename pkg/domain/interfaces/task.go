package interfaces

import (
	"context"

	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// TaskRepository defines the interface for field service task persistence
type TaskRepository interface {
	// Put stores a task (upsert)
	Put(ctx context.Context, task *model.Task) error

	// ListByOwner returns all tasks owned by the account, ordered by scheduled date
	// (unscheduled last) then name. Returns an empty slice when there are none.
	ListByOwner(ctx context.Context, ownerID types.AccountID) ([]*model.Task, error)
}
