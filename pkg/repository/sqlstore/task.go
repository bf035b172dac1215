package sqlstore

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

type taskRepository struct {
	store *Store
}

var _ interfaces.TaskRepository = &taskRepository{}

func (r *taskRepository) Put(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task")
	}

	var scheduled sql.NullInt64
	if task.ScheduledDate != nil {
		scheduled = sql.NullInt64{Int64: toNanos(*task.ScheduledDate), Valid: true}
	}

	_, err := r.store.exec(ctx,
		`INSERT INTO tasks (id, name, customer, status, scheduled_date, location, description, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name, customer = excluded.customer, status = excluded.status,
		   scheduled_date = excluded.scheduled_date, location = excluded.location,
		   description = excluded.description, owner_id = excluded.owner_id`,
		task.ID.String(), task.Name, task.Customer, task.Status, scheduled,
		task.Location, task.Description, task.OwnerID.String(), toNanos(task.CreatedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to upsert task", goerr.V("id", task.ID))
	}
	return nil
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID types.AccountID) ([]*model.Task, error) {
	rows, err := r.store.query(ctx,
		`SELECT id, name, customer, status, scheduled_date, location, description, owner_id, created_at
		 FROM tasks WHERE owner_id = ?`, ownerID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tasks", goerr.V("ownerID", ownerID))
	}
	defer func() { _ = rows.Close() }()

	result := make([]*model.Task, 0)
	for rows.Next() {
		var (
			t         model.Task
			id, owner string
			scheduled sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&id, &t.Name, &t.Customer, &t.Status, &scheduled,
			&t.Location, &t.Description, &owner, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan task", goerr.V("ownerID", ownerID))
		}
		t.ID = types.TaskID(id)
		t.OwnerID = types.AccountID(owner)
		t.CreatedAt = fromNanos(createdAt)
		if scheduled.Valid {
			ts := fromNanos(scheduled.Int64)
			t.ScheduledDate = &ts
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("ownerID", ownerID))
	}

	model.SortTasks(result)
	return result, nil
}
