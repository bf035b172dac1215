package model

import (
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// Task is a field service task assigned to an account
type Task struct {
	ID            types.TaskID
	Name          string
	Customer      string
	Status        string // stage label, e.g. "In Progress"
	ScheduledDate *time.Time
	Location      string // empty when the task has no location
	Description   string
	OwnerID       types.AccountID
	CreatedAt     time.Time
}

// Validate checks that the task can be persisted
func (t *Task) Validate() error {
	if t == nil {
		return goerr.New("task is nil")
	}
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task ID")
	}
	if t.Name == "" {
		return goerr.New("task name is required", goerr.V("id", t.ID))
	}
	if err := t.OwnerID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task owner", goerr.V("id", t.ID))
	}
	return nil
}

// SortTasks orders tasks by scheduled date (unscheduled last), then by name, then by ID
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.ScheduledDate != nil && b.ScheduledDate == nil:
			return true
		case a.ScheduledDate == nil && b.ScheduledDate != nil:
			return false
		case a.ScheduledDate != nil && b.ScheduledDate != nil && !a.ScheduledDate.Equal(*b.ScheduledDate):
			return a.ScheduledDate.Before(*b.ScheduledDate)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}
