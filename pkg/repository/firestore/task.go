package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"google.golang.org/api/iterator"
)

const tasksCollection = "tasks"

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.TaskRepository = &taskRepository{}

func newTaskRepository(client *firestore.Client) *taskRepository {
	return &taskRepository{
		client: client,
	}
}

type taskDoc struct {
	ID            string     `firestore:"id"`
	Name          string     `firestore:"name"`
	Customer      string     `firestore:"customer"`
	Status        string     `firestore:"status"`
	ScheduledDate *time.Time `firestore:"scheduled_date"`
	Location      string     `firestore:"location"`
	Description   string     `firestore:"description"`
	OwnerID       string     `firestore:"owner_id"`
	CreatedAt     time.Time  `firestore:"created_at"`
}

func (r *taskRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, tasksCollection))
}

func (r *taskRepository) toDoc(t *model.Task) *taskDoc {
	return &taskDoc{
		ID:            t.ID.String(),
		Name:          t.Name,
		Customer:      t.Customer,
		Status:        t.Status,
		ScheduledDate: t.ScheduledDate,
		Location:      t.Location,
		Description:   t.Description,
		OwnerID:       t.OwnerID.String(),
		CreatedAt:     t.CreatedAt,
	}
}

func (r *taskRepository) fromDoc(doc *taskDoc) *model.Task {
	return &model.Task{
		ID:            types.TaskID(doc.ID),
		Name:          doc.Name,
		Customer:      doc.Customer,
		Status:        doc.Status,
		ScheduledDate: doc.ScheduledDate,
		Location:      doc.Location,
		Description:   doc.Description,
		OwnerID:       types.AccountID(doc.OwnerID),
		CreatedAt:     doc.CreatedAt,
	}
}

func (r *taskRepository) Put(ctx context.Context, task *model.Task) error {
	if err := task.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task")
	}

	doc := r.toDoc(task)
	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put task", goerr.V("id", doc.ID))
	}
	return nil
}

func (r *taskRepository) ListByOwner(ctx context.Context, ownerID types.AccountID) ([]*model.Task, error) {
	iter := r.collection().
		Where("owner_id", "==", ownerID.String()).
		OrderBy("scheduled_date", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Task, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("ownerID", ownerID))
		}

		var doc taskDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal task", goerr.V("docID", snap.Ref.ID))
		}
		result = append(result, r.fromDoc(&doc))
	}

	model.SortTasks(result)
	return result, nil
}
