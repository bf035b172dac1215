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

const deadLettersCollection = "dead_letters"

type deadLetterRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.DeadLetterRepository = &deadLetterRepository{}

func newDeadLetterRepository(client *firestore.Client) *deadLetterRepository {
	return &deadLetterRepository{
		client: client,
	}
}

type deadLetterDoc struct {
	ID        string    `firestore:"id"`
	ChatID    string    `firestore:"chat_id"`
	Text      string    `firestore:"text"`
	Reason    string    `firestore:"reason"`
	Attempts  int       `firestore:"attempts"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (r *deadLetterRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, deadLettersCollection))
}

func (r *deadLetterRepository) Put(ctx context.Context, letter *model.DeadLetter) error {
	if letter == nil || letter.ID == "" {
		return goerr.New("dead letter ID is required")
	}

	doc := &deadLetterDoc{
		ID:        string(letter.ID),
		ChatID:    letter.ChatID.String(),
		Text:      letter.Text,
		Reason:    letter.Reason,
		Attempts:  letter.Attempts,
		CreatedAt: letter.CreatedAt,
	}
	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put dead letter", goerr.V("id", doc.ID))
	}
	return nil
}

func (r *deadLetterRepository) List(ctx context.Context, limit int) ([]*model.DeadLetter, error) {
	query := r.collection().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.DeadLetter, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate dead letters")
		}

		var doc deadLetterDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal dead letter", goerr.V("docID", snap.Ref.ID))
		}
		result = append(result, &model.DeadLetter{
			ID:        model.DeadLetterID(doc.ID),
			ChatID:    types.ChatID(doc.ChatID),
			Text:      doc.Text,
			Reason:    doc.Reason,
			Attempts:  doc.Attempts,
			CreatedAt: doc.CreatedAt,
		})
	}
	return result, nil
}
