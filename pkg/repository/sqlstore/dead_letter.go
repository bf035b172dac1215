package sqlstore

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

type deadLetterRepository struct {
	store *Store
}

var _ interfaces.DeadLetterRepository = &deadLetterRepository{}

func (r *deadLetterRepository) Put(ctx context.Context, letter *model.DeadLetter) error {
	if letter == nil || letter.ID == "" {
		return goerr.New("dead letter ID is required")
	}

	_, err := r.store.exec(ctx,
		`INSERT INTO dead_letters (id, chat_id, text, reason, attempts, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(letter.ID), letter.ChatID.String(), letter.Text, letter.Reason, letter.Attempts, toNanos(letter.CreatedAt))
	if err != nil {
		return goerr.Wrap(err, "failed to insert dead letter", goerr.V("id", letter.ID))
	}
	return nil
}

func (r *deadLetterRepository) List(ctx context.Context, limit int) ([]*model.DeadLetter, error) {
	query := `SELECT id, chat_id, text, reason, attempts, created_at FROM dead_letters ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.store.query(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query dead letters")
	}
	defer func() { _ = rows.Close() }()

	result := make([]*model.DeadLetter, 0)
	for rows.Next() {
		var (
			l          model.DeadLetter
			id, chatID string
			createdAt  int64
		)
		if err := rows.Scan(&id, &chatID, &l.Text, &l.Reason, &l.Attempts, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan dead letter")
		}
		l.ID = model.DeadLetterID(id)
		l.ChatID = types.ChatID(chatID)
		l.CreatedAt = fromNanos(createdAt)
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate dead letters")
	}
	return result, nil
}
