package interfaces

import (
	"context"

	"github.com/secmon-lab/fieldlink/pkg/domain/model"
)

// DeadLetterRepository stores notifications that could not be delivered
type DeadLetterRepository interface {
	Put(ctx context.Context, letter *model.DeadLetter) error

	// List returns the most recent dead letters, newest first
	List(ctx context.Context, limit int) ([]*model.DeadLetter, error)
}
