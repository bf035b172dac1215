package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
)

type deadLetterRepository struct {
	mu      sync.RWMutex
	letters []*model.DeadLetter
}

func newDeadLetterRepository() *deadLetterRepository {
	return &deadLetterRepository{}
}

func (r *deadLetterRepository) Put(ctx context.Context, letter *model.DeadLetter) error {
	if letter == nil || letter.ID == "" {
		return goerr.New("dead letter ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *letter
	r.letters = append(r.letters, &copied)
	return nil
}

func (r *deadLetterRepository) List(ctx context.Context, limit int) ([]*model.DeadLetter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.DeadLetter, 0, len(r.letters))
	for _, l := range r.letters {
		copied := *l
		result = append(result, &copied)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
