package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
)

func runDeadLetterRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("List returns newest first and honours limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		base := time.Now().UTC()

		for i := range 3 {
			letter := model.NewDeadLetter("42", "hello", "chat not found", 3)
			letter.CreatedAt = base.Add(time.Duration(i) * time.Second)
			gt.NoError(t, repo.DeadLetter().Put(ctx, letter)).Required()
		}

		letters, err := repo.DeadLetter().List(ctx, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, letters).Length(2).Required()
		gt.Bool(t, letters[0].CreatedAt.After(letters[1].CreatedAt)).True()
		gt.Value(t, letters[0].Reason).Equal("chat not found")
		gt.Value(t, letters[0].Attempts).Equal(3)

		all, err := repo.DeadLetter().List(ctx, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)
	})

	t.Run("Put rejects missing ID", func(t *testing.T) {
		repo := newRepo(t)
		gt.Value(t, repo.DeadLetter().Put(context.Background(), &model.DeadLetter{})).NotNil()
	})
}
