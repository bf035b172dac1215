package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/repository/firestore"
	"github.com/secmon-lab/fieldlink/pkg/repository/memory"
	"github.com/secmon-lab/fieldlink/pkg/repository/sqlstore"
)

func newTestAccount() *model.Account {
	a := model.NewAccount(uuid.NewString()+"@example.com", "Tech One", []byte("hash"))
	a.Company = model.Company{ID: "c-1", Name: "Acme Field Services"}
	a.Avatar = []byte{0x89, 0x50, 0x4e, 0x47}
	return a
}

func isAlreadyExists(err error) bool {
	return errors.Is(err, memory.ErrAlreadyExists) ||
		errors.Is(err, sqlstore.ErrAlreadyExists) ||
		errors.Is(err, firestore.ErrAlreadyExists)
}

func isNotFound(err error) bool {
	return errors.Is(err, memory.ErrNotFound) ||
		errors.Is(err, sqlstore.ErrNotFound) ||
		errors.Is(err, firestore.ErrNotFound)
}

func runAccountRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		account := newTestAccount()

		created, err := repo.Account().Create(ctx, account)
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(account.ID)

		got, err := repo.Account().Get(ctx, account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Login).Equal(account.Login)
		gt.Value(t, got.Name).Equal("Tech One")
		gt.Value(t, got.PasswordHash).Equal([]byte("hash"))
		gt.Value(t, got.Company).Equal(account.Company)
		gt.Value(t, got.Avatar).Equal(account.Avatar)
		gt.Bool(t, got.IsLinked()).False()
		gt.Bool(t, got.CreatedAt.Sub(account.CreatedAt).Abs() < time.Second).True()
	})

	t.Run("Create rejects duplicate login", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		first := newTestAccount()
		_, err := repo.Account().Create(ctx, first)
		gt.NoError(t, err).Required()

		second := newTestAccount()
		second.Login = first.Login
		_, err = repo.Account().Create(ctx, second)
		gt.Value(t, err).NotNil()
		gt.Bool(t, isAlreadyExists(err)).True()
	})

	t.Run("Create rejects invalid account", func(t *testing.T) {
		repo := newRepo(t)
		account := newTestAccount()
		account.PasswordHash = nil

		_, err := repo.Account().Create(context.Background(), account)
		gt.Value(t, err).NotNil()
	})

	t.Run("Get unknown account returns not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Account().Get(context.Background(), types.NewAccountID())
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("GetByLogin", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		account := newTestAccount()
		_, err := repo.Account().Create(ctx, account)
		gt.NoError(t, err).Required()

		got, err := repo.Account().GetByLogin(ctx, account.Login)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.ID).Equal(account.ID)

		missing, err := repo.Account().GetByLogin(ctx, "nobody-"+uuid.NewString())
		gt.NoError(t, err)
		gt.Value(t, missing).Nil()
	})

	t.Run("SetChatID binds and clears", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		account := newTestAccount()
		_, err := repo.Account().Create(ctx, account)
		gt.NoError(t, err).Required()

		chatID := types.ChatID(uuid.NewString())
		gt.NoError(t, repo.Account().SetChatID(ctx, account.ID, chatID)).Required()

		got, err := repo.Account().GetByChatID(ctx, chatID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.ID).Equal(account.ID)
		gt.Value(t, got.TelegramChatID).Equal(chatID)

		gt.NoError(t, repo.Account().SetChatID(ctx, account.ID, "")).Required()
		got, err = repo.Account().GetByChatID(ctx, chatID)
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("ClearChatID unbinds every account except keep", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		chatID := types.ChatID(uuid.NewString())

		var ids []types.AccountID
		for range 3 {
			account := newTestAccount()
			_, err := repo.Account().Create(ctx, account)
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Account().SetChatID(ctx, account.ID, chatID)).Required()
			ids = append(ids, account.ID)
		}

		cleared, err := repo.Account().ClearChatID(ctx, chatID, ids[0])
		gt.NoError(t, err).Required()
		gt.Value(t, cleared).Equal(2)

		kept, err := repo.Account().Get(ctx, ids[0])
		gt.NoError(t, err).Required()
		gt.Value(t, kept.TelegramChatID).Equal(chatID)
		for _, id := range ids[1:] {
			got, err := repo.Account().Get(ctx, id)
			gt.NoError(t, err).Required()
			gt.Value(t, got.TelegramChatID).Equal(types.ChatID(""))
		}

		cleared, err = repo.Account().ClearChatID(ctx, chatID, "")
		gt.NoError(t, err).Required()
		gt.Value(t, cleared).Equal(1)
		got, err := repo.Account().GetByChatID(ctx, chatID)
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("ClearChatID with empty chat is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		cleared, err := repo.Account().ClearChatID(context.Background(), "", "")
		gt.NoError(t, err).Required()
		gt.Value(t, cleared).Equal(0)
	})

	t.Run("GetByChatID with empty chat returns nil", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.Account().GetByChatID(context.Background(), "")
		gt.NoError(t, err)
		gt.Value(t, got).Nil()
	})

	t.Run("SetChatID on unknown account returns not found", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.Account().SetChatID(context.Background(), types.NewAccountID(), "42")
		gt.Value(t, err).NotNil()
		gt.Bool(t, isNotFound(err)).True()
	})

	t.Run("SetPasswordHash", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		account := newTestAccount()
		_, err := repo.Account().Create(ctx, account)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Account().SetPasswordHash(ctx, account.ID, []byte("new-hash"))).Required()
		got, err := repo.Account().Get(ctx, account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.PasswordHash).Equal([]byte("new-hash"))

		gt.Value(t, repo.Account().SetPasswordHash(ctx, account.ID, nil)).NotNil()
	})

	t.Run("returned accounts are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		account := newTestAccount()
		_, err := repo.Account().Create(ctx, account)
		gt.NoError(t, err).Required()

		got, err := repo.Account().Get(ctx, account.ID)
		gt.NoError(t, err).Required()
		got.Name = "changed"
		got.PasswordHash[0] = 'X'

		again, err := repo.Account().Get(ctx, account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Name).Equal("Tech One")
		gt.Value(t, again.PasswordHash).Equal([]byte("hash"))
	})
}
