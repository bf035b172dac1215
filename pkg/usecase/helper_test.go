package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/repository/memory"
	"github.com/secmon-lab/fieldlink/pkg/service/identity"
)

type notification struct {
	chatID types.ChatID
	text   string
}

// mockNotifier records notifications instead of sending them
type mockNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (m *mockNotifier) Notify(ctx context.Context, chatID types.ChatID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, notification{chatID: chatID, text: text})
}

func (m *mockNotifier) messages() []notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification(nil), m.sent...)
}

// mockAuthenticator counts calls and delegates to verify
type mockAuthenticator struct {
	calls  int
	verify func(ctx context.Context, login, secret string) (*model.Account, error)
}

func (m *mockAuthenticator) Verify(ctx context.Context, login, secret string) (*model.Account, error) {
	m.calls++
	if m.verify == nil {
		return nil, errors.New("not configured")
	}
	return m.verify(ctx, login, secret)
}

func createAccount(t *testing.T, repo *memory.Memory, login, password string) *model.Account {
	t.Helper()

	hash, err := identity.HashPassword(password)
	gt.NoError(t, err).Required()

	account := model.NewAccount(login, "Tech "+login, hash)
	account.Company = model.Company{ID: "c-1", Name: "Acme"}
	created, err := repo.Account().Create(context.Background(), account)
	gt.NoError(t, err).Required()
	return created
}
