package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[types.AccountID]*model.Account
	byLogin  map[string]types.AccountID
}

func newAccountRepository() *accountRepository {
	return &accountRepository{
		accounts: make(map[types.AccountID]*model.Account),
		byLogin:  make(map[string]types.AccountID),
	}
}

func copyAccount(a *model.Account) *model.Account {
	copied := *a
	if a.PasswordHash != nil {
		copied.PasswordHash = append([]byte(nil), a.PasswordHash...)
	}
	if a.Avatar != nil {
		copied.Avatar = append([]byte(nil), a.Avatar...)
	}
	return &copied
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := account.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid account")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byLogin[account.Login]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "login already taken", goerr.V("login", account.Login))
	}
	if _, exists := r.accounts[account.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "account ID already taken", goerr.V("id", account.ID))
	}

	created := copyAccount(account)
	r.accounts[created.ID] = created
	r.byLogin[created.Login] = created.ID

	return copyAccount(created), nil
}

func (r *accountRepository) Get(ctx context.Context, id types.AccountID) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
	}
	return copyAccount(account), nil
}

func (r *accountRepository) GetByLogin(ctx context.Context, login string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byLogin[login]
	if !ok {
		return nil, nil
	}
	return copyAccount(r.accounts[id]), nil
}

func (r *accountRepository) GetByChatID(ctx context.Context, chatID types.ChatID) (*model.Account, error) {
	if chatID.IsEmpty() {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.TelegramChatID == chatID {
			return copyAccount(account), nil
		}
	}
	return nil, nil
}

func (r *accountRepository) SetChatID(ctx context.Context, id types.AccountID, chatID types.ChatID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
	}
	account.TelegramChatID = chatID
	account.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *accountRepository) ClearChatID(ctx context.Context, chatID types.ChatID, keep types.AccountID) (int, error) {
	if chatID.IsEmpty() {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cleared := 0
	now := time.Now().UTC()
	for id, account := range r.accounts {
		if id == keep || account.TelegramChatID != chatID {
			continue
		}
		account.TelegramChatID = ""
		account.UpdatedAt = now
		cleared++
	}
	return cleared, nil
}

func (r *accountRepository) SetPasswordHash(ctx context.Context, id types.AccountID, hash []byte) error {
	if len(hash) == 0 {
		return goerr.New("password hash is required", goerr.V("id", id))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
	}
	account.PasswordHash = append([]byte(nil), hash...)
	account.UpdatedAt = time.Now().UTC()
	return nil
}
