package interfaces

import (
	"context"

	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// Create stores a new account. Returns an error if the login is already taken.
	Create(ctx context.Context, account *model.Account) (*model.Account, error)

	// Get retrieves an account by ID
	Get(ctx context.Context, id types.AccountID) (*model.Account, error)

	// GetByLogin retrieves exactly one account by exact login match.
	// Returns (nil, nil) when no account has the login.
	GetByLogin(ctx context.Context, login string) (*model.Account, error)

	// GetByChatID retrieves the account bound to a Telegram chat.
	// Returns (nil, nil) when the chat is not linked.
	GetByChatID(ctx context.Context, chatID types.ChatID) (*model.Account, error)

	// SetChatID writes the Telegram chat binding. An empty chatID clears it.
	SetChatID(ctx context.Context, id types.AccountID, chatID types.ChatID) error

	// ClearChatID unbinds chatID from every account except keep and returns how many
	// bindings were cleared. An empty keep clears all of them.
	ClearChatID(ctx context.Context, chatID types.ChatID, keep types.AccountID) (int, error)

	// SetPasswordHash replaces the stored password hash
	SetPasswordHash(ctx context.Context, id types.AccountID, hash []byte) error
}
