package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/auth"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// LoginResult is a verified account with its freshly issued token
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *model.Account
}

// SessionUseCase serves the token-based session API
type SessionUseCase struct {
	authenticator interfaces.Authenticator
	tasks         interfaces.TaskRepository
	token         *TokenUseCase
}

func NewSessionUseCase(authenticator interfaces.Authenticator, tasks interfaces.TaskRepository, token *TokenUseCase) *SessionUseCase {
	return &SessionUseCase{
		authenticator: authenticator,
		tasks:         tasks,
		token:         token,
	}
}

// Login verifies credentials and issues a session token.
// Callers must not reveal the wrapped cause; it distinguishes unknown logins from wrong passwords.
func (uc *SessionUseCase) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, goerr.Wrap(ErrMissingCredentials, "username and password are required")
	}

	account, err := uc.authenticator.Verify(ctx, username, password)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "credential verification failed",
			goerr.V(LoginKey, username),
			goerr.V("cause", err.Error()))
	}
	if account == nil {
		return nil, goerr.Wrap(ErrInvalidCredentials, "authenticator returned no account", goerr.V(LoginKey, username))
	}

	token, expiresAt, err := uc.token.Issue(account.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to issue token", goerr.V(AccountIDKey, account.ID))
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}

// Authenticate verifies a bearer token
func (uc *SessionUseCase) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return uc.token.Verify(token)
}

// ListTasks returns the tasks assigned to the account, never nil
func (uc *SessionUseCase) ListTasks(ctx context.Context, accountID types.AccountID) ([]*model.Task, error) {
	tasks, err := uc.tasks.ListByOwner(ctx, accountID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V(AccountIDKey, accountID))
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return tasks, nil
}
