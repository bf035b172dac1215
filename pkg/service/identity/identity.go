package identity

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnknownLogin     = errors.New("unknown login")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// placeholderHash keeps unknown-login verification as slow as a real comparison
var placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("fieldlink-placeholder"), bcrypt.DefaultCost)

// Authenticator verifies login/secret pairs against bcrypt hashes stored on accounts
type Authenticator struct {
	accounts interfaces.AccountRepository
}

var _ interfaces.Authenticator = &Authenticator{}

func New(accounts interfaces.AccountRepository) *Authenticator {
	return &Authenticator{accounts: accounts}
}

// Verify returns the account whose login and secret match
func (a *Authenticator) Verify(ctx context.Context, login, secret string) (*model.Account, error) {
	if login == "" || secret == "" {
		return nil, goerr.New("login and secret are required")
	}

	account, err := a.accounts.GetByLogin(ctx, login)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up account", goerr.V("login", login))
	}
	if account == nil {
		_ = bcrypt.CompareHashAndPassword(placeholderHash, []byte(secret))
		return nil, goerr.Wrap(ErrUnknownLogin, "account not found", goerr.V("login", login))
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(secret)); err != nil {
		return nil, goerr.Wrap(ErrPasswordMismatch, "password does not match",
			goerr.V("login", login),
			goerr.V("account_id", account.ID))
	}

	return account, nil
}

// HashPassword returns the bcrypt hash stored on accounts
func HashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, goerr.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to hash password")
	}
	return hash, nil
}
