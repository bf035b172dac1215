package model

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// Company is the organization an account works for
type Company struct {
	ID   types.CompanyID
	Name string
}

// Account is an application identity that can log in and be linked to a Telegram chat
type Account struct {
	ID             types.AccountID
	Login          string // unique, e.g. an email address
	Name           string
	PasswordHash   []byte `masq:"secret"`
	Company        Company
	Avatar         []byte       // raw image bytes, may be empty
	TelegramChatID types.ChatID // empty when not linked
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAccount creates an account with a fresh ID
func NewAccount(login, name string, passwordHash []byte) *Account {
	now := time.Now().UTC()
	return &Account{
		ID:           types.NewAccountID(),
		Login:        strings.TrimSpace(login),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks that the account can be persisted
func (a *Account) Validate() error {
	if a == nil {
		return goerr.New("account is nil")
	}
	if err := a.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid account ID")
	}
	if strings.TrimSpace(a.Login) == "" {
		return goerr.New("account login is required", goerr.V("id", a.ID))
	}
	if len(a.PasswordHash) == 0 {
		return goerr.New("account password hash is required", goerr.V("id", a.ID))
	}
	return nil
}

// IsLinked reports whether a Telegram chat is bound to the account
func (a *Account) IsLinked() bool {
	return !a.TelegramChatID.IsEmpty()
}

// AvatarBase64 returns the avatar in its transport encoding, or "" when there is none
func (a *Account) AvatarBase64() string {
	if len(a.Avatar) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(a.Avatar)
}
