package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/utils/errutil"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

// Link result messages
const (
	LinkMessageSuccess            = "Telegram linked successfully"
	LinkMessageMissingCredentials = "Missing credentials"
	LinkMessageUserNotFound       = "User not found"
	LinkMessageInvalidPassword    = "Invalid password"
	LinkMessageFailed             = "Linking failed"
)

// Public reasons shown to chat users. Unknown login and wrong password share one reason.
const (
	LinkReasonMissingCredentials = "Missing credentials"
	LinkReasonInvalidCredentials = "Invalid login or password"
	LinkReasonFailed             = "Linking failed"
)

// LinkResult is the outcome of a linking attempt.
// Message is the detailed outcome; Reason is safe to show to the chat user and empty on success.
type LinkResult struct {
	Status  types.LinkStatus
	Message string
	Reason  string
}

// Succeeded reports whether the chat was linked
func (r LinkResult) Succeeded() bool {
	return r.Status == types.LinkStatusSuccess
}

func linkError(message, reason string) LinkResult {
	return LinkResult{Status: types.LinkStatusError, Message: message, Reason: reason}
}

// LinkUseCase binds a Telegram chat to an account after verifying credentials
type LinkUseCase struct {
	accounts      interfaces.AccountRepository
	authenticator interfaces.Authenticator
}

func NewLinkUseCase(accounts interfaces.AccountRepository, authenticator interfaces.Authenticator) *LinkUseCase {
	return &LinkUseCase{
		accounts:      accounts,
		authenticator: authenticator,
	}
}

// Link verifies login and secret and writes chatID onto the account.
// It never returns an error or panics; every failure is folded into the result.
func (uc *LinkUseCase) Link(ctx context.Context, login, secret string, chatID types.ChatID) (result LinkResult) {
	logger := logging.From(ctx).With(ChatIDKey, chatID, LoginKey, login)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while linking chat", "panic", r)
			result = linkError(LinkMessageFailed, LinkReasonFailed)
		}
	}()

	if login == "" || secret == "" || chatID.IsEmpty() {
		return linkError(LinkMessageMissingCredentials, LinkReasonMissingCredentials)
	}

	account, err := uc.accounts.GetByLogin(ctx, login)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to look up account",
			goerr.V(LoginKey, login), goerr.V(ChatIDKey, chatID)), "linking failed")
		return linkError(LinkMessageFailed, LinkReasonFailed)
	}
	if account == nil {
		logger.Info("link rejected: unknown login")
		return linkError(LinkMessageUserNotFound, LinkReasonInvalidCredentials)
	}

	verified, err := uc.authenticator.Verify(ctx, login, secret)
	if err != nil || verified == nil {
		logger.Info("link rejected: credential verification failed", "account_id", account.ID)
		return linkError(LinkMessageInvalidPassword, LinkReasonInvalidCredentials)
	}

	// keep chat to account 1:1, the most recent link wins
	cleared, err := uc.accounts.ClearChatID(ctx, chatID, verified.ID)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to clear previous chat bindings",
			goerr.V(AccountIDKey, verified.ID), goerr.V(ChatIDKey, chatID)), "linking failed")
		return linkError(LinkMessageFailed, LinkReasonFailed)
	}
	if cleared > 0 {
		logger.Info("cleared previous chat bindings", "count", cleared)
	}

	if err := uc.accounts.SetChatID(ctx, verified.ID, chatID); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to write chat binding",
			goerr.V(AccountIDKey, verified.ID), goerr.V(ChatIDKey, chatID)), "linking failed")
		return linkError(LinkMessageFailed, LinkReasonFailed)
	}

	logger.Info("telegram chat linked", "account_id", verified.ID)
	return LinkResult{Status: types.LinkStatusSuccess, Message: LinkMessageSuccess}
}
