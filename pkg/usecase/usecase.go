package usecase

import (
	"time"

	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/service/identity"
	"github.com/secmon-lab/fieldlink/pkg/service/worker"
)

type UseCases struct {
	repo          interfaces.Repository
	authenticator interfaces.Authenticator
	notifier      interfaces.Notifier
	tokenSecret   []byte
	tokenTTL      time.Duration
	tokenOpts     []TokenOption

	Token    *TokenUseCase
	Link     *LinkUseCase
	Telegram *TelegramUseCase
	Session  *SessionUseCase
}

type Option func(*UseCases)

// WithAuthenticator replaces the bcrypt authenticator backed by the account repository
func WithAuthenticator(a interfaces.Authenticator) Option {
	return func(uc *UseCases) {
		uc.authenticator = a
	}
}

// WithNotifier sets the chat notifier. Defaults to a log-only notifier.
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithTokenSecret sets the HS256 signing secret and token lifetime
func WithTokenSecret(secret []byte, ttl time.Duration, opts ...TokenOption) Option {
	return func(uc *UseCases) {
		uc.tokenSecret = secret
		uc.tokenTTL = ttl
		uc.tokenOpts = opts
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		notifier: worker.LogNotifier{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.authenticator == nil {
		uc.authenticator = identity.New(repo.Account())
	}

	uc.Token = NewTokenUseCase(uc.tokenSecret, uc.tokenTTL, uc.tokenOpts...)
	uc.Link = NewLinkUseCase(repo.Account(), uc.authenticator)
	uc.Telegram = NewTelegramUseCase(uc.Link, repo, uc.notifier)
	uc.Session = NewSessionUseCase(uc.authenticator, repo.Task(), uc.Token)

	return uc
}
