package usecase

import (
	"crypto/rand"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/auth"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

const (
	DefaultTokenTTL = 24 * time.Hour

	// TokenSecretSize is the length of generated signing secrets
	TokenSecretSize = 32

	claimUserID = "user_id"
)

// TokenUseCase issues and verifies HS256 session tokens
type TokenUseCase struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// TokenOption is a functional option for TokenUseCase
type TokenOption func(*TokenUseCase)

// WithClock replaces the time source used for issuing and validating tokens
func WithClock(now func() time.Time) TokenOption {
	return func(uc *TokenUseCase) {
		uc.now = now
	}
}

// NewTokenUseCase creates a token service. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenUseCase(secret []byte, ttl time.Duration, opts ...TokenOption) *TokenUseCase {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	uc := &TokenUseCase{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GenerateTokenSecret returns a random signing secret
func GenerateTokenSecret() ([]byte, error) {
	secret := make([]byte, TokenSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, goerr.Wrap(err, "failed to generate token secret")
	}
	return secret, nil
}

// TTL returns the lifetime of issued tokens
func (uc *TokenUseCase) TTL() time.Duration {
	return uc.ttl
}

// Issue signs a token for the account and returns it with its expiry
func (uc *TokenUseCase) Issue(accountID types.AccountID) (string, time.Time, error) {
	if err := accountID.Validate(); err != nil {
		return "", time.Time{}, goerr.Wrap(err, "invalid account ID")
	}
	if len(uc.secret) == 0 {
		return "", time.Time{}, goerr.New("token secret is not configured")
	}

	issuedAt := uc.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(uc.ttl)

	tok, err := jwt.NewBuilder().
		Subject(accountID.String()).
		Claim(claimUserID, accountID.String()).
		IssuedAt(issuedAt).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, goerr.Wrap(err, "failed to build token", goerr.V(AccountIDKey, accountID))
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return "", time.Time{}, goerr.Wrap(err, "failed to sign token", goerr.V(AccountIDKey, accountID))
	}

	return string(signed), expiresAt, nil
}

// Verify checks signature and expiry and returns the claims
func (uc *TokenUseCase) Verify(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "token is empty")
	}
	if len(uc.secret) == 0 {
		return nil, goerr.New("token secret is not configured")
	}

	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "failed to verify token", goerr.V("error", err.Error()))
	}

	accountID := types.AccountID(tok.Subject())
	if accountID == "" {
		if v, ok := tok.Get(claimUserID); ok {
			if s, ok := v.(string); ok {
				accountID = types.AccountID(s)
			}
		}
	}
	if accountID == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "token has no subject")
	}
	if tok.Expiration().IsZero() {
		return nil, goerr.Wrap(ErrInvalidToken, "token has no expiry", goerr.V(AccountIDKey, accountID))
	}

	return &auth.Claims{
		AccountID: accountID,
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}
