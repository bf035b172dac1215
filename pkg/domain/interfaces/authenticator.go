package interfaces

import (
	"context"

	"github.com/secmon-lab/fieldlink/pkg/domain/model"
)

// Authenticator is the credential verification primitive of the identity store.
// It returns the verified account or an error; callers must not rely on the error kind
// to tell an unknown login from a wrong secret.
type Authenticator interface {
	Verify(ctx context.Context, login, secret string) (*model.Account, error)
}
