package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
)

// countingAuthenticator records calls and rejects everything
type countingAuthenticator struct {
	calls int
}

func (a *countingAuthenticator) Verify(ctx context.Context, login, secret string) (*model.Account, error) {
	a.calls++
	return nil, errors.New("rejected")
}

// decodeTokenPayload returns the claims of a token without verifying it
func decodeTokenPayload(t *testing.T, token string) map[string]any {
	t.Helper()

	tok, err := jwt.ParseInsecure([]byte(token))
	gt.NoError(t, err).Required()

	// the token marshals registered dates as NumericDate
	raw, err := json.Marshal(tok)
	gt.NoError(t, err).Required()
	var out map[string]any
	gt.NoError(t, json.Unmarshal(raw, &out)).Required()
	return out
}
