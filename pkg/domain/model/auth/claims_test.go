package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/auth"
)

func TestClaimsContext(t *testing.T) {
	_, ok := auth.ClaimsFromContext(context.Background())
	gt.Bool(t, ok).False()

	claims := &auth.Claims{AccountID: "acc-1", ExpiresAt: time.Now().Add(time.Hour)}
	ctx := auth.ContextWithClaims(context.Background(), claims)

	got, ok := auth.ClaimsFromContext(ctx)
	gt.Bool(t, ok).True()
	gt.Value(t, got.AccountID).Equal(claims.AccountID)
	gt.Value(t, got.ExpiresAt).Equal(claims.ExpiresAt)
}
