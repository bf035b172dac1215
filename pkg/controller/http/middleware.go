package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/auth"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

const (
	telegramSecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	msgAuthRequired = "Authentication required"
	msgInvalidToken = "Invalid authentication token"
)

// bearerAuthMiddleware verifies "Authorization: Bearer <token>" and puts the claims in the context
func bearerAuthMiddleware(sessionUC SessionUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r)
			if !ok {
				writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgAuthRequired})
				return
			}

			claims, err := sessionUC.Authenticate(ctx, token)
			if err != nil {
				logging.From(ctx).Info("rejected bearer token", "error", err.Error())
				writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgInvalidToken})
				return
			}

			ctx = auth.ContextWithClaims(ctx, claims)
			ctx = logging.With(ctx, logging.From(ctx).With("account_id", claims.AccountID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// TelegramSecretTokenMiddleware rejects webhook calls whose secret token header does not match.
// An empty secret disables the check.
func TelegramSecretTokenMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				if err := verifyTelegramSecretToken(secret, r.Header.Get(telegramSecretTokenHeader)); err != nil {
					logging.From(r.Context()).Warn("telegram webhook rejected", "error", err.Error())
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyTelegramSecretToken(expected, actual string) error {
	if actual == "" {
		return goerr.New("missing secret token header")
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) != 1 {
		return goerr.New("secret token mismatch")
	}
	return nil
}
