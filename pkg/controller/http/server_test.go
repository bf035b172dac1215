package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/fieldlink/pkg/controller/http"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/repository/memory"
	"github.com/secmon-lab/fieldlink/pkg/service/identity"
	"github.com/secmon-lab/fieldlink/pkg/usecase"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type notification struct {
	chatID types.ChatID
	text   string
}

// mockNotifier records notifications instead of sending them
type mockNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (m *mockNotifier) Notify(ctx context.Context, chatID types.ChatID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, notification{chatID: chatID, text: text})
}

func (m *mockNotifier) messages() []notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification(nil), m.sent...)
}

type testEnv struct {
	repo     *memory.Memory
	notifier *mockNotifier
	uc       *usecase.UseCases
	server   *httpctrl.Server
	account  *model.Account
}

func newTestEnv(t *testing.T, webhookSecret string) *testEnv {
	t.Helper()

	repo := memory.New()
	hash, err := identity.HashPassword("secret123")
	gt.NoError(t, err).Required()

	account := model.NewAccount("a@b.com", "Alex Tech", hash)
	account.Company = model.Company{ID: "7", Name: "Acme Field Services"}
	account.Avatar = []byte("img")
	account, err = repo.Account().Create(context.Background(), account)
	gt.NoError(t, err).Required()

	notifier := &mockNotifier{}
	uc := usecase.New(repo,
		usecase.WithNotifier(notifier),
		usecase.WithTokenSecret(testSecret, 24*time.Hour),
	)

	server := httpctrl.New(
		httpctrl.WithTelegramWebhook(uc.Telegram, webhookSecret),
		httpctrl.WithSession(uc.Session),
	)

	return &testEnv{
		repo:     repo,
		notifier: notifier,
		uc:       uc,
		server:   server,
		account:  account,
	}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	return body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	gt.Value(t, rec.Code).Equal(http.StatusOK)
	body := decodeJSON(t, rec)
	gt.Value(t, body["status"]).Equal("ok")
	gt.Map(t, body).HasKey("timestamp")
}

func TestLogin(t *testing.T) {
	post := func(env *testEnv, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid credentials return a token", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := post(env, url.Values{"username": {"a@b.com"}, "password": {"secret123"}})

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		body := decodeJSON(t, rec)
		gt.Value(t, body["success"]).Equal(true)
		gt.Value(t, body["message"]).Equal("Successfully logged in.")
		gt.Value(t, body["user_id"]).Equal(env.account.ID.String())
		gt.Value(t, body["user_name"]).Equal("Alex Tech")
		gt.Value(t, body["company_id"]).Equal("7")
		gt.Value(t, body["company_name"]).Equal("Acme Field Services")
		gt.Value(t, body["image"]).Equal("aW1n")

		token, ok := body["jwt_token"].(string)
		gt.Bool(t, ok).True()
		gt.String(t, token).NotEqual("")

		claims := decodeTokenPayload(t, token)
		gt.Value(t, claims["user_id"]).Equal(env.account.ID.String())
		exp := time.Unix(int64(claims["exp"].(float64)), 0)
		gt.Bool(t, time.Until(exp) > 23*time.Hour).True()
		gt.Bool(t, time.Until(exp) <= 24*time.Hour).True()
	})

	t.Run("query parameters are accepted", func(t *testing.T) {
		env := newTestEnv(t, "")
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login?username=a@b.com&password=secret123", nil)
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("JSON body is accepted", func(t *testing.T) {
		env := newTestEnv(t, "")
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"username":"a@b.com","password":"secret123"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("missing password is 400 without reaching the identity store", func(t *testing.T) {
		env := newTestEnv(t, "")
		auth := &countingAuthenticator{}
		uc := usecase.New(env.repo, usecase.WithAuthenticator(auth), usecase.WithTokenSecret(testSecret, time.Hour))
		server := httpctrl.New(httpctrl.WithSession(uc.Session))

		form := url.Values{"username": {"a@b.com"}}
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		body := decodeJSON(t, rec)
		gt.Value(t, body["success"]).Equal(false)
		gt.Value(t, body["error"]).Equal("Missing required parameters.")
		gt.Value(t, auth.calls).Equal(0)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		env := newTestEnv(t, "")

		wrong := post(env, url.Values{"username": {"a@b.com"}, "password": {"nope"}})
		unknown := post(env, url.Values{"username": {"x@b.com"}, "password": {"secret123"}})

		gt.Value(t, wrong.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, unknown.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, wrong.Body.String()).Equal(unknown.Body.String())
		gt.Value(t, decodeJSON(t, wrong)["error"]).Equal("Invalid username or password.")
	})
}

func TestMyTasks(t *testing.T) {
	login := func(t *testing.T, env *testEnv) string {
		token, _, err := env.uc.Token.Issue(env.account.ID)
		gt.NoError(t, err).Required()
		return token
	}

	call := func(env *testEnv, authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/my/tasks", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		return rec
	}

	t.Run("no tasks returns empty list", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := call(env, "Bearer "+login(t, env))

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains(`"tasks":[]`)
		body := decodeJSON(t, rec)
		gt.Value(t, body["count"]).Equal(float64(0))
	})

	t.Run("returns owned tasks", func(t *testing.T) {
		env := newTestEnv(t, "")
		ctx := context.Background()
		scheduled := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
		gt.NoError(t, env.repo.Task().Put(ctx, &model.Task{
			ID: "t-1", Name: "Install", Customer: "Globex", Status: "New",
			ScheduledDate: &scheduled, Description: "desc", OwnerID: env.account.ID,
		})).Required()
		gt.NoError(t, env.repo.Task().Put(ctx, &model.Task{
			ID: "t-2", Name: "Foreign", OwnerID: types.NewAccountID(),
		})).Required()

		rec := call(env, "Bearer "+login(t, env))
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		var body struct {
			Count int `json:"count"`
			Tasks []struct {
				ID            string  `json:"id"`
				Name          string  `json:"name"`
				Customer      string  `json:"customer"`
				Status        string  `json:"status"`
				ScheduledDate *string `json:"scheduled_date"`
				Location      string  `json:"location"`
				Description   string  `json:"description"`
			} `json:"tasks"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body.Count).Equal(1)
		gt.Array(t, body.Tasks).Length(1).Required()
		gt.Value(t, body.Tasks[0].ID).Equal("t-1")
		gt.Value(t, body.Tasks[0].Customer).Equal("Globex")
		gt.Value(t, body.Tasks[0].Location).Equal("")
		gt.Value(t, *body.Tasks[0].ScheduledDate).Equal("2026-05-04T08:00:00Z")
	})

	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := call(env, "")
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, decodeJSON(t, rec)["error"]).Equal("Authentication required")
	})

	t.Run("invalid token", func(t *testing.T) {
		env := newTestEnv(t, "")
		other := usecase.NewTokenUseCase([]byte("other-secret-other-secret-other!"), time.Hour)
		token, _, err := other.Issue(env.account.ID)
		gt.NoError(t, err).Required()

		rec := call(env, "Bearer "+token)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Value(t, decodeJSON(t, rec)["error"]).Equal("Invalid authentication token")
	})
}

func TestTelegramWebhook(t *testing.T) {
	post := func(env *testEnv, body string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/hooks/telegram/webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, req)
		return rec
	}

	t.Run("/start sends one onboarding message", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := post(env, `{"update_id":1,"message":{"chat":{"id":42},"text":" /Start "}}`, nil)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, decodeJSON(t, rec)["ok"]).Equal(true)
		sent := env.notifier.messages()
		gt.Array(t, sent).Length(1).Required()
		gt.Value(t, sent[0].chatID).Equal(types.ChatID("42"))
		gt.Value(t, sent[0].text).Equal(usecase.MessageOnboarding)
	})

	t.Run("no comma sends malformed prompt", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := post(env, `{"message":{"chat":{"id":42},"text":"hello there"}}`, nil)

		gt.Value(t, decodeJSON(t, rec)["ok"]).Equal(true)
		sent := env.notifier.messages()
		gt.Array(t, sent).Length(1).Required()
		gt.Value(t, sent[0].text).Equal(usecase.MessageMalformed)
	})

	t.Run("credentials with whitespace link the chat", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := post(env, `{"message":{"chat":{"id":"12345"},"text":"  a@b.com , secret123  "}}`, nil)

		gt.Value(t, decodeJSON(t, rec)["ok"]).Equal(true)
		sent := env.notifier.messages()
		gt.Array(t, sent).Length(1).Required()
		gt.Value(t, sent[0].text).Equal(usecase.MessageLinked)

		got, err := env.repo.Account().Get(context.Background(), env.account.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.TelegramChatID).Equal(types.ChatID("12345"))
	})

	t.Run("missing chat id or text", func(t *testing.T) {
		for _, body := range []string{
			`{"message":{"chat":{"id":42},"text":""}}`,
			`{"message":{"chat":{},"text":"/start"}}`,
			`{"message":{"text":"/start"}}`,
		} {
			env := newTestEnv(t, "")
			rec := post(env, body, nil)

			gt.Value(t, rec.Code).Equal(http.StatusOK)
			resp := decodeJSON(t, rec)
			gt.Value(t, resp["ok"]).Equal(false)
			gt.Value(t, resp["error"]).Equal("Missing chat_id or text")
			gt.Array(t, env.notifier.messages()).Length(0)
		}
	})

	t.Run("update without message", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := post(env, `{"update_id":5}`, nil)

		resp := decodeJSON(t, rec)
		gt.Value(t, resp["ok"]).Equal(false)
		gt.Value(t, resp["error"]).Equal("No message")
		gt.Array(t, env.notifier.messages()).Length(0)
	})

	t.Run("invalid payload", func(t *testing.T) {
		env := newTestEnv(t, "")
		rec := post(env, `{not json`, nil)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		resp := decodeJSON(t, rec)
		gt.Value(t, resp["ok"]).Equal(false)
		gt.Value(t, resp["error"]).Equal("Invalid payload")
	})

	t.Run("secret token is enforced when configured", func(t *testing.T) {
		env := newTestEnv(t, "hook-secret")
		body := `{"message":{"chat":{"id":42},"text":"/start"}}`

		rec := post(env, body, nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)

		rec = post(env, body, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "wrong"})
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
		gt.Array(t, env.notifier.messages()).Length(0)

		rec = post(env, body, map[string]string{"X-Telegram-Bot-Api-Secret-Token": "hook-secret"})
		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Array(t, env.notifier.messages()).Length(1)
	})
}
