package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/auth"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/telegram"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/usecase"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

// TelegramUseCase handles complete inbound chat messages
type TelegramUseCase interface {
	HandleMessage(ctx context.Context, msg *telegram.Message)
}

// SessionUseCase serves the token-based session API
type SessionUseCase interface {
	Login(ctx context.Context, username, password string) (*usecase.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	ListTasks(ctx context.Context, accountID types.AccountID) ([]*model.Task, error)
}

type Server struct {
	router        *chi.Mux
	telegramUC    TelegramUseCase
	webhookSecret string
	sessionUC     SessionUseCase
}

type Options func(*Server)

// WithTelegramWebhook enables the webhook endpoint. A non-empty secret is required in the
// X-Telegram-Bot-Api-Secret-Token header of every request.
func WithTelegramWebhook(uc TelegramUseCase, secret string) Options {
	return func(s *Server) {
		s.telegramUC = uc
		s.webhookSecret = secret
	}
}

func WithSession(uc SessionUseCase) Options {
	return func(s *Server) {
		s.sessionUC = uc
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", healthHandler)

	if s.sessionUC != nil {
		r.Route("/api/auth", func(r chi.Router) {
			r.Post("/login", loginHandler(s.sessionUC))
		})

		r.Route("/api/my", func(r chi.Router) {
			r.Use(bearerAuthMiddleware(s.sessionUC))
			r.Post("/tasks", myTasksHandler(s.sessionUC))
		})
	}

	// Telegram webhook endpoint - no session auth, optionally guarded by the secret token header
	if s.telegramUC != nil {
		r.Route("/hooks/telegram", func(r chi.Router) {
			r.Use(TelegramSecretTokenMiddleware(s.webhookSecret))
			r.Post("/webhook", telegramWebhookHandler(s.telegramUC))
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
