package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/auth"
	"github.com/secmon-lab/fieldlink/pkg/usecase"
	"github.com/secmon-lab/fieldlink/pkg/utils/errutil"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
)

const (
	msgMissingParameters  = "Missing required parameters."
	msgInvalidCredentials = "Invalid username or password."
	msgLoggedIn           = "Successfully logged in."
	msgFetchTasksFailed   = "Failed to fetch tasks"
)

type loginFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type loginSuccessResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	JWTToken    string `json:"jwt_token"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Image       string `json:"image"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readLoginRequest reads username and password from a JSON body, a form body or the query string
func readLoginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, error) {
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		body := http.MaxBytesReader(w, r.Body, 1<<16)
		defer safe.Drain(r.Context(), body)

		var req loginRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			return loginRequest{}, goerr.Wrap(err, "failed to decode login request")
		}
		return req, nil
	}

	return loginRequest{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}, nil
}

func loginHandler(sessionUC SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, err := readLoginRequest(w, r)
		if err != nil {
			logging.From(ctx).Info("unreadable login request", "error", err.Error())
			writeJSON(ctx, w, http.StatusBadRequest, loginFailureResponse{Error: msgMissingParameters})
			return
		}
		if req.Username == "" || req.Password == "" {
			writeJSON(ctx, w, http.StatusBadRequest, loginFailureResponse{Error: msgMissingParameters})
			return
		}

		result, err := sessionUC.Login(ctx, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidCredentials) || errors.Is(err, usecase.ErrMissingCredentials) {
				logging.From(ctx).Info("login rejected", "username", req.Username, "error", err.Error())
			} else {
				errutil.Handle(ctx, err, "login failed")
			}
			writeJSON(ctx, w, http.StatusUnauthorized, loginFailureResponse{Error: msgInvalidCredentials})
			return
		}

		account := result.Account
		writeJSON(ctx, w, http.StatusOK, loginSuccessResponse{
			Success:     true,
			Message:     msgLoggedIn,
			JWTToken:    result.Token,
			UserID:      account.ID.String(),
			UserName:    account.Name,
			CompanyID:   account.Company.ID.String(),
			CompanyName: account.Company.Name,
			Image:       account.AvatarBase64(),
		})
	}
}

type taskResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Customer      string  `json:"customer"`
	Status        string  `json:"status"`
	ScheduledDate *string `json:"scheduled_date"`
	Location      string  `json:"location"`
	Description   string  `json:"description"`
}

type tasksResponse struct {
	Count int            `json:"count"`
	Tasks []taskResponse `json:"tasks"`
}

func toTaskResponse(t *model.Task) taskResponse {
	resp := taskResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Customer:    t.Customer,
		Status:      t.Status,
		Location:    t.Location,
		Description: t.Description,
	}
	if t.ScheduledDate != nil {
		s := t.ScheduledDate.UTC().Format(time.RFC3339)
		resp.ScheduledDate = &s
	}
	return resp
}

func myTasksHandler(sessionUC SessionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := auth.ClaimsFromContext(ctx)
		if !ok {
			writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{Error: msgAuthRequired})
			return
		}

		tasks, err := sessionUC.ListTasks(ctx, claims.AccountID)
		if err != nil {
			errutil.Handle(ctx, err, "failed to fetch tasks")
			writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: msgFetchTasksFailed})
			return
		}

		resp := tasksResponse{
			Count: len(tasks),
			Tasks: make([]taskResponse, 0, len(tasks)),
		}
		for _, t := range tasks {
			resp.Tasks = append(resp.Tasks, toTaskResponse(t))
		}
		writeJSON(ctx, w, http.StatusOK, resp)
	}
}
