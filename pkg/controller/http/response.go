package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/secmon-lab/fieldlink/pkg/utils/errutil"
)

// errorResponse is the error body of session API endpoints
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}
