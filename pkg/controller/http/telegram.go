package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model/telegram"
	"github.com/secmon-lab/fieldlink/pkg/utils/errutil"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

const maxWebhookBodySize = 1 << 20

type webhookResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// telegramWebhookHandler decodes an Update and dispatches its message.
// Structural problems are answered with 200 and ok=false so Telegram does not redeliver.
func telegramWebhookHandler(uc TelegramUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.From(ctx)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
		if err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to read webhook body"), "invalid telegram webhook")
			writeJSON(ctx, w, http.StatusOK, webhookResponse{OK: false, Error: "Invalid payload"})
			return
		}

		var update telegram.Update
		if err := json.Unmarshal(body, &update); err != nil {
			logger.Warn("undecodable telegram update", "error", err.Error())
			writeJSON(ctx, w, http.StatusOK, webhookResponse{OK: false, Error: "Invalid payload"})
			return
		}

		msg := telegram.NewMessage(&update)
		if msg == nil {
			logger.Info("telegram update without message", "update_id", update.UpdateID)
			writeJSON(ctx, w, http.StatusOK, webhookResponse{OK: false, Error: "No message"})
			return
		}

		if !msg.IsComplete() {
			logger.Info("telegram message without chat id or text", "update_id", update.UpdateID)
			writeJSON(ctx, w, http.StatusOK, webhookResponse{OK: false, Error: "Missing chat_id or text"})
			return
		}

		// never log message text, it may carry credentials
		logger.Info("telegram message received",
			"update_id", update.UpdateID,
			"chat_id", msg.ChatID(),
			"username", msg.Username(),
			"received_at", msg.ReceivedAt())

		uc.HandleMessage(ctx, msg)
		writeJSON(ctx, w, http.StatusOK, webhookResponse{OK: true})
	}
}
