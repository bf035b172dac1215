package worker

import (
	"context"

	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

// LogNotifier writes notifications to the log instead of sending them.
// Used when no Telegram bot token is configured.
type LogNotifier struct{}

var _ interfaces.Notifier = LogNotifier{}

func (LogNotifier) Notify(ctx context.Context, chatID types.ChatID, text string) {
	logging.From(ctx).Info("Notification (not sent, no bot token)",
		"chat_id", chatID,
		"text", text)
}
