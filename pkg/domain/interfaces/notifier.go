package interfaces

import (
	"context"

	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// Notifier delivers a text message to a chat. It is best effort: failures are logged and
// recorded by the implementation and never reported to the caller.
type Notifier interface {
	Notify(ctx context.Context, chatID types.ChatID, text string)
}
