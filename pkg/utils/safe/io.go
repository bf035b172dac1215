package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. A nil closer is ignored.
func Close(ctx context.Context, c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", "target", what, "error", err.Error())
	}
}

// Drain discards the rest of r so the underlying connection can be reused, then closes it.
func Drain(ctx context.Context, r io.ReadCloser) {
	if r == nil {
		return
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		logging.From(ctx).Debug("Failed to drain body", "error", err.Error())
	}
	Close(ctx, r, "body")
}
