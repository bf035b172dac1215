package async

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/utils/errutil"
)

// Dispatch runs handler in a new goroutine that outlives ctx cancellation. Values of ctx
// such as the request logger are kept. A positive timeout bounds the handler. Errors and
// recovered panics are reported through errutil.Handle under the task name.
func Dispatch(ctx context.Context, task string, timeout time.Duration, handler func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		ctx := bgCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(bgCtx, timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(ctx, goerr.New("panic in async task",
					goerr.V("task", task),
					goerr.V("panic", r)), "async task panicked")
			}
		}()

		if err := handler(ctx); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "async task failed", goerr.V("task", task)), "async task failed")
		}
	}()
}
