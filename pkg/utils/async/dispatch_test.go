package async_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/utils/async"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDispatch(t *testing.T) {
	t.Run("survives parent cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		async.Dispatch(ctx, "test", 0, func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			done <- ctx.Err()
			return nil
		})
		cancel()

		select {
		case err := <-done:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	})

	t.Run("applies timeout", func(t *testing.T) {
		done := make(chan error, 1)
		async.Dispatch(context.Background(), "test", 10*time.Millisecond, func(ctx context.Context) error {
			<-ctx.Done()
			done <- ctx.Err()
			return nil
		})

		select {
		case err := <-done:
			gt.Value(t, err).Equal(context.DeadlineExceeded)
		case <-time.After(time.Second):
			t.Fatal("timeout was not applied")
		}
	})

	t.Run("logs errors and panics with the context logger", func(t *testing.T) {
		var buf syncBuffer
		ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

		async.Dispatch(ctx, "failing", 0, func(ctx context.Context) error {
			return goerr.New("boom")
		})
		async.Dispatch(ctx, "panicking", 0, func(ctx context.Context) error {
			panic("oops")
		})

		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			out := buf.String()
			if bytes.Contains([]byte(out), []byte("async task failed")) &&
				bytes.Contains([]byte(out), []byte("async task panicked")) {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatalf("expected both log entries, got %s", buf.String())
	})
}
