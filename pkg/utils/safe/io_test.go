package safe_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
)

type closer struct {
	io.Reader
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	safe.Close(ctx, nil, "nothing")
	gt.Value(t, buf.Len()).Equal(0)

	c := &closer{err: errors.New("disk gone")}
	safe.Close(ctx, c, "repository")
	gt.Bool(t, c.closed).True()
	gt.String(t, buf.String()).Contains(`"target":"repository"`)
	gt.String(t, buf.String()).Contains("disk gone")
}

func TestDrain(t *testing.T) {
	r := strings.NewReader("leftover")
	c := &closer{Reader: r}
	safe.Drain(context.Background(), c)
	gt.Bool(t, c.closed).True()
	gt.Value(t, r.Len()).Equal(0)
}
