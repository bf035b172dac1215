package slack_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fieldlink/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token is provided", func(t *testing.T) {
		svc, err := slack.New("test-token")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func TestPostMessage(t *testing.T) {
	var gotChannel, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/api/chat.postMessage")
		gt.NoError(t, r.ParseForm())
		gotChannel = r.PostForm.Get("channel")
		gotText = r.PostForm.Get("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/api/"))
	gt.NoError(t, err).Required()

	t.Run("posts text to channel", func(t *testing.T) {
		ts, err := svc.PostMessage(context.Background(), "C123", "delivery failed")
		gt.NoError(t, err).Required()
		gt.Value(t, ts).Equal("1700000000.000100")
		gt.Value(t, gotChannel).Equal("C123")
		gt.Value(t, gotText).Equal("delivery failed")
	})

	t.Run("rejects empty channel", func(t *testing.T) {
		_, err := svc.PostMessage(context.Background(), "", "text")
		gt.Value(t, err).NotNil()
	})
}

func TestPostMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	svc, err := slack.New("test-token", slack.WithAPIURL(srv.URL+"/api/"))
	gt.NoError(t, err).Required()

	_, err = svc.PostMessage(context.Background(), "C404", "text")
	gt.Value(t, err).NotNil()
	gt.String(t, err.Error()).Contains("channel_not_found")
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	if token == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN is not set")
	}
	channelID := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if channelID == "" {
		t.Skip("TEST_SLACK_CHANNEL_ID is not set")
	}

	svc, err := slack.New(token)
	gt.NoError(t, err).Required()

	ts, err := svc.PostMessage(context.Background(), channelID, "fieldlink integration test")
	gt.NoError(t, err).Required()
	gt.String(t, ts).NotEqual("")
}
