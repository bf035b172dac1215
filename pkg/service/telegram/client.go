package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

const (
	// DefaultTimeout bounds a single Bot API request
	DefaultTimeout = 10 * time.Second
)

// Service sends messages through the Telegram Bot API
type Service interface {
	SendMessage(ctx context.Context, chatID types.ChatID, text string) error
}

type client struct {
	bot       *tgbotapi.BotAPI
	endpoint  string
	timeout   time.Duration
	parseMode string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithTimeout sets the HTTP timeout of Bot API requests
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		c.timeout = d
	}
}

// WithAPIEndpoint overrides the Bot API endpoint format, e.g. "http://127.0.0.1:1234/bot%s/%s"
func WithAPIEndpoint(endpoint string) Option {
	return func(c *client) {
		c.endpoint = endpoint
	}
}

// WithParseMode sets the parse_mode of outgoing messages. Empty sends plain text.
func WithParseMode(mode string) Option {
	return func(c *client) {
		c.parseMode = mode
	}
}

// New creates a Telegram service. It calls getMe once to validate the token.
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Telegram bot token is required")
	}

	c := &client{
		endpoint:  tgbotapi.APIEndpoint,
		timeout:   DefaultTimeout,
		parseMode: tgbotapi.ModeMarkdown,
	}
	for _, opt := range opts {
		opt(c)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, c.endpoint, &http.Client{Timeout: c.timeout})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Telegram bot client")
	}
	c.bot = bot

	return c, nil
}

func (c *client) newMessage(chatID types.ChatID, text string) (tgbotapi.MessageConfig, error) {
	if id, ok := chatID.Int64(); ok {
		return tgbotapi.NewMessage(id, text), nil
	}
	if strings.HasPrefix(chatID.String(), "@") {
		return tgbotapi.NewMessageToChannel(chatID.String(), text), nil
	}
	return tgbotapi.MessageConfig{}, goerr.New("Telegram chat ID must be numeric or @channel", goerr.V("chatID", chatID))
}

// SendMessage sends text to the chat. The request itself is bounded by the client timeout;
// ctx cancellation returns early without waiting for the response.
func (c *client) SendMessage(ctx context.Context, chatID types.ChatID, text string) error {
	if chatID.IsEmpty() {
		return goerr.New("Telegram chat ID is required")
	}
	if text == "" {
		return goerr.New("message text is required", goerr.V("chatID", chatID))
	}

	msg, err := c.newMessage(chatID, text)
	if err != nil {
		return err
	}
	msg.ParseMode = c.parseMode

	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "context done before sending", goerr.V("chatID", chatID))
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			var apiErr *tgbotapi.Error
			if errors.As(err, &apiErr) {
				return goerr.Wrap(err, "Telegram API rejected message",
					goerr.V("chatID", chatID),
					goerr.V("code", apiErr.Code))
			}
			return goerr.Wrap(err, "failed to send Telegram message", goerr.V("chatID", chatID))
		}
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "sending Telegram message canceled", goerr.V("chatID", chatID))
	}
}
