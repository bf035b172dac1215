package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/service/telegram"
	"github.com/secmon-lab/fieldlink/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

type Telegram struct {
	botToken      string
	webhookSecret string
	apiEndpoint   string
	timeout       time.Duration

	queueSize   int
	maxAttempts int
	backoff     time.Duration
}

func (x *Telegram) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "telegram-bot-token",
			Usage:       "Telegram Bot API token (notifications are only logged when empty)",
			Category:    "Telegram",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("FIELDLINK_TELEGRAM_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "telegram-webhook-secret",
			Usage:       "Expected X-Telegram-Bot-Api-Secret-Token header value",
			Category:    "Telegram",
			Destination: &x.webhookSecret,
			Sources:     cli.EnvVars("FIELDLINK_TELEGRAM_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "telegram-api-endpoint",
			Usage:       "Bot API endpoint format (e.g. https://api.telegram.org/bot%s/%s)",
			Category:    "Telegram",
			Destination: &x.apiEndpoint,
			Sources:     cli.EnvVars("FIELDLINK_TELEGRAM_API_ENDPOINT"),
		},
		&cli.DurationFlag{
			Name:        "telegram-timeout",
			Usage:       "Timeout of a single Bot API request",
			Category:    "Telegram",
			Value:       telegram.DefaultTimeout,
			Destination: &x.timeout,
			Sources:     cli.EnvVars("FIELDLINK_TELEGRAM_TIMEOUT"),
		},
		&cli.IntFlag{
			Name:        "notification-queue-size",
			Usage:       "Capacity of the outgoing notification queue",
			Category:    "Telegram",
			Value:       worker.DefaultQueueSize,
			Destination: &x.queueSize,
			Sources:     cli.EnvVars("FIELDLINK_NOTIFICATION_QUEUE_SIZE"),
		},
		&cli.IntFlag{
			Name:        "notification-max-attempts",
			Usage:       "Delivery attempts before a notification becomes a dead letter",
			Category:    "Telegram",
			Value:       worker.DefaultMaxAttempts,
			Destination: &x.maxAttempts,
			Sources:     cli.EnvVars("FIELDLINK_NOTIFICATION_MAX_ATTEMPTS"),
		},
		&cli.DurationFlag{
			Name:        "notification-backoff",
			Usage:       "Base delay between delivery attempts",
			Category:    "Telegram",
			Value:       worker.DefaultBackoff,
			Destination: &x.backoff,
			Sources:     cli.EnvVars("FIELDLINK_NOTIFICATION_BACKOFF"),
		},
	}
}

func (x Telegram) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("webhook-secret.len", len(x.webhookSecret)),
		slog.String("api-endpoint", x.apiEndpoint),
		slog.Duration("timeout", x.timeout),
		slog.Int("queue-size", x.queueSize),
		slog.Int("max-attempts", x.maxAttempts),
	)
}

// IsConfigured reports whether a bot token is set
func (x *Telegram) IsConfigured() bool {
	return x.botToken != ""
}

// WebhookSecret returns the secret token expected on webhook requests
func (x *Telegram) WebhookSecret() string {
	return x.webhookSecret
}

// WorkerOptions returns the notification worker tuning
func (x *Telegram) WorkerOptions() []worker.NotificationOption {
	return []worker.NotificationOption{
		worker.WithQueueSize(x.queueSize),
		worker.WithMaxAttempts(x.maxAttempts),
		worker.WithBackoff(x.backoff),
		worker.WithSendTimeout(x.timeout),
	}
}

// Configure creates the Bot API client. Returns (nil, nil) when no bot token is set.
func (x *Telegram) Configure() (telegram.Service, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	opts := []telegram.Option{telegram.WithTimeout(x.timeout)}
	if x.apiEndpoint != "" {
		opts = append(opts, telegram.WithAPIEndpoint(x.apiEndpoint))
	}

	svc, err := telegram.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Telegram client")
	}
	return svc, nil
}
