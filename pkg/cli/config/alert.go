package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/service/slack"
	"github.com/secmon-lab/fieldlink/pkg/service/worker"
	"github.com/urfave/cli/v3"
)

// Alert configures the Slack channel that is told about dead-lettered notifications
type Alert struct {
	botToken  string
	channelID string
	apiURL    string
}

func (x *Alert) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for delivery failure alerts",
			Category:    "Alert",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("FIELDLINK_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-alert-channel",
			Usage:       "Slack channel ID that receives delivery failure alerts",
			Category:    "Alert",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("FIELDLINK_SLACK_ALERT_CHANNEL"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack Web API base URL",
			Category:    "Alert",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("FIELDLINK_SLACK_API_URL"),
		},
	}
}

func (x Alert) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel", x.channelID),
	)
}

// Configure returns the worker option that posts dead-letter alerts.
// Returns nil when alerts are not configured.
func (x *Alert) Configure() (worker.NotificationOption, error) {
	if x.botToken == "" && x.channelID == "" {
		return nil, nil
	}
	if x.botToken == "" || x.channelID == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "slack-bot-token and slack-alert-channel must be set together")
	}

	var opts []slack.Option
	if x.apiURL != "" {
		opts = append(opts, slack.WithAPIURL(x.apiURL))
	}
	svc, err := slack.New(x.botToken, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Slack client")
	}

	return worker.WithSlackAlert(svc, x.channelID), nil
}
