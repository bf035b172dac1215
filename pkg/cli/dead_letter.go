package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/cli/config"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdDeadLetter() *cli.Command {
	var repoCfg config.Repository
	var limit int

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of entries (0 for all)",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "dead-letters",
		Usage: "Show notifications that could not be delivered, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			letters, err := repo.DeadLetter().List(ctx, limit)
			if err != nil {
				return goerr.Wrap(err, "failed to list dead letters")
			}

			logger := logging.Default()
			for _, l := range letters {
				logger.Info("Dead letter",
					"id", l.ID,
					"chat_id", l.ChatID,
					"reason", l.Reason,
					"attempts", l.Attempts,
					"created_at", l.CreatedAt)
			}
			logger.Info("Dead letters listed", "count", len(letters))
			return nil
		},
	}
}
