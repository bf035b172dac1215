package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/cli/config"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var repoCfg config.Repository
	var file string
	var checkRepository bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Fixture file (TOML) to validate",
			Required:    true,
			Sources:     cli.EnvVars("FIELDLINK_SEED_FILE"),
			Destination: &file,
		},
		&cli.BoolFlag{
			Name:        "check-repository",
			Usage:       "Also check that task owners missing from the fixture exist in the repository",
			Destination: &checkRepository,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate a fixture file and optionally check it against the repository",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			fx, err := config.LoadFixture(file)
			if err != nil {
				return goerr.Wrap(err, "fixture validation failed")
			}
			logger.Info("Fixture validation passed",
				"accounts", len(fx.Accounts),
				"tasks", len(fx.Tasks))

			unknown := fx.UnknownOwners()
			if len(unknown) == 0 {
				return nil
			}
			if !checkRepository {
				logger.Info("Tasks reference owners outside the fixture, skipping repository check",
					"owners", unknown)
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			var missing []string
			for _, login := range unknown {
				account, err := repo.Account().GetByLogin(ctx, login)
				if err != nil {
					return goerr.Wrap(err, "failed to look up account", goerr.V("login", login))
				}
				if account == nil {
					logger.Warn("Task owner does not exist", "login", login)
					missing = append(missing, login)
				}
			}
			if len(missing) > 0 {
				return goerr.Wrap(errAccountNotFound, "fixture references unknown task owners",
					goerr.V("owners", missing))
			}

			logger.Info("Repository check passed")
			return nil
		},
	}
}
