package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/cli/config"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/service/identity"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdSeed() *cli.Command {
	var repoCfg config.Repository
	var file string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Fixture file (TOML) with [[account]] and [[task]] tables",
			Required:    true,
			Sources:     cli.EnvVars("FIELDLINK_SEED_FILE"),
			Destination: &file,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Load accounts and tasks from a fixture file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			fx, err := config.LoadFixture(file)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			result, err := seed(ctx, repo, fx)
			if err != nil {
				return err
			}

			logging.Default().Info("Seed completed",
				"accounts_created", result.accountsCreated,
				"accounts_existing", result.accountsExisting,
				"tasks", result.tasks)
			return nil
		},
	}
}

type seedResult struct {
	accountsCreated  int
	accountsExisting int
	tasks            int
}

// seed creates missing accounts and upserts tasks. Existing accounts are left unchanged.
func seed(ctx context.Context, repo interfaces.Repository, fx *config.Fixture) (*seedResult, error) {
	logger := logging.From(ctx)
	var result seedResult
	owners := make(map[string]types.AccountID)

	for _, a := range fx.Accounts {
		existing, err := repo.Account().GetByLogin(ctx, a.Login)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up account", goerr.V("login", a.Login))
		}
		if existing != nil {
			logger.Info("Account already exists, skipping", "login", a.Login, "id", existing.ID)
			owners[existing.Login] = existing.ID
			result.accountsExisting++
			continue
		}

		hash, err := identity.HashPassword(a.Password)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to hash password", goerr.V("login", a.Login))
		}
		avatar, err := fx.Avatar(a)
		if err != nil {
			return nil, err
		}

		account := model.NewAccount(a.Login, a.Name, hash)
		if a.ID != "" {
			account.ID = types.AccountID(a.ID)
		}
		account.Company = model.Company{ID: types.CompanyID(a.CompanyID), Name: a.CompanyName}
		account.Avatar = avatar

		created, err := repo.Account().Create(ctx, account)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create account", goerr.V("login", a.Login))
		}
		owners[created.Login] = created.ID
		result.accountsCreated++
	}

	for _, t := range fx.Tasks {
		ownerID, ok := owners[t.Owner]
		if !ok {
			owner, err := repo.Account().GetByLogin(ctx, t.Owner)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to look up task owner", goerr.V("owner", t.Owner))
			}
			if owner == nil {
				return nil, goerr.Wrap(errAccountNotFound, "task owner does not exist",
					goerr.V("owner", t.Owner),
					goerr.V("task", t.Name))
			}
			ownerID = owner.ID
			owners[owner.Login] = owner.ID
		}

		if err := repo.Task().Put(ctx, t.ToModel(ownerID)); err != nil {
			return nil, goerr.Wrap(err, "failed to store task", goerr.V("task", t.Name))
		}
		result.tasks++
	}

	return &result, nil
}
