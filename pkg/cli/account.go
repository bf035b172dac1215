package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/cli/config"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/service/identity"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

var errAccountNotFound = goerr.New("account not found")

func cmdAccount() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			cmdAccountAdd(),
			cmdAccountPasswd(),
			cmdAccountUnlink(),
		},
	}
}

func cmdAccountAdd() *cli.Command {
	var repoCfg config.Repository
	var login, name, password, companyID, companyName, avatarFile string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "login",
			Usage:       "Login name (unique)",
			Required:    true,
			Destination: &login,
		},
		&cli.StringFlag{
			Name:        "name",
			Usage:       "Display name",
			Destination: &name,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Password",
			Required:    true,
			Sources:     cli.EnvVars("FIELDLINK_ACCOUNT_PASSWORD"),
			Destination: &password,
		},
		&cli.StringFlag{
			Name:        "company-id",
			Usage:       "Company identifier",
			Destination: &companyID,
		},
		&cli.StringFlag{
			Name:        "company-name",
			Usage:       "Company name",
			Destination: &companyName,
		},
		&cli.StringFlag{
			Name:        "avatar-file",
			Usage:       "Path of an avatar image",
			Destination: &avatarFile,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "add",
		Usage: "Create an account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			hash, err := identity.HashPassword(password)
			if err != nil {
				return err
			}

			account := model.NewAccount(login, name, hash)
			account.Company = model.Company{ID: types.CompanyID(companyID), Name: companyName}
			if avatarFile != "" {
				raw, err := os.ReadFile(filepath.Clean(avatarFile))
				if err != nil {
					return goerr.Wrap(err, "failed to read avatar file", goerr.V("path", avatarFile))
				}
				account.Avatar = raw
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			created, err := repo.Account().Create(ctx, account)
			if err != nil {
				return goerr.Wrap(err, "failed to create account", goerr.V("login", login))
			}

			logging.Default().Info("Account created",
				"id", created.ID,
				"login", created.Login,
				"company", created.Company.Name)
			return nil
		},
	}
}

func cmdAccountPasswd() *cli.Command {
	var repoCfg config.Repository
	var login, password string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "login",
			Usage:       "Login name",
			Required:    true,
			Destination: &login,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "New password",
			Required:    true,
			Sources:     cli.EnvVars("FIELDLINK_ACCOUNT_PASSWORD"),
			Destination: &password,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "passwd",
		Usage: "Replace the password of an account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			hash, err := identity.HashPassword(password)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			account, err := repo.Account().GetByLogin(ctx, login)
			if err != nil {
				return goerr.Wrap(err, "failed to look up account", goerr.V("login", login))
			}
			if account == nil {
				return goerr.Wrap(errAccountNotFound, "no account with login", goerr.V("login", login))
			}

			if err := repo.Account().SetPasswordHash(ctx, account.ID, hash); err != nil {
				return goerr.Wrap(err, "failed to update password", goerr.V("login", login))
			}

			logging.Default().Info("Password updated", "id", account.ID, "login", account.Login)
			return nil
		},
	}
}

func cmdAccountUnlink() *cli.Command {
	var repoCfg config.Repository
	var login string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "login",
			Usage:       "Login name",
			Required:    true,
			Destination: &login,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "unlink",
		Usage: "Remove the Telegram chat binding of an account",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			account, err := repo.Account().GetByLogin(ctx, login)
			if err != nil {
				return goerr.Wrap(err, "failed to look up account", goerr.V("login", login))
			}
			if account == nil {
				return goerr.Wrap(errAccountNotFound, "no account with login", goerr.V("login", login))
			}
			if !account.IsLinked() {
				logging.Default().Info("Account is not linked", "login", login)
				return nil
			}

			if err := repo.Account().SetChatID(ctx, account.ID, ""); err != nil {
				return goerr.Wrap(err, "failed to unlink account", goerr.V("login", login))
			}

			logging.Default().Info("Account unlinked",
				"id", account.ID,
				"login", account.Login,
				"chat_id", account.TelegramChatID)
			return nil
		},
	}
}
