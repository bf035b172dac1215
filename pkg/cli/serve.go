package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/cli/config"
	httpctrl "github.com/secmon-lab/fieldlink/pkg/controller/http"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/service/worker"
	"github.com/secmon-lab/fieldlink/pkg/usecase"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/secmon-lab/fieldlink/pkg/utils/safe"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var telegramCfg config.Telegram
	var sessionCfg config.Session
	var alertCfg config.Alert

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("FIELDLINK_ADDR"),
			Destination: &addr,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, telegramCfg.Flags()...)
	flags = append(flags, sessionCfg.Flags()...)
	flags = append(flags, alertCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook receiver and session API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"addr", addr,
				"repository", repoCfg,
				"telegram", telegramCfg,
				"session", sessionCfg,
				"alert", alertCfg,
			)

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo, "repository")

			secret, ttl, err := sessionCfg.Configure()
			if err != nil {
				return err
			}

			notifier, notificationWorker, err := configureNotifier(&telegramCfg, &alertCfg, repo)
			if err != nil {
				return err
			}

			uc := usecase.New(repo,
				usecase.WithNotifier(notifier),
				usecase.WithTokenSecret(secret, ttl),
			)

			handler := httpctrl.New(
				httpctrl.WithTelegramWebhook(uc.Telegram, telegramCfg.WebhookSecret()),
				httpctrl.WithSession(uc.Session),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			return runServer(ctx, server, notificationWorker)
		},
	}
}

// configureNotifier returns the notifier used by the bridge. Without a bot token messages
// are only logged and no worker runs.
func configureNotifier(telegramCfg *config.Telegram, alertCfg *config.Alert, repo interfaces.Repository) (interfaces.Notifier, *worker.NotificationWorker, error) {
	sender, err := telegramCfg.Configure()
	if err != nil {
		return nil, nil, err
	}
	if sender == nil {
		logging.Default().Warn("telegram-bot-token is not set, notifications are written to the log only")
		return worker.LogNotifier{}, nil, nil
	}

	opts := telegramCfg.WorkerOptions()
	alertOpt, err := alertCfg.Configure()
	if err != nil {
		return nil, nil, err
	}
	if alertOpt != nil {
		opts = append(opts, alertOpt)
	}

	w := worker.NewNotificationWorker(sender, repo.DeadLetter(), opts...)
	return w, w, nil
}

// runServer serves HTTP and runs the notification worker until a signal arrives or the
// server fails, then shuts both down within shutdownTimeout.
func runServer(ctx context.Context, server *http.Server, notificationWorker *worker.NotificationWorker) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	if notificationWorker != nil {
		// The worker gets its own context so queued messages are still delivered while
		// the HTTP server drains.
		if err := notificationWorker.Start(context.WithoutCancel(ctx)); err != nil {
			return goerr.Wrap(err, "failed to start notification worker")
		}
	}

	eg.Go(func() error {
		logging.Default().Info("Starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return goerr.Wrap(err, "failed to start server", goerr.V("addr", server.Addr))
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		logging.Default().Info("Shutting down", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErr error
		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErr = goerr.Wrap(err, "failed to shutdown server gracefully")
		}

		if notificationWorker != nil {
			done := make(chan struct{})
			go func() {
				notificationWorker.Stop()
				close(done)
			}()
			select {
			case <-done:
			case <-shutdownCtx.Done():
				logging.Default().Warn("Notification worker did not stop within the shutdown timeout")
			}
		}

		logging.Default().Info("Server shutdown completed")
		return shutdownErr
	})

	return eg.Wait()
}
