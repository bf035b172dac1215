package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/usecase"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Session holds the signing configuration of session tokens
type Session struct {
	secret string
	ttl    time.Duration
}

func (x *Session) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret for session tokens (random per process when empty)",
			Category:    "Session",
			Destination: &x.secret,
			Sources:     cli.EnvVars("FIELDLINK_JWT_SECRET"),
		},
		&cli.DurationFlag{
			Name:        "jwt-ttl",
			Usage:       "Lifetime of issued session tokens",
			Category:    "Session",
			Value:       usecase.DefaultTokenTTL,
			Destination: &x.ttl,
			Sources:     cli.EnvVars("FIELDLINK_JWT_TTL"),
		},
	}
}

func (x Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("secret.len", len(x.secret)),
		slog.Duration("ttl", x.ttl),
	)
}

// Configure returns the secret and lifetime used to sign tokens. When no secret is set a
// random one is generated and tokens become invalid on restart.
func (x *Session) Configure() ([]byte, time.Duration, error) {
	if x.ttl <= 0 {
		return nil, 0, goerr.Wrap(ErrInvalidConfig, "jwt-ttl must be positive", goerr.V("ttl", x.ttl))
	}

	if x.secret != "" {
		return []byte(x.secret), x.ttl, nil
	}

	secret, err := usecase.GenerateTokenSecret()
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to generate token secret")
	}
	logging.Default().Warn("jwt-secret is not set, using a random secret; issued tokens will not survive a restart")
	return secret, x.ttl, nil
}
