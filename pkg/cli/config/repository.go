package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/repository/firestore"
	"github.com/secmon-lab/fieldlink/pkg/repository/memory"
	"github.com/secmon-lab/fieldlink/pkg/repository/sqlstore"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	dsn              string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore, sqlite or postgres)",
			Category:    "Repository",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("FIELDLINK_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("FIELDLINK_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIELDLINK_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to every Firestore collection name",
			Category:    "Repository",
			Sources:     cli.EnvVars("FIELDLINK_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "sql-dsn",
			Usage:       "SQLite file path or PostgreSQL connection string",
			Category:    "Repository",
			Value:       "./data/fieldlink.db",
			Sources:     cli.EnvVars("FIELDLINK_SQL_DSN"),
			Destination: &r.dsn,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.String("collection_prefix", r.collectionPrefix),
		slog.Int("dsn.len", len(r.dsn)),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// CollectionPrefix returns the Firestore collection prefix
func (r *Repository) CollectionPrefix() string {
	return r.collectionPrefix
}

func (r *Repository) dialect() sqlstore.Dialect {
	if r.backend == BackendPostgres {
		return sqlstore.DialectPostgres
	}
	return sqlstore.DialectSQLite
}

// OpenSQL connects to the SQL backend without applying the schema
func (r *Repository) OpenSQL(ctx context.Context) (*sqlstore.Store, error) {
	if r.backend != BackendSQLite && r.backend != BackendPostgres {
		return nil, goerr.Wrap(ErrInvalidConfig, "backend is not an SQL backend", goerr.V("backend", r.backend))
	}
	if r.dsn == "" {
		return nil, goerr.Wrap(ErrMissingRequired, "sql-dsn is required for SQL backends", goerr.V("backend", r.backend))
	}

	store, err := sqlstore.Open(ctx, r.dialect(), r.dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open SQL repository", goerr.V("backend", r.backend))
	}
	return store, nil
}

// Configure initializes and returns a repository based on the configured backend.
// SQL backends get their schema applied so a fresh database is usable immediately.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.Wrap(ErrMissingRequired, "firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
			"collection_prefix", r.collectionPrefix,
		)
		return repo, nil

	case BackendSQLite, BackendPostgres:
		store, err := r.OpenSQL(ctx)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, goerr.Wrap(err, "failed to apply SQL schema", goerr.V("backend", r.backend))
		}
		logging.Default().Info("Using SQL repository", "backend", r.backend)
		return store, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid repository backend", goerr.V("backend", r.backend))
	}
}
