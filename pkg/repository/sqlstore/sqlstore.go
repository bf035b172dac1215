package sqlstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour and the database/sql driver
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driver() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

// Validate checks that the dialect is supported
func (d Dialect) Validate() error {
	switch d {
	case DialectSQLite, DialectPostgres:
		return nil
	}
	return goerr.New("unsupported SQL dialect", goerr.V("dialect", d))
}

// rebind rewrites '?' placeholders into the dialect's positional form
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Store implements interfaces.Repository on top of database/sql
type Store struct {
	db         *sql.DB
	dialect    Dialect
	account    *accountRepository
	task       *taskRepository
	deadLetter *deadLetterRepository
}

var _ interfaces.Repository = &Store{}

// Open connects to the database and verifies the connection.
// For SQLite the DSN is a file path; WAL journal mode is enabled.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if err := dialect.Validate(); err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, goerr.New("SQL DSN is empty", goerr.V("dialect", dialect))
	}

	source := dsn
	if dialect == DialectSQLite && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", dsn))
		}
		source = "file:" + dsn + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(dialect.driver(), source)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialect))
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database", goerr.V("dialect", dialect))
	}

	return New(db, dialect), nil
}

// New wraps an existing connection
func New(db *sql.DB, dialect Dialect) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
	}
	s.account = &accountRepository{store: s}
	s.task = &taskRepository{store: s}
	s.deadLetter = &deadLetterRepository{store: s}
	return s
}

// Migrate creates the schema if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema(s.dialect) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema", goerr.V("statement", stmt))
		}
	}
	return nil
}

func (s *Store) Account() interfaces.AccountRepository {
	return s.account
}

func (s *Store) Task() interfaces.TaskRepository {
	return s.task
}

func (s *Store) DeadLetter() interfaces.DeadLetterRepository {
	return s.deadLetter
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}
