package sqlstore

// Timestamps are stored as Unix nanoseconds so both dialects share one encoding.
func schema(d Dialect) []string {
	blob := "BLOB"
	if d == DialectPostgres {
		blob = "BYTEA"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			login TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password_hash ` + blob + ` NOT NULL,
			company_id TEXT NOT NULL DEFAULT '',
			company_name TEXT NOT NULL DEFAULT '',
			avatar ` + blob + `,
			telegram_chat_id TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_telegram_chat_id ON accounts (telegram_chat_id)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			customer TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			scheduled_date BIGINT,
			location TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_owner_id ON tasks (owner_id)`,
		`CREATE TABLE IF NOT EXISTS dead_letters (
			id TEXT PRIMARY KEY,
			chat_id TEXT NOT NULL,
			text TEXT NOT NULL,
			reason TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dead_letters_created_at ON dead_letters (created_at)`,
	}
}
