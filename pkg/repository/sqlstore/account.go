package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

const accountColumns = `id, login, name, password_hash, company_id, company_name, avatar, telegram_chat_id, created_at, updated_at`

type accountRepository struct {
	store *Store
}

var _ interfaces.AccountRepository = &accountRepository{}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*model.Account, error) {
	var (
		a                    model.Account
		id, companyID, chat  string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&id, &a.Login, &a.Name, &a.PasswordHash, &companyID, &a.Company.Name,
		&a.Avatar, &chat, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.ID = types.AccountID(id)
	a.Company.ID = types.CompanyID(companyID)
	a.TelegramChatID = types.ChatID(chat)
	a.CreatedAt = fromNanos(createdAt)
	a.UpdatedAt = fromNanos(updatedAt)
	return &a, nil
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := account.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid account")
	}

	existing, err := r.GetByLogin(ctx, account.Login)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, goerr.Wrap(ErrAlreadyExists, "login already taken", goerr.V("login", account.Login))
	}

	_, err = r.store.exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID.String(), account.Login, account.Name, account.PasswordHash,
		account.Company.ID.String(), account.Company.Name, account.Avatar,
		account.TelegramChatID.String(), toNanos(account.CreatedAt), toNanos(account.UpdatedAt))
	if err != nil {
		// lost a race on the unique login constraint
		if again, _ := r.GetByLogin(ctx, account.Login); again != nil {
			return nil, goerr.Wrap(ErrAlreadyExists, "login already taken", goerr.V("login", account.Login))
		}
		return nil, goerr.Wrap(err, "failed to insert account", goerr.V("id", account.ID))
	}

	return r.Get(ctx, account.ID)
}

func (r *accountRepository) Get(ctx context.Context, id types.AccountID) (*model.Account, error) {
	row := r.store.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id.String())
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get account", goerr.V("id", id))
	}
	return a, nil
}

func (r *accountRepository) findOne(ctx context.Context, column, value string) (*model.Account, error) {
	row := r.store.queryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+column+` = ? LIMIT 1`, value)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query account", goerr.V("column", column))
	}
	return a, nil
}

func (r *accountRepository) GetByLogin(ctx context.Context, login string) (*model.Account, error) {
	return r.findOne(ctx, "login", login)
}

func (r *accountRepository) GetByChatID(ctx context.Context, chatID types.ChatID) (*model.Account, error) {
	if chatID.IsEmpty() {
		return nil, nil
	}
	return r.findOne(ctx, "telegram_chat_id", chatID.String())
}

func (r *accountRepository) update(ctx context.Context, id types.AccountID, column string, value any) error {
	res, err := r.store.exec(ctx,
		`UPDATE accounts SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, toNanos(time.Now()), id.String())
	if err != nil {
		return goerr.Wrap(err, "failed to update account", goerr.V("id", id), goerr.V("column", column))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows", goerr.V("id", id))
	}
	if n == 0 {
		return goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
	}
	return nil
}

func (r *accountRepository) SetChatID(ctx context.Context, id types.AccountID, chatID types.ChatID) error {
	return r.update(ctx, id, "telegram_chat_id", chatID.String())
}

func (r *accountRepository) ClearChatID(ctx context.Context, chatID types.ChatID, keep types.AccountID) (int, error) {
	if chatID.IsEmpty() {
		return 0, nil
	}

	res, err := r.store.exec(ctx,
		`UPDATE accounts SET telegram_chat_id = '', updated_at = ? WHERE telegram_chat_id = ? AND id <> ?`,
		toNanos(time.Now()), chatID.String(), keep.String())
	if err != nil {
		return 0, goerr.Wrap(err, "failed to clear chat bindings", goerr.V("chat_id", chatID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get affected rows", goerr.V("chat_id", chatID))
	}
	return int(n), nil
}

func (r *accountRepository) SetPasswordHash(ctx context.Context, id types.AccountID, hash []byte) error {
	if len(hash) == 0 {
		return goerr.New("password hash is required", goerr.V("id", id))
	}
	return r.update(ctx, id, "password_hash", hash)
}
