package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const accountsCollection = "accounts"

type accountRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.AccountRepository = &accountRepository{}

func newAccountRepository(client *firestore.Client) *accountRepository {
	return &accountRepository{
		client: client,
	}
}

// accountDoc is the Firestore persistence model
type accountDoc struct {
	ID             string    `firestore:"id"`
	Login          string    `firestore:"login"`
	Name           string    `firestore:"name"`
	PasswordHash   []byte    `firestore:"password_hash"`
	CompanyID      string    `firestore:"company_id"`
	CompanyName    string    `firestore:"company_name"`
	Avatar         []byte    `firestore:"avatar"`
	TelegramChatID string    `firestore:"telegram_chat_id"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func (r *accountRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, accountsCollection))
}

func (r *accountRepository) toDoc(a *model.Account) *accountDoc {
	return &accountDoc{
		ID:             a.ID.String(),
		Login:          a.Login,
		Name:           a.Name,
		PasswordHash:   a.PasswordHash,
		CompanyID:      a.Company.ID.String(),
		CompanyName:    a.Company.Name,
		Avatar:         a.Avatar,
		TelegramChatID: a.TelegramChatID.String(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (r *accountRepository) fromDoc(doc *accountDoc) *model.Account {
	return &model.Account{
		ID:           types.AccountID(doc.ID),
		Login:        doc.Login,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		Company: model.Company{
			ID:   types.CompanyID(doc.CompanyID),
			Name: doc.CompanyName,
		},
		Avatar:         doc.Avatar,
		TelegramChatID: types.ChatID(doc.TelegramChatID),
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	if err := account.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid account")
	}

	doc := r.toDoc(account)
	ref := r.collection().Doc(doc.ID)
	query := r.collection().Where("login", "==", doc.Login).Limit(1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(query).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query account by login")
		}
		if len(existing) > 0 {
			return goerr.Wrap(ErrAlreadyExists, "login already taken", goerr.V("login", doc.Login))
		}
		return tx.Create(ref, doc)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrAlreadyExists, "account ID already taken", goerr.V("id", doc.ID))
		}
		return nil, goerr.Wrap(err, "failed to create account", goerr.V("id", doc.ID))
	}

	return r.fromDoc(doc), nil
}

func (r *accountRepository) Get(ctx context.Context, id types.AccountID) (*model.Account, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get account", goerr.V("id", id))
	}

	var doc accountDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal account", goerr.V("id", id))
	}
	return r.fromDoc(&doc), nil
}

func (r *accountRepository) findOne(ctx context.Context, field, value string) (*model.Account, error) {
	iter := r.collection().Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query account", goerr.V("field", field))
	}

	var doc accountDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal account", goerr.V("docID", snap.Ref.ID))
	}
	return r.fromDoc(&doc), nil
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

func (r *accountRepository) update(ctx context.Context, id types.AccountID, updates []firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updated_at", Value: time.Now().UTC()})
	if _, err := r.collection().Doc(id.String()).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "account not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update account", goerr.V("id", id))
	}
	return nil
}

func (r *accountRepository) SetChatID(ctx context.Context, id types.AccountID, chatID types.ChatID) error {
	return r.update(ctx, id, []firestore.Update{
		{Path: "telegram_chat_id", Value: chatID.String()},
	})
}

func (r *accountRepository) ClearChatID(ctx context.Context, chatID types.ChatID, keep types.AccountID) (int, error) {
	if chatID.IsEmpty() {
		return 0, nil
	}

	cleared := 0
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		cleared = 0
		snaps, err := tx.Documents(r.collection().Where("telegram_chat_id", "==", chatID.String())).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query chat bindings")
		}

		now := time.Now().UTC()
		for _, snap := range snaps {
			if snap.Ref.ID == keep.String() {
				continue
			}
			if err := tx.Update(snap.Ref, []firestore.Update{
				{Path: "telegram_chat_id", Value: ""},
				{Path: "updated_at", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to clear chat binding", goerr.V("docID", snap.Ref.ID))
			}
			cleared++
		}
		return nil
	})
	if err != nil {
		return 0, goerr.Wrap(err, "failed to clear chat bindings", goerr.V("chat_id", chatID))
	}
	return cleared, nil
}

func (r *accountRepository) SetPasswordHash(ctx context.Context, id types.AccountID, hash []byte) error {
	if len(hash) == 0 {
		return goerr.New("password hash is required", goerr.V("id", id))
	}
	return r.update(ctx, id, []firestore.Update{
		{Path: "password_hash", Value: hash},
	})
}
