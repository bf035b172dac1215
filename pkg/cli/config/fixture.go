package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
)

// taskNamespace derives stable task IDs so a fixture can be loaded more than once
var taskNamespace = uuid.MustParse("6f1c7a52-4f7e-4c36-9a43-0d2f4b6f8e11")

// Fixture is the TOML document loaded by the seed command
type Fixture struct {
	Accounts []FixtureAccount `toml:"account"`
	Tasks    []FixtureTask    `toml:"task"`

	dir string
}

type FixtureAccount struct {
	ID          string `toml:"id"`
	Login       string `toml:"login"`
	Name        string `toml:"name"`
	Password    string `toml:"password" masq:"secret"`
	CompanyID   string `toml:"company_id"`
	CompanyName string `toml:"company_name"`
	AvatarFile  string `toml:"avatar_file"`
}

type FixtureTask struct {
	ID            string     `toml:"id"`
	Name          string     `toml:"name"`
	Customer      string     `toml:"customer"`
	Status        string     `toml:"status"`
	ScheduledDate *time.Time `toml:"scheduled_date"`
	Location      string     `toml:"location"`
	Description   string     `toml:"description"`
	Owner         string     `toml:"owner"` // login of the owning account
}

// LoadFixture reads and validates a fixture file
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read fixture file", goerr.V("path", path))
	}

	var fx Fixture
	if err := toml.Unmarshal(raw, &fx); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse fixture file",
			goerr.V("path", path),
			goerr.V("error", err.Error()))
	}
	fx.dir = filepath.Dir(path)
	fx.normalize()

	if err := fx.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid fixture file", goerr.V("path", path))
	}
	return &fx, nil
}

func (x *Fixture) normalize() {
	for i := range x.Accounts {
		x.Accounts[i].Login = strings.TrimSpace(x.Accounts[i].Login)
	}
	for i := range x.Tasks {
		x.Tasks[i].Owner = strings.TrimSpace(x.Tasks[i].Owner)
	}
}

// Validate checks the fixture for missing fields and duplicate logins. Task owners may
// refer to accounts that already exist in the repository; see UnknownOwners.
func (x *Fixture) Validate() error {
	logins := make(map[string]struct{}, len(x.Accounts))
	for i, a := range x.Accounts {
		login := strings.TrimSpace(a.Login)
		if login == "" {
			return goerr.Wrap(ErrInvalidConfig, "account login is required", goerr.V("index", i))
		}
		if a.Password == "" {
			return goerr.Wrap(ErrInvalidConfig, "account password is required", goerr.V("login", login))
		}
		if _, dup := logins[login]; dup {
			return goerr.Wrap(ErrInvalidConfig, "duplicate account login", goerr.V("login", login))
		}
		logins[login] = struct{}{}
	}

	for i, t := range x.Tasks {
		if strings.TrimSpace(t.Name) == "" {
			return goerr.Wrap(ErrInvalidConfig, "task name is required", goerr.V("index", i))
		}
		if strings.TrimSpace(t.Owner) == "" {
			return goerr.Wrap(ErrInvalidConfig, "task owner is required", goerr.V("task", t.Name))
		}
	}
	return nil
}

// UnknownOwners returns task owner logins that are not defined as accounts in the fixture
func (x *Fixture) UnknownOwners() []string {
	logins := make(map[string]struct{}, len(x.Accounts))
	for _, a := range x.Accounts {
		logins[strings.TrimSpace(a.Login)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var unknown []string
	for _, t := range x.Tasks {
		owner := strings.TrimSpace(t.Owner)
		if _, ok := logins[owner]; ok {
			continue
		}
		if _, ok := seen[owner]; ok {
			continue
		}
		seen[owner] = struct{}{}
		unknown = append(unknown, owner)
	}
	return unknown
}

// Avatar reads the avatar file of an account, relative to the fixture file
func (x *Fixture) Avatar(a FixtureAccount) ([]byte, error) {
	if a.AvatarFile == "" {
		return nil, nil
	}
	path := a.AvatarFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(x.dir, path)
	}
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read avatar file", goerr.V("path", path), goerr.V("login", a.Login))
	}
	return raw, nil
}

// ToModel converts the fixture task for the given owner. Tasks without an explicit ID get
// one derived from owner and name.
func (t FixtureTask) ToModel(ownerID types.AccountID) *model.Task {
	id := types.TaskID(t.ID)
	if id == "" {
		id = types.TaskID(uuid.NewSHA1(taskNamespace, []byte(ownerID.String()+"\x00"+t.Name)).String())
	}

	task := &model.Task{
		ID:          id,
		Name:        strings.TrimSpace(t.Name),
		Customer:    t.Customer,
		Status:      t.Status,
		Location:    t.Location,
		Description: t.Description,
		OwnerID:     ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	if t.ScheduledDate != nil {
		d := t.ScheduledDate.UTC()
		task.ScheduledDate = &d
	}
	return task
}
