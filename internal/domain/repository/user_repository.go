package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

// UserRepository loads and saves User aggregates. Lookups treat tombstoned
// users as absent and return entity.ErrUserNotFound.
type UserRepository interface {
	NextIdentity(ctx context.Context) (entity.UserID, error)
	FindByID(ctx context.Context, id entity.UserID) (*entity.User, error)
	FindByLogin(ctx context.Context, login entity.UserLogin) (*entity.User, error)
	FindByActivationHash(ctx context.Context, hash string) (*entity.User, error)
	Exists(ctx context.Context, login entity.UserLogin) (bool, error)
	// Save persists the aggregate's pending events and clears them.
	// Saving an aggregate with nothing pending is a no-op.
	Save(ctx context.Context, u *entity.User) error
}

// EventStore is the append-only system of record for user streams.
type EventStore interface {
	Append(ctx context.Context, id entity.UserID, e entity.UserEvent) error
	// Load returns the stream in append order; an unknown id yields an empty slice.
	Load(ctx context.Context, id entity.UserID) ([]entity.UserEvent, error)
}

// UserIndex resolves logins and activation hashes to aggregate ids.
// ClaimLogin is atomic: it fails with entity.ErrUserAlreadyExists when
// another id already holds the login.
type UserIndex interface {
	ClaimLogin(ctx context.Context, login entity.UserLogin, id entity.UserID) error
	ReleaseLogin(ctx context.Context, login entity.UserLogin) error
	LookupLogin(ctx context.Context, login entity.UserLogin) (entity.UserID, bool, error)
	PutActivationHash(ctx context.Context, hash string, id entity.UserID) error
	DeleteActivationHash(ctx context.Context, hash string) error
	LookupActivationHash(ctx context.Context, hash string) (entity.UserID, bool, error)
}

type IdentityGenerator interface {
	NextUserID(ctx context.Context) (entity.UserID, error)
}

// UserView is the query-side projection of a user.
type UserView struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	Active       bool      `json:"active"`
	Enabled      bool      `json:"enabled"`
	Version      int       `json:"version"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUserView projects the aggregate's current state.
func NewUserView(u *entity.User) UserView {
	return UserView{
		ID:           u.ID().Int64(),
		Login:        u.Login().String(),
		Active:       u.IsActive(),
		Enabled:      u.IsEnabled(),
		Version:      u.Version(),
		RegisteredAt: u.RegisteredAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

// UserReadModelRepository stores projections. Get returns
// entity.ErrUserNotFound for ids that were never saved or were removed.
type UserReadModelRepository interface {
	Save(ctx context.Context, v UserView) error
	Get(ctx context.Context, id int64) (UserView, error)
	Remove(ctx context.Context, id int64) error
}

// UserSearcher is implemented by read models that support free-text lookup.
type UserSearcher interface {
	Search(ctx context.Context, q string, size int) ([]UserView, error)
}
