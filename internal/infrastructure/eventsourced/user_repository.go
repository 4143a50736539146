// Package eventsourced implements repository.UserRepository on top of an
// event store and a login/activation index.
package eventsourced

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

// StreamLister is implemented by event stores that can enumerate streams.
type StreamLister interface {
	AggregateIDs(ctx context.Context) ([]entity.UserID, error)
}

type resetter interface{ Reset() }

type contextResetter interface {
	Reset(ctx context.Context) error
}

type UserRepository struct {
	store  repository.EventStore
	index  repository.UserIndex
	ids    repository.IdentityGenerator
	logger *logrus.Logger
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(store repository.EventStore, index repository.UserIndex, ids repository.IdentityGenerator, logger *logrus.Logger) *UserRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &UserRepository{store: store, index: index, ids: ids, logger: logger}
}

func (r *UserRepository) NextIdentity(ctx context.Context) (entity.UserID, error) {
	return r.ids.NextUserID(ctx)
}

func (r *UserRepository) FindByID(ctx context.Context, id entity.UserID) (*entity.User, error) {
	history, err := r.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load stream %s: %w", id, err)
	}
	u, err := entity.ReconstituteUser(history)
	if err != nil {
		return nil, err
	}
	if u.IsUnregistered() {
		return nil, entity.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) FindByLogin(ctx context.Context, login entity.UserLogin) (*entity.User, error) {
	id, ok, err := r.index.LookupLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("lookup login: %w", err)
	}
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) FindByActivationHash(ctx context.Context, hash string) (*entity.User, error) {
	if hash == "" {
		return nil, entity.ErrUserNotFound
	}
	id, ok, err := r.index.LookupActivationHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("lookup activation hash: %w", err)
	}
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Exists(ctx context.Context, login entity.UserLogin) (bool, error) {
	_, ok, err := r.index.LookupLogin(ctx, login)
	if err != nil {
		return false, fmt.Errorf("lookup login: %w", err)
	}
	return ok, nil
}

// Save appends pending events in order. A UserRegistered event claims its
// login before it is appended; the claim is released if the append fails.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	pending := u.PendingEvents()
	if len(pending) == 0 {
		return nil
	}
	for _, e := range pending {
		reg, registering := e.(entity.UserRegistered)
		if registering {
			if err := r.index.ClaimLogin(ctx, reg.Login, u.ID()); err != nil {
				if errors.Is(err, entity.ErrUserAlreadyExists) {
					return err
				}
				return fmt.Errorf("claim login: %w", err)
			}
		}
		if err := r.store.Append(ctx, u.ID(), e); err != nil {
			if registering {
				if rerr := r.index.ReleaseLogin(ctx, reg.Login); rerr != nil {
					r.logger.WithError(rerr).WithField("user_id", u.ID().Int64()).Warn("release login claim failed")
				}
			}
			return fmt.Errorf("append %s: %w", e.EventType(), err)
		}
		if err := r.track(ctx, u, e); err != nil {
			return err
		}
	}
	u.ClearPendingEvents()
	return nil
}

// track keeps the index in step with an appended event.
func (r *UserRepository) track(ctx context.Context, u *entity.User, e entity.UserEvent) error {
	var err error
	switch e := e.(type) {
	case entity.UserRegistered:
		err = r.index.PutActivationHash(ctx, e.ActivationHash, u.ID())
	case entity.UserActivated:
		err = r.index.DeleteActivationHash(ctx, e.ActivationHash)
	case entity.UserUnregistered:
		err = r.index.ReleaseLogin(ctx, e.Login)
		if err == nil && u.ActivationHash() != "" {
			err = r.index.DeleteActivationHash(ctx, u.ActivationHash())
		}
	}
	if err != nil {
		return fmt.Errorf("index %s: %w", e.EventType(), err)
	}
	return nil
}

// Reindex rebuilds the index from every stream the store holds. It is used
// when a durable store is paired with an in-memory index.
func (r *UserRepository) Reindex(ctx context.Context, lister StreamLister) (int, error) {
	ids, err := lister.AggregateIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list streams: %w", err)
	}
	n := 0
	for _, id := range ids {
		u, err := r.FindByID(ctx, id)
		if errors.Is(err, entity.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return n, err
		}
		if err := r.index.ClaimLogin(ctx, u.Login(), u.ID()); err != nil {
			return n, fmt.Errorf("reindex user %s: %w", id, err)
		}
		if hash := u.ActivationHash(); hash != "" {
			if err := r.index.PutActivationHash(ctx, hash, u.ID()); err != nil {
				return n, fmt.Errorf("reindex user %s: %w", id, err)
			}
		}
		n++
	}
	r.logger.WithField("users", n).Info("user index rebuilt")
	return n, nil
}

// Reset clears the index and, where supported, the backing store and
// identity sequence. Test harnesses call it between cases.
func (r *UserRepository) Reset(ctx context.Context) error {
	for _, c := range []any{r.index, r.store, r.ids} {
		switch c := c.(type) {
		case contextResetter:
			if err := c.Reset(ctx); err != nil {
				return err
			}
		case resetter:
			c.Reset()
		}
	}
	return nil
}
