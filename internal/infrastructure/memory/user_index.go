package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
)

type UserIndex struct {
	mu     sync.RWMutex
	logins map[string]int64
	hashes map[string]int64
}

func NewUserIndex() *UserIndex {
	return &UserIndex{
		logins: make(map[string]int64),
		hashes: make(map[string]int64),
	}
}

func (x *UserIndex) ClaimLogin(_ context.Context, login entity.UserLogin, id entity.UserID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if owner, ok := x.logins[login.String()]; ok && owner != id.Int64() {
		return entity.ErrUserAlreadyExists
	}
	x.logins[login.String()] = id.Int64()
	return nil
}

func (x *UserIndex) ReleaseLogin(_ context.Context, login entity.UserLogin) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.logins, login.String())
	return nil
}

func (x *UserIndex) LookupLogin(_ context.Context, login entity.UserLogin) (entity.UserID, bool, error) {
	x.mu.RLock()
	v, ok := x.logins[login.String()]
	x.mu.RUnlock()
	return lookup(v, ok)
}

func (x *UserIndex) PutActivationHash(_ context.Context, hash string, id entity.UserID) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.hashes[hash] = id.Int64()
	return nil
}

func (x *UserIndex) DeleteActivationHash(_ context.Context, hash string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.hashes, hash)
	return nil
}

func (x *UserIndex) LookupActivationHash(_ context.Context, hash string) (entity.UserID, bool, error) {
	x.mu.RLock()
	v, ok := x.hashes[hash]
	x.mu.RUnlock()
	return lookup(v, ok)
}

func (x *UserIndex) Reset(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.logins = make(map[string]int64)
	x.hashes = make(map[string]int64)
	return nil
}

func lookup(v int64, ok bool) (entity.UserID, bool, error) {
	if !ok {
		return entity.UserID{}, false, nil
	}
	id, err := entity.NewUserID(v)
	if err != nil {
		return entity.UserID{}, false, err
	}
	return id, true, nil
}
