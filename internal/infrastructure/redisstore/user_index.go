// Package redisstore backs the user index, id sequence and read-model cache
// with Redis.
package redisstore

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
)

const (
	loginKeyPrefix = "user:login:"
	hashKeyPrefix  = "user:activation:"
	sequenceKey    = "user:id:seq"
)

func loginKey(login entity.UserLogin) string { return loginKeyPrefix + login.String() }
func hashKey(hash string) string             { return hashKeyPrefix + hash }

// claimScript sets the login key unless another id already owns it.
var claimScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if not cur then
  redis.call("SET", KEYS[1], ARGV[1])
  return 1
end
if cur == ARGV[1] then
  return 1
end
return 0
`)

// UserIndex stores login and activation-hash lookups as plain keys. Logins
// are claimed atomically, so two registrations racing on one login cannot
// both succeed.
type UserIndex struct {
	rdb *redis.Client
}

var _ repository.UserIndex = (*UserIndex)(nil)

func NewUserIndex(rdb *redis.Client) *UserIndex {
	return &UserIndex{rdb: rdb}
}

func (x *UserIndex) ClaimLogin(ctx context.Context, login entity.UserLogin, id entity.UserID) error {
	ok, err := claimScript.Run(ctx, x.rdb, []string{loginKey(login)}, id.String()).Int()
	if err != nil {
		return err
	}
	if ok != 1 {
		return entity.ErrUserAlreadyExists
	}
	return nil
}

func (x *UserIndex) ReleaseLogin(ctx context.Context, login entity.UserLogin) error {
	return x.rdb.Del(ctx, loginKey(login)).Err()
}

func (x *UserIndex) LookupLogin(ctx context.Context, login entity.UserLogin) (entity.UserID, bool, error) {
	return x.lookup(ctx, loginKey(login))
}

func (x *UserIndex) PutActivationHash(ctx context.Context, hash string, id entity.UserID) error {
	return x.rdb.Set(ctx, hashKey(hash), id.String(), 0).Err()
}

func (x *UserIndex) DeleteActivationHash(ctx context.Context, hash string) error {
	return x.rdb.Del(ctx, hashKey(hash)).Err()
}

func (x *UserIndex) LookupActivationHash(ctx context.Context, hash string) (entity.UserID, bool, error) {
	return x.lookup(ctx, hashKey(hash))
}

// Reset removes every index key. Only test harnesses call it.
func (x *UserIndex) Reset(ctx context.Context) error {
	for _, pattern := range []string{loginKeyPrefix + "*", hashKeyPrefix + "*"} {
		iter := x.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := x.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (x *UserIndex) lookup(ctx context.Context, key string) (entity.UserID, bool, error) {
	v, err := x.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return entity.UserID{}, false, nil
	}
	if err != nil {
		return entity.UserID{}, false, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return entity.UserID{}, false, err
	}
	id, err := entity.NewUserID(n)
	if err != nil {
		return entity.UserID{}, false, err
	}
	return id, true, nil
}

// IdentityGenerator draws ids from an INCR counter.
type IdentityGenerator struct {
	rdb *redis.Client
}

func NewIdentityGenerator(rdb *redis.Client) *IdentityGenerator {
	return &IdentityGenerator{rdb: rdb}
}

func (g *IdentityGenerator) NextUserID(ctx context.Context) (entity.UserID, error) {
	n, err := g.rdb.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return entity.UserID{}, err
	}
	return entity.NewUserID(n)
}
