package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

func viewKey(id int64) string { return "user:view:" + strconv.FormatInt(id, 10) }

// CachedReadModel is a read-through cache in front of another read model.
// Writes go to the backing model first, then refresh the cached copy.
type CachedReadModel struct {
	next   repository.UserReadModelRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

var _ repository.UserReadModelRepository = (*CachedReadModel)(nil)

func NewCachedReadModel(next repository.UserReadModelRepository, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *CachedReadModel {
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedReadModel{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachedReadModel) Save(ctx context.Context, v repository.UserView) error {
	if err := c.next.Save(ctx, v); err != nil {
		return err
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, viewKey(v.ID), v, c.ttl); err != nil {
		c.logger.WithError(err).WithField("user_id", v.ID).Warn("cache user view failed")
	}
	return nil
}

func (c *CachedReadModel) Get(ctx context.Context, id int64) (repository.UserView, error) {
	var v repository.UserView
	found, err := helpers.RedisGetJSON(ctx, c.rdb, viewKey(id), &v)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", id).Warn("read cached user view failed")
	}
	if found {
		return v, nil
	}
	v, err = c.next.Get(ctx, id)
	if err != nil {
		return repository.UserView{}, err
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, viewKey(id), v, c.ttl); err != nil {
		c.logger.WithError(err).WithField("user_id", id).Warn("cache user view failed")
	}
	return v, nil
}

func (c *CachedReadModel) Remove(ctx context.Context, id int64) error {
	if err := helpers.RedisDel(ctx, c.rdb, viewKey(id)); err != nil {
		c.logger.WithError(err).WithField("user_id", id).Warn("evict user view failed")
	}
	return c.next.Remove(ctx, id)
}

// Search is served by the backing model when it supports it.
func (c *CachedReadModel) Search(ctx context.Context, q string, size int) ([]repository.UserView, error) {
	if s, ok := c.next.(repository.UserSearcher); ok {
		return s.Search(ctx, q, size)
	}
	return []repository.UserView{}, nil
}
