package container

import (
	"context"
	"fmt"

	pginfra "github.com/oksasatya/go-user-lifecycle/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

// Connect opens the clients the configured drivers need, stores them on the
// container and returns a func that closes them in reverse order.
func Connect(ctx context.Context) (func(), error) {
	c := GetConfig()
	if c == nil {
		return nil, fmt.Errorf("container: config not set")
	}
	log := GetLogger()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(what string, err error) (func(), error) {
		cleanup()
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	if c.NeedsPostgres() {
		pool, err := pginfra.NewPool(ctx, c.PostgresDSN(), c.AppName, c.DBMaxConns, c.DBMinConns, c.DBMaxConnLife)
		if err != nil {
			return fail("connect postgres", err)
		}
		closers = append(closers, pool.Close)
		if err := pginfra.RunMigrations(c.PostgresDSN(), c.MigrationsDir, log); err != nil {
			return fail("run migrations", err)
		}
		SetPGPool(pool)
	}

	// Redis also backs rate limiting, so keep it whenever it answers.
	rdb := helpers.NewRedisClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if c.NeedsRedis() {
			return fail("connect redis", err)
		}
		log.WithError(err).Warn("redis unavailable, rate limiting disabled")
	} else {
		closers = append(closers, func() { _ = rdb.Close() })
		SetRedis(rdb)
	}

	if c.ReadModelDriver == "elasticsearch" {
		es, err := helpers.NewESClient(c.ESAddrs(), c.ElasticsearchUser, c.ElasticsearchPass)
		if err != nil {
			return fail("init elasticsearch", err)
		}
		if err := helpers.ESPing(ctx, es); err != nil {
			return fail("ping elasticsearch", err)
		}
		SetES(es)
	}

	if c.ArchiveEnabled {
		sc, err := helpers.NewGCSClient(ctx, c.GCSCredentialsJSONPath)
		if err != nil {
			return fail("init gcs", err)
		}
		closers = append(closers, func() { _ = sc.Close() })
		SetGCS(sc)
	}

	if c.NotifierDriver == "queue" {
		pub, err := helpers.NewRabbitPublisher(c.RabbitMQURL, c.RabbitMQEmailQueue)
		if err != nil {
			return fail("connect rabbitmq", err)
		}
		closers = append(closers, pub.Close)
		SetRabbitPub(pub)
	}

	return cleanup, nil
}
