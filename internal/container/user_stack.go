package container

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/go-user-lifecycle/config"
	userapp "github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/application/eventhandler"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/repository"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/service"
	"github.com/oksasatya/go-user-lifecycle/internal/eventbus"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/esindex"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/eventcodec"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/eventsourced"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/gcs"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/memory"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/notifier"
	pginfra "github.com/oksasatya/go-user-lifecycle/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-lifecycle/internal/infrastructure/redisstore"
)

// UserStack is the composed user lifecycle core.
type UserStack struct {
	Service *userapp.Service
	Repo    *eventsourced.UserRepository
	Store   repository.EventStore
	Bus     *eventbus.Bus
	Views   repository.UserReadModelRepository
	Search  repository.UserSearcher
}

// PasswordPolicy reads the policy from configuration.
func PasswordPolicy(c *config.Config) service.PasswordPolicy {
	return service.PasswordPolicy{
		MinLength:     c.PasswordMinLength,
		MaxLength:     c.PasswordMaxLength,
		RequireLetter: c.PasswordRequireLetter,
		RequireDigit:  c.PasswordRequireDigit,
		RequireUpper:  c.PasswordRequireUpper,
		RequireSymbol: c.PasswordRequireSymbol,
	}
}

// BuildUserStack wires the event store, index, read model, notifier and event
// bus selected by configuration, using the clients already set on the
// container.
func BuildUserStack(ctx context.Context) (*UserStack, error) {
	c := GetConfig()
	if c == nil {
		return nil, errors.New("container: config not set")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	log := GetLogger()

	var (
		store  repository.EventStore
		lister eventsourced.StreamLister
		ids    repository.IdentityGenerator
		index  repository.UserIndex
	)

	switch c.EventStoreDriver {
	case "postgres":
		if pgPool == nil {
			return nil, errors.New("container: postgres event store needs a pool")
		}
		pg := pginfra.NewEventStore(pgPool, eventcodec.New(c.BcryptCost))
		store, lister = pg, pg
		ids = pginfra.NewIdentityGenerator(pgPool)
	default:
		mem := memory.NewEventStore()
		store, lister = mem, mem
	}

	switch c.UserIndexDriver {
	case "redis":
		if redisClient == nil {
			return nil, errors.New("container: redis user index needs a client")
		}
		index = redisstore.NewUserIndex(redisClient)
		if ids == nil {
			ids = redisstore.NewIdentityGenerator(redisClient)
		}
	default:
		index = memory.NewUserIndex()
	}
	if ids == nil {
		ids = memory.NewIdentityGenerator()
	}

	repo := eventsourced.NewUserRepository(store, index, ids, log)
	if c.UserIndexDriver == "memory" && c.EventStoreDriver == "postgres" {
		if _, err := repo.Reindex(ctx, lister); err != nil {
			return nil, fmt.Errorf("rebuild user index: %w", err)
		}
	}

	views, search, err := buildReadModel(ctx, c)
	if err != nil {
		return nil, err
	}

	var n eventhandler.Notifier
	switch c.NotifierDriver {
	case "queue":
		if rabbitPub == nil {
			return nil, errors.New("container: queue notifier needs a rabbitmq publisher")
		}
		n = notifier.NewQueueNotifier(rabbitPub, c)
	default:
		n = notifier.NewLogNotifier(log)
	}

	bus := eventbus.New(log)
	eventhandler.Register(bus, eventhandler.Deps{Users: repo, Views: views, Notifier: n, Logger: log})
	if c.ArchiveEnabled {
		if gcsClient == nil {
			return nil, errors.New("container: stream archive needs a gcs client")
		}
		bus.Subscribe(entity.UserUnregisteredEventType,
			eventhandler.NewStreamArchiver(store, gcs.NewBucket(gcsClient, c.GCSBucket), c.ArchivePrefix, log))
	}

	passwords := service.NewUserPasswordService(PasswordPolicy(c))
	svc := userapp.NewService(repo, passwords, bus, log)

	return &UserStack{
		Service: svc,
		Repo:    repo,
		Store:   store,
		Bus:     bus,
		Views:   views,
		Search:  search,
	}, nil
}

func buildReadModel(ctx context.Context, c *config.Config) (repository.UserReadModelRepository, repository.UserSearcher, error) {
	var views repository.UserReadModelRepository
	switch c.ReadModelDriver {
	case "postgres":
		if pgPool == nil {
			return nil, nil, errors.New("container: postgres read model needs a pool")
		}
		views = pginfra.NewUserReadModel(pgPool)
	case "elasticsearch":
		if esClient == nil {
			return nil, nil, errors.New("container: elasticsearch read model needs a client")
		}
		es := esindex.NewUserReadModel(esClient, c.ESUsersIndex, GetLogger())
		if err := es.EnsureIndex(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure users index: %w", err)
		}
		views = es
	default:
		views = memory.NewUserReadModel()
	}

	if c.ReadModelCacheTTL > 0 && redisClient != nil {
		cached := redisstore.NewCachedReadModel(views, redisClient, c.ReadModelCacheTTL, GetLogger())
		return cached, cached, nil
	}
	search, _ := views.(repository.UserSearcher)
	return views, search, nil
}
