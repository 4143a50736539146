package container

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-lifecycle/config"
	userapp "github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

func memoryConfig() *config.Config {
	return &config.Config{
		EventStoreDriver:      "memory",
		UserIndexDriver:       "memory",
		ReadModelDriver:       "memory",
		NotifierDriver:        "log",
		PasswordMinLength:     8,
		PasswordMaxLength:     72,
		PasswordRequireLetter: true,
		PasswordRequireDigit:  true,
	}
}

func setup(t *testing.T, c *config.Config) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	l := logrus.New()
	l.SetOutput(io.Discard)
	SetLogger(l)
	SetConfig(c)
}

func TestBuildUserStack_Memory(t *testing.T) {
	setup(t, memoryConfig())
	ctx := context.Background()

	stack, err := BuildUserStack(ctx)
	require.NoError(t, err)
	require.NotNil(t, stack.Views)
	require.NotNil(t, stack.Search)
	for _, kind := range entity.UserEventTypes {
		assert.Equal(t, 1, stack.Bus.Handlers(kind), kind)
	}

	cmd, err := userapp.NewRegisterUserCommand("a@b.com", "password1")
	require.NoError(t, err)
	u, err := stack.Service.Register(ctx, cmd)
	require.NoError(t, err)

	v, err := stack.Views.Get(ctx, u.ID().Int64())
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", v.Login)

	require.NoError(t, stack.Repo.Reset(ctx))
	_, err = stack.Service.Get(ctx, u.ID())
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}

func TestBuildUserStack_MissingClients(t *testing.T) {
	cases := map[string]func(c *config.Config){
		"postgres store": func(c *config.Config) { c.EventStoreDriver = "postgres" },
		"redis index":    func(c *config.Config) { c.UserIndexDriver = "redis" },
		"es read model":  func(c *config.Config) { c.ReadModelDriver = "elasticsearch" },
		"queue notifier": func(c *config.Config) { c.NotifierDriver = "queue" },
		"archive":        func(c *config.Config) { c.ArchiveEnabled, c.GCSBucket = true, "b" },
		"unknown driver": func(c *config.Config) { c.ReadModelDriver = "mongo" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := memoryConfig()
			mutate(c)
			setup(t, c)
			_, err := BuildUserStack(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestBuildUserStack_RedisIndexNeedsDurableStore(t *testing.T) {
	c := memoryConfig()
	c.UserIndexDriver = "redis"
	setup(t, c)
	rdb := helpers.NewRedisClient("127.0.0.1:0", "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	SetRedis(rdb)

	_, err := BuildUserStack(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EVENT_STORE_DRIVER postgres")
}

func TestBuildUserStack_NoConfig(t *testing.T) {
	Reset()
	_, err := BuildUserStack(context.Background())
	assert.Error(t, err)
}

func TestPasswordPolicy(t *testing.T) {
	c := memoryConfig()
	c.PasswordRequireSymbol = true
	p := PasswordPolicy(c)
	assert.Equal(t, 8, p.MinLength)
	assert.True(t, p.RequireSymbol)
	assert.True(t, p.RequireDigit)
	assert.False(t, p.RequireUpper)
}
