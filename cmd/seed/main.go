package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-lifecycle/config"
	userapp "github.com/oksasatya/go-user-lifecycle/internal/application"
	"github.com/oksasatya/go-user-lifecycle/internal/container"
	"github.com/oksasatya/go-user-lifecycle/internal/domain/entity"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

// seed registers, activates and enables a demo user through the command
// handlers, then prints an operator token for the HTTP API.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	login := envOr("SEED_LOGIN", "demo@example.com")
	password := envOr("SEED_PASSWORD", "password1234")

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)
	cleanup, err := container.Connect(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect infrastructure")
	}
	defer cleanup()

	stack, err := container.BuildUserStack(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to build user stack")
	}
	svc := stack.Service

	cmd, err := userapp.NewRegisterUserCommand(login, password)
	if err != nil {
		logger.WithError(err).Fatal("invalid seed credentials")
	}

	u, err := svc.Register(ctx, cmd)
	switch {
	case errors.Is(err, entity.ErrUserAlreadyExists):
		if u, err = stack.Repo.FindByLogin(ctx, cmd.Login); err != nil {
			logger.WithError(err).Fatal("failed to load existing seed user")
		}
		logger.WithField("user_id", u.ID().Int64()).Info("seed user already registered")
	case err != nil && !errors.Is(err, userapp.ErrEventDispatch):
		logger.WithError(err).Fatal("failed to register seed user")
	}

	if !u.IsActive() {
		if u, err = svc.Activate(ctx, userapp.ActivateUserCommand{ActivationHash: u.ActivationHash()}); err != nil && !errors.Is(err, userapp.ErrEventDispatch) {
			logger.WithError(err).Fatal("failed to activate seed user")
		}
	}
	if !u.IsEnabled() {
		if u, err = svc.Enable(ctx, userapp.EnableUserCommand{UserID: u.ID()}); err != nil && !errors.Is(err, userapp.ErrEventDispatch) {
			logger.WithError(err).Fatal("failed to enable seed user")
		}
	}
	fmt.Printf("seeded user: id=%s login=%s state=%s password=%s\n", u.ID(), u.Login(), u.State(), password)

	jwt := helpers.NewJWTManager(cfg.JWTSecret, cfg.OperatorTokenTTL)
	token, exp, err := jwt.GenerateToken(u.ID().String(), helpers.RoleOperator)
	if err != nil {
		logger.WithError(err).Fatal("failed to issue operator token")
	}
	fmt.Printf("operator token (expires %s):\n%s\n", exp.UTC().Format("2006-01-02 15:04 MST"), token)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
