package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-lifecycle/config"
	"github.com/oksasatya/go-user-lifecycle/internal/container"
	"github.com/oksasatya/go-user-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-user-lifecycle/internal/router"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
	"github.com/oksasatya/go-user-lifecycle/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)
	cleanup, err := container.Connect(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect infrastructure")
	}
	defer cleanup()
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.OperatorTokenTTL))

	stack, err := container.BuildUserStack(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to build user stack")
	}
	logger.WithFields(logrus.Fields{
		"event_store": cfg.EventStoreDriver,
		"user_index":  cfg.UserIndexDriver,
		"read_model":  cfg.ReadModelDriver,
		"notifier":    cfg.NotifierDriver,
	}).Info("user stack ready")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r, "/api")
	router.InitModules(reg, stack)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
