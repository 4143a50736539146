package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-lifecycle/internal/interface/http"
	"github.com/oksasatya/go-user-lifecycle/internal/interface/middleware"
	"github.com/oksasatya/go-user-lifecycle/pkg/helpers"
)

// UserModule exposes the user lifecycle commands under /users.
// Public: POST /users, GET /users/activate/:hash (returns a user-role token)
// Operator: POST /users/:id/enable, POST /users/:id/disable, GET /users/search
// Owner or operator: GET /users/:id, PUT /users/:id/password, DELETE /users/:id
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	activateLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	users.POST("", registerLimiter, m.Handler.Register)
	users.GET("/activate/:hash", activateLimiter, m.Handler.Activate)

	auth := users.Group("")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/:id", m.Handler.Get)
		auth.PUT("/:id/password", m.Handler.ChangePassword)
		auth.DELETE("/:id", m.Handler.Unregister)
	}

	ops := users.Group("")
	ops.Use(middleware.Auth(m.JWT), middleware.RequireOperator())
	{
		ops.GET("/search", m.Handler.SearchUsers)
		ops.POST("/:id/enable", m.Handler.Enable)
		ops.POST("/:id/disable", m.Handler.Disable)
	}
}
