package router

import (
	"github.com/oksasatya/go-user-lifecycle/internal/container"
	handlers "github.com/oksasatya/go-user-lifecycle/internal/interface/http"
	"github.com/oksasatya/go-user-lifecycle/internal/router/modules"
)

// InitModules registers every feature module on the registry. stack is built
// once at startup by container.BuildUserStack.
func InitModules(r *Registry, stack *container.UserStack) {
	handler := handlers.NewUserHandler(stack.Service, stack.Views, stack.Search, container.GetLogger())
	if jwt := container.GetJWT(); jwt != nil {
		handler.WithTokens(jwt)
	}
	r.Add(modules.NewUserModule(handler, container.GetJWT(), container.GetRedis()))

	if cfg := container.GetConfig(); cfg == nil || cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
