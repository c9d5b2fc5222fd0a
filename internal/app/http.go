package app

import (
	"github.com/gin-gonic/gin"

	"github.com/planloop/planloop-backend/internal/aitools"
	planhttp "github.com/planloop/planloop-backend/internal/http"
	httpH "github.com/planloop/planloop-backend/internal/http/handlers"
	httpMW "github.com/planloop/planloop-backend/internal/http/middleware"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Plan        *httpH.PlanHandler
	Todo        *httpH.TodoHandler
	Marketplace *httpH.MarketplaceHandler
	Tools       *httpH.ToolsHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	dispatcher := aitools.NewDispatcher(log, services.Plan, services.Marketplace)
	return Handlers{
		Health:      httpH.NewHealthHandler(),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Plan:        httpH.NewPlanHandler(services.Plan),
		Todo:        httpH.NewTodoHandler(services.Plan),
		Marketplace: httpH.NewMarketplaceHandler(services.Marketplace),
		Tools:       httpH.NewToolsHandler(dispatcher),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return planhttp.NewRouter(planhttp.RouterConfig{
		Log:                log,
		AuthMiddleware:     middleware.Auth,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		PlanHandler:        handlers.Plan,
		TodoHandler:        handlers.Todo,
		MarketplaceHandler: handlers.Marketplace,
		ToolsHandler:       handlers.Tools,
	})
}
