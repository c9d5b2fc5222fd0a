package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/planloop/planloop-backend/internal/http/handlers"
	httpMW "github.com/planloop/planloop-backend/internal/http/middleware"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	PlanHandler        *httpH.PlanHandler
	TodoHandler        *httpH.TodoHandler
	MarketplaceHandler *httpH.MarketplaceHandler
	ToolsHandler       *httpH.ToolsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("planloop"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Plans
		if cfg.PlanHandler != nil {
			protected.POST("/plans", cfg.PlanHandler.Create)
			protected.GET("/plans", cfg.PlanHandler.List)
			protected.GET("/plans/:plan_id", cfg.PlanHandler.Get)
			protected.PATCH("/plans/:plan_id", cfg.PlanHandler.Update)
			protected.DELETE("/plans/:plan_id", cfg.PlanHandler.Delete)
			protected.GET("/plans/:plan_id/todos", cfg.PlanHandler.ListTodos)
			protected.GET("/plans/:plan_id/events", cfg.PlanHandler.ListEvents)
			protected.PUT("/plans/:plan_id/todos", cfg.PlanHandler.ReplaceTodos)
			protected.POST("/plans/:plan_id/todos", cfg.PlanHandler.AppendTodos)
			protected.POST("/plans/:plan_id/shift", cfg.PlanHandler.ShiftDates)
			protected.POST("/plans/:plan_id/shift-from", cfg.PlanHandler.ShiftFromTodo)
		}

		// Todos
		if cfg.TodoHandler != nil {
			protected.PATCH("/todos/:todo_id", cfg.TodoHandler.Update)
			protected.DELETE("/todos/:todo_id", cfg.TodoHandler.Delete)
		}

		// Marketplace
		if cfg.MarketplaceHandler != nil {
			protected.POST("/plans/:plan_id/publish", cfg.MarketplaceHandler.Publish)
			protected.POST("/marketplace/:snapshot_id/fork", cfg.MarketplaceHandler.Fork)
			protected.POST("/marketplace/:snapshot_id/purchase", cfg.MarketplaceHandler.Purchase)
		}

		// Assistant tool calls
		if cfg.ToolsHandler != nil {
			protected.POST("/tools/execute", cfg.ToolsHandler.Execute)
		}
	}

	return r
}
