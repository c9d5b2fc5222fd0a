package app

import (
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/planloop/planloop-backend/internal/platform/logger"
	"github.com/planloop/planloop-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	User        services.UserService
	Plan        services.PlanService
	Marketplace services.MarketplaceService
	Idempotency services.IdempotencyService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, rdb *goredis.Client) Services {
	log.Info("Wiring services...")
	idem := services.NewIdempotencyService(log, rdb)
	return Services{
		Auth:        services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:        services.NewUserService(db, log, r.User),
		Plan:        services.NewPlanService(db, log, r.Plan, r.Todo, r.Purchase, r.Snapshot, r.PlanEvent, idem),
		Marketplace: services.NewMarketplaceService(db, log, r.Plan, r.Todo, r.Snapshot, r.Purchase, r.PlanEvent, r.User),
		Idempotency: idem,
	}
}
