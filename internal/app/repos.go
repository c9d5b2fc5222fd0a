package app

import (
	"gorm.io/gorm"

	"github.com/planloop/planloop-backend/internal/data/repos"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	Plan      repos.PlanRepo
	Todo      repos.TodoRepo
	Snapshot  repos.SnapshotRepo
	Purchase  repos.PurchaseRepo
	PlanEvent repos.PlanEventRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Plan:      repos.NewPlanRepo(db, log),
		Todo:      repos.NewTodoRepo(db, log),
		Snapshot:  repos.NewSnapshotRepo(db, log),
		Purchase:  repos.NewPurchaseRepo(db, log),
		PlanEvent: repos.NewPlanEventRepo(db, log),
	}
}
