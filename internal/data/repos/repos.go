package repos

import (
	"gorm.io/gorm"

	"github.com/planloop/planloop-backend/internal/data/repos/auth"
	"github.com/planloop/planloop-backend/internal/data/repos/planning"
	"github.com/planloop/planloop-backend/internal/data/repos/user"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type PlanRepo = planning.PlanRepo
type TodoRepo = planning.TodoRepo
type SnapshotRepo = planning.SnapshotRepo
type PurchaseRepo = planning.PurchaseRepo
type PlanEventRepo = planning.PlanEventRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return planning.NewPlanRepo(db, baseLog)
}
func NewTodoRepo(db *gorm.DB, baseLog *logger.Logger) TodoRepo {
	return planning.NewTodoRepo(db, baseLog)
}
func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return planning.NewSnapshotRepo(db, baseLog)
}
func NewPurchaseRepo(db *gorm.DB, baseLog *logger.Logger) PurchaseRepo {
	return planning.NewPurchaseRepo(db, baseLog)
}
func NewPlanEventRepo(db *gorm.DB, baseLog *logger.Logger) PlanEventRepo {
	return planning.NewPlanEventRepo(db, baseLog)
}
