package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type PlanEventRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlanEvent) ([]*types.PlanEvent, error)
	ListByPlan(dbc dbctx.Context, planID uuid.UUID, limit int) ([]*types.PlanEvent, error)
	ExistsKey(dbc dbctx.Context, idempotencyKey string) (bool, error)
}

type planEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanEventRepo(db *gorm.DB, baseLog *logger.Logger) PlanEventRepo {
	return &planEventRepo{db: db, log: baseLog.With("repo", "PlanEventRepo")}
}

func (r *planEventRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *planEventRepo) Create(dbc dbctx.Context, rows []*types.PlanEvent) ([]*types.PlanEvent, error) {
	if len(rows) == 0 {
		return []*types.PlanEvent{}, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *planEventRepo) ListByPlan(dbc dbctx.Context, planID uuid.UUID, limit int) ([]*types.PlanEvent, error) {
	var out []*types.PlanEvent
	if planID == uuid.Nil {
		return out, nil
	}
	q := r.handle(dbc).WithContext(dbc.Ctx).
		Where("plan_id = ?", planID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planEventRepo) ExistsKey(dbc dbctx.Context, idempotencyKey string) (bool, error) {
	if idempotencyKey == "" {
		return false, nil
	}
	var count int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.PlanEvent{}).
		Where("idempotency_key = ?", idempotencyKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
