package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type PlanRepo interface {
	Create(dbc dbctx.Context, rows []*types.Plan) ([]*types.Plan, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Plan, error)

	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Plan, error)
	ListByStatus(dbc dbctx.Context, userID uuid.UUID, statuses []string) ([]*types.Plan, error)

	Update(dbc dbctx.Context, row *types.Plan) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *planRepo) Create(dbc dbctx.Context, rows []*types.Plan) ([]*types.Plan, error) {
	if len(rows) == 0 {
		return []*types.Plan{}, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *planRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Plan, error) {
	var out []*types.Plan
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Plan, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *planRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Plan, error) {
	var out []*types.Plan
	if userID == uuid.Nil {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) ListByStatus(dbc dbctx.Context, userID uuid.UUID, statuses []string) ([]*types.Plan, error) {
	var out []*types.Plan
	if userID == uuid.Nil || len(statuses) == 0 {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planRepo) Update(dbc dbctx.Context, row *types.Plan) error {
	if row == nil {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Save(row).Error
}

func (r *planRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.Plan{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *planRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Plan{}).Error
}

func (r *planRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Plan{}).Error
}
