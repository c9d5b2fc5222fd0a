package planning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type TodoRepo interface {
	Create(dbc dbctx.Context, rows []*types.Todo) ([]*types.Todo, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Todo, error)

	// ListByPlan returns the plan's todos ordered by day_order then
	// creation time. Empty statuses means all statuses.
	ListByPlan(dbc dbctx.Context, planID uuid.UUID, statuses []string) ([]*types.Todo, error)

	Update(dbc dbctx.Context, row *types.Todo) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	// ShiftDueDates translates due_date by a signed day delta for every
	// todo on the plan, optionally restricted by status. day_order is
	// untouched.
	ShiftDueDates(dbc dbctx.Context, planID uuid.UUID, days int, statuses []string) (int64, error)

	// ShiftDayOrders adds delta to day_order for the given todo ids.
	// Due-dates are untouched; callers re-bucket if they need dates to
	// follow the new slots.
	ShiftDayOrders(dbc dbctx.Context, ids []uuid.UUID, delta int) error

	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	FullDeleteByPlanAndStatus(dbc dbctx.Context, planID uuid.UUID, statuses []string) error
	FullDeleteByPlanIDs(dbc dbctx.Context, planIDs []uuid.UUID) error
}

type todoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTodoRepo(db *gorm.DB, baseLog *logger.Logger) TodoRepo {
	return &todoRepo{db: db, log: baseLog.With("repo", "TodoRepo")}
}

func (r *todoRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *todoRepo) Create(dbc dbctx.Context, rows []*types.Todo) ([]*types.Todo, error) {
	if len(rows) == 0 {
		return []*types.Todo{}, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *todoRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Todo, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Todo
	if err := r.handle(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *todoRepo) ListByPlan(dbc dbctx.Context, planID uuid.UUID, statuses []string) ([]*types.Todo, error) {
	var out []*types.Todo
	if planID == uuid.Nil {
		return out, nil
	}
	q := r.handle(dbc).WithContext(dbc.Ctx).Where("plan_id = ?", planID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("day_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *todoRepo) Update(dbc dbctx.Context, row *types.Todo) error {
	if row == nil {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Save(row).Error
}

func (r *todoRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Todo{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *todoRepo) ShiftDueDates(dbc dbctx.Context, planID uuid.UUID, days int, statuses []string) (int64, error) {
	if planID == uuid.Nil || days == 0 {
		return 0, nil
	}
	q := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.Todo{}).
		Where("plan_id = ? AND due_date IS NOT NULL", planID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var expr interface{}
	if r.db.Dialector.Name() == "sqlite" {
		expr = gorm.Expr("datetime(due_date, ?)", fmt.Sprintf("%+d days", days))
	} else {
		expr = gorm.Expr("due_date + make_interval(days => ?)", days)
	}
	res := q.Updates(map[string]interface{}{
		"due_date":   expr,
		"updated_at": time.Now().UTC(),
	})
	return res.RowsAffected, res.Error
}

func (r *todoRepo) ShiftDayOrders(dbc dbctx.Context, ids []uuid.UUID, delta int) error {
	if len(ids) == 0 || delta == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.Todo{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"day_order":  gorm.Expr("day_order + ?", delta),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *todoRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.Todo{}).Error
}

func (r *todoRepo) FullDeleteByPlanAndStatus(dbc dbctx.Context, planID uuid.UUID, statuses []string) error {
	if planID == uuid.Nil || len(statuses) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Unscoped().
		Where("plan_id = ? AND status IN ?", planID, statuses).
		Delete(&types.Todo{}).Error
}

func (r *todoRepo) FullDeleteByPlanIDs(dbc dbctx.Context, planIDs []uuid.UUID) error {
	if len(planIDs) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Unscoped().
		Where("plan_id IN ?", planIDs).
		Delete(&types.Todo{}).Error
}
