package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type PurchaseRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlanPurchase) ([]*types.PlanPurchase, error)
	Exists(dbc dbctx.Context, snapshotID, buyerID uuid.UUID) (bool, error)
	ListByBuyer(dbc dbctx.Context, buyerID uuid.UUID) ([]*types.PlanPurchase, error)
}

type purchaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPurchaseRepo(db *gorm.DB, baseLog *logger.Logger) PurchaseRepo {
	return &purchaseRepo{db: db, log: baseLog.With("repo", "PurchaseRepo")}
}

func (r *purchaseRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *purchaseRepo) Create(dbc dbctx.Context, rows []*types.PlanPurchase) ([]*types.PlanPurchase, error) {
	if len(rows) == 0 {
		return []*types.PlanPurchase{}, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *purchaseRepo) Exists(dbc dbctx.Context, snapshotID, buyerID uuid.UUID) (bool, error) {
	if snapshotID == uuid.Nil || buyerID == uuid.Nil {
		return false, nil
	}
	var count int64
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Model(&types.PlanPurchase{}).
		Where("snapshot_id = ? AND buyer_id = ?", snapshotID, buyerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *purchaseRepo) ListByBuyer(dbc dbctx.Context, buyerID uuid.UUID) ([]*types.PlanPurchase, error) {
	var out []*types.PlanPurchase
	if buyerID == uuid.Nil {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
