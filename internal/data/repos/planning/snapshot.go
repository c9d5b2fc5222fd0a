package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	"github.com/planloop/planloop-backend/internal/platform/logger"
)

type SnapshotRepo interface {
	Create(dbc dbctx.Context, rows []*types.MarketplaceSnapshot) ([]*types.MarketplaceSnapshot, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MarketplaceSnapshot, error)
	ListByAuthor(dbc dbctx.Context, authorID uuid.UUID) ([]*types.MarketplaceSnapshot, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "SnapshotRepo")}
}

func (r *snapshotRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *snapshotRepo) Create(dbc dbctx.Context, rows []*types.MarketplaceSnapshot) ([]*types.MarketplaceSnapshot, error) {
	if len(rows) == 0 {
		return []*types.MarketplaceSnapshot{}, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *snapshotRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MarketplaceSnapshot, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.MarketplaceSnapshot
	if err := r.handle(dbc).WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *snapshotRepo) ListByAuthor(dbc dbctx.Context, authorID uuid.UUID) ([]*types.MarketplaceSnapshot, error) {
	var out []*types.MarketplaceSnapshot
	if authorID == uuid.Nil {
		return out, nil
	}
	if err := r.handle(dbc).WithContext(dbc.Ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *snapshotRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.handle(dbc).WithContext(dbc.Ctx).Unscoped().Where("id IN ?", ids).Delete(&types.MarketplaceSnapshot{}).Error
}
