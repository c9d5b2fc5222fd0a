package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MarketplaceSnapshot is an immutable copy of a plan's content taken at
// publish time. It carries step descriptors without due-dates; dates
// are recomputed at fork time relative to the fork moment.
type MarketplaceSnapshot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID      uuid.UUID `gorm:"type:uuid;not null;index" json:"plan_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Difficulty  string    `gorm:"column:difficulty;not null;default:'medium'" json:"difficulty"`

	EstimatedDays *int `gorm:"column:estimated_days" json:"estimated_days,omitempty"`

	// PriceCredits is 0 for free plans; Free is kept explicit so a paid
	// listing can be discounted to zero without becoming free forever.
	PriceCredits int  `gorm:"column:price_credits;not null;default:0" json:"price_credits"`
	Free         bool `gorm:"column:free;not null;default:true" json:"free"`

	// Steps holds the serialized step descriptors (title, description,
	// order, priority, estimated_minutes, resources).
	Steps datatypes.JSON `gorm:"column:steps;type:jsonb;not null" json:"steps"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MarketplaceSnapshot) TableName() string { return "marketplace_snapshot" }

// PlanPurchase records that a buyer paid for a snapshot. The fork gate
// reads these rows; credit movement itself happens in the payment flow.
type PlanPurchase struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SnapshotID   uuid.UUID `gorm:"type:uuid;not null;index:idx_purchase_snapshot_buyer,unique,priority:1" json:"snapshot_id"`
	BuyerID      uuid.UUID `gorm:"type:uuid;not null;index:idx_purchase_snapshot_buyer,unique,priority:2" json:"buyer_id"`
	PriceCredits int       `gorm:"column:price_credits;not null;default:0" json:"price_credits"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (PlanPurchase) TableName() string { return "plan_purchase" }
