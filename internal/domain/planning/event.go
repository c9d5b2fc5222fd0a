package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EventPlanCreated       = "plan_created"
	EventPlanForked        = "plan_forked"
	EventTodosReplaced     = "todos_replaced"
	EventTodosAppended     = "todos_appended"
	EventDatesShifted      = "dates_shifted"
	EventOrdersShifted     = "orders_shifted"
	EventPlanDeleted       = "plan_deleted"
	EventSnapshotPublished = "snapshot_published"
)

// PlanEvent is an append-only audit row written alongside every plan
// mutation. IdempotencyKey is set when the caller supplied one (bulk
// shifts arriving over at-least-once delivery).
type PlanEvent struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"plan_id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type           string         `gorm:"column:type;not null;index" json:"type"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`
	IdempotencyKey *string        `gorm:"column:idempotency_key;uniqueIndex" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;index" json:"created_at"`
}

func (PlanEvent) TableName() string { return "plan_event" }
