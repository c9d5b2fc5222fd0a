package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TodoStatusPending   = "pending"
	TodoStatusCompleted = "completed"
	TodoStatusSkipped   = "skipped"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Todo is one actionable unit within a plan. DayOrder is the logical
// day-slot, not a sequence index: values need not be unique or
// contiguous, and every todo sharing a DayOrder resolves to the same
// calendar due-date after bucketing.
type Todo struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID      uuid.UUID `gorm:"type:uuid;not null;index:idx_todo_plan_status,priority:1" json:"plan_id"`
	Plan        *Plan     `gorm:"constraint:OnDelete:CASCADE;foreignKey:PlanID;references:ID" json:"plan,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`

	DayOrder int    `gorm:"column:day_order;not null;default:0;index" json:"order"`
	Priority string `gorm:"column:priority;not null;default:'medium'" json:"priority"`
	Status   string `gorm:"column:status;not null;default:'pending';index:idx_todo_plan_status,priority:2" json:"status"`

	DueDate          *time.Time     `gorm:"column:due_date;index" json:"due_date,omitempty"`
	EstimatedMinutes int            `gorm:"column:estimated_minutes;not null;default:0" json:"estimated_minutes"`
	Resources        datatypes.JSON `gorm:"column:resources;type:jsonb" json:"resources,omitempty"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Todo) TableName() string { return "todo" }
