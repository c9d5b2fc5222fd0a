package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanStatusDraft     = "draft"
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusArchived  = "archived"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Plan is one learning roadmap owned by exactly one user. Its todos are
// disjoint from every other plan's todos.
type Plan struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Difficulty  string    `gorm:"column:difficulty;not null;default:'medium'" json:"difficulty"`

	// EstimatedDays is the advertised duration; nil when the AI did not
	// produce one.
	EstimatedDays *int   `gorm:"column:estimated_days" json:"estimated_days,omitempty"`
	Status        string `gorm:"column:status;not null;default:'draft';index" json:"status"`

	// Forked marks plans created from a marketplace snapshot.
	Forked         bool       `gorm:"column:forked;not null;default:false" json:"forked"`
	ForkedFromID   *uuid.UUID `gorm:"type:uuid;column:forked_from_id;index" json:"forked_from_id,omitempty"`

	// StartDate anchors due-date bucketing. Nil means CreatedAt is the
	// effective start reference.
	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Plan) TableName() string { return "plan" }

// EffectiveStart is the reference date for due-date bucketing.
func (p *Plan) EffectiveStart() time.Time {
	if p.StartDate != nil {
		return *p.StartDate
	}
	return p.CreatedAt
}
