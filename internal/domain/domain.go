package domain

import (
	"github.com/planloop/planloop-backend/internal/domain/auth"
	"github.com/planloop/planloop-backend/internal/domain/planning"
	"github.com/planloop/planloop-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type Plan = planning.Plan
type Todo = planning.Todo
type MarketplaceSnapshot = planning.MarketplaceSnapshot
type PlanPurchase = planning.PlanPurchase
type PlanEvent = planning.PlanEvent

const (
	PlanStatusDraft     = planning.PlanStatusDraft
	PlanStatusActive    = planning.PlanStatusActive
	PlanStatusCompleted = planning.PlanStatusCompleted
	PlanStatusArchived  = planning.PlanStatusArchived

	DifficultyEasy   = planning.DifficultyEasy
	DifficultyMedium = planning.DifficultyMedium
	DifficultyHard   = planning.DifficultyHard

	TodoStatusPending   = planning.TodoStatusPending
	TodoStatusCompleted = planning.TodoStatusCompleted
	TodoStatusSkipped   = planning.TodoStatusSkipped

	PriorityLow    = planning.PriorityLow
	PriorityMedium = planning.PriorityMedium
	PriorityHigh   = planning.PriorityHigh

	EventPlanCreated       = planning.EventPlanCreated
	EventPlanForked        = planning.EventPlanForked
	EventTodosReplaced     = planning.EventTodosReplaced
	EventTodosAppended     = planning.EventTodosAppended
	EventDatesShifted      = planning.EventDatesShifted
	EventOrdersShifted     = planning.EventOrdersShifted
	EventPlanDeleted       = planning.EventPlanDeleted
	EventSnapshotPublished = planning.EventSnapshotPublished
)
