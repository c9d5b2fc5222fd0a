package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Plan {
	tb.Helper()
	p := &types.Plan{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      "plan",
		Difficulty: types.DifficultyMedium,
		Status:     types.PlanStatusActive,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

func SeedTodo(tb testing.TB, ctx context.Context, tx *gorm.DB, planID uuid.UUID, order int, status string, due time.Time) *types.Todo {
	tb.Helper()
	td := &types.Todo{
		ID:       uuid.New(),
		PlanID:   planID,
		Title:    "todo",
		DayOrder: order,
		Priority: types.PriorityMedium,
		Status:   status,
		DueDate:  &due,
	}
	if err := tx.WithContext(ctx).Create(td).Error; err != nil {
		tb.Fatalf("seed todo: %v", err)
	}
	return td
}

func SeedSnapshot(tb testing.TB, ctx context.Context, tx *gorm.DB, planID, authorID uuid.UUID, free bool, price int, steps []byte) *types.MarketplaceSnapshot {
	tb.Helper()
	if steps == nil {
		steps = []byte(`[]`)
	}
	s := &types.MarketplaceSnapshot{
		ID:           uuid.New(),
		PlanID:       planID,
		AuthorID:     authorID,
		Title:        "snapshot",
		Difficulty:   types.DifficultyMedium,
		Free:         free,
		PriceCredits: price,
		Steps:        datatypes.JSON(steps),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed snapshot: %v", err)
	}
	return s
}
