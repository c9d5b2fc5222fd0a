package planning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/planloop/planloop-backend/internal/data/repos/testutil"
	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
)

func TestPlanRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)

	repo := NewPlanRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, dbc.Ctx, tx, "planrepo@example.com")

	p1 := &types.Plan{ID: uuid.New(), UserID: u.ID, Title: "p1", Difficulty: types.DifficultyEasy, Status: types.PlanStatusDraft}
	p2 := &types.Plan{ID: uuid.New(), UserID: u.ID, Title: "p2", Difficulty: types.DifficultyHard, Status: types.PlanStatusActive}
	if _, err := repo.Create(dbc, []*types.Plan{p1, p2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, p1.ID); err != nil || got == nil || got.ID != p1.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if rows, err := repo.ListByUser(dbc, u.ID); err != nil || len(rows) != 2 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByStatus(dbc, u.ID, []string{types.PlanStatusActive}); err != nil || len(rows) != 1 {
		t.Fatalf("ListByStatus: err=%v len=%d", err, len(rows))
	}

	p1.Title = "p1b"
	if err := repo.Update(dbc, p1); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.UpdateFields(dbc, p2.ID, map[string]interface{}{"status": types.PlanStatusArchived}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if got, err := repo.GetByID(dbc, p2.ID); err != nil || got.Status != types.PlanStatusArchived {
		t.Fatalf("UpdateFields not applied: got=%v err=%v", got, err)
	}

	if err := repo.SoftDeleteByIDs(dbc, []uuid.UUID{p1.ID}); err != nil {
		t.Fatalf("SoftDeleteByIDs: %v", err)
	}
	if rows, err := repo.ListByUser(dbc, u.ID); err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser after soft delete: err=%v len=%d", err, len(rows))
	}
	if err := repo.FullDeleteByIDs(dbc, []uuid.UUID{p2.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
}
