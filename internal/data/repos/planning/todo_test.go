package planning

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/planloop/planloop-backend/internal/data/repos/testutil"
	"github.com/planloop/planloop-backend/internal/db"
	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
)

func TestTodoRepoCRUD(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)

	repo := NewTodoRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, dbc.Ctx, tx, "todorepo@example.com")
	p := testutil.SeedPlan(t, dbc.Ctx, tx, u.ID)

	due := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []*types.Todo{
		{ID: uuid.New(), PlanID: p.ID, Title: "a", DayOrder: 1, Status: types.TodoStatusPending, DueDate: &due},
		{ID: uuid.New(), PlanID: p.ID, Title: "b", DayOrder: 2, Status: types.TodoStatusCompleted, DueDate: &due},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got, err := repo.GetByID(dbc, rows[0].ID); err != nil || got == nil || got.Title != "a" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if all, err := repo.ListByPlan(dbc, p.ID, nil); err != nil || len(all) != 2 {
		t.Fatalf("ListByPlan(all): err=%v len=%d", err, len(all))
	}
	if pending, err := repo.ListByPlan(dbc, p.ID, []string{types.TodoStatusPending}); err != nil || len(pending) != 1 {
		t.Fatalf("ListByPlan(pending): err=%v len=%d", err, len(pending))
	}

	if err := repo.UpdateFields(dbc, rows[0].ID, map[string]interface{}{"title": "a2"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if err := repo.FullDeleteByPlanAndStatus(dbc, p.ID, []string{types.TodoStatusPending}); err != nil {
		t.Fatalf("FullDeleteByPlanAndStatus: %v", err)
	}
	if left, err := repo.ListByPlan(dbc, p.ID, nil); err != nil || len(left) != 1 || left[0].Status != types.TodoStatusCompleted {
		t.Fatalf("pending delete must keep completed rows: err=%v left=%d", err, len(left))
	}

	if err := repo.FullDeleteByPlanIDs(dbc, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("FullDeleteByPlanIDs: %v", err)
	}
}

func TestTodoRepoShiftDueDates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)

	repo := NewTodoRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, dbc.Ctx, tx, "todoshift@example.com")
	p := testutil.SeedPlan(t, dbc.Ctx, tx, u.ID)

	day0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	pending := testutil.SeedTodo(t, dbc.Ctx, tx, p.ID, 1, types.TodoStatusPending, day0)
	done := testutil.SeedTodo(t, dbc.Ctx, tx, p.ID, 2, types.TodoStatusCompleted, day0)

	n, err := repo.ShiftDueDates(dbc, p.ID, 7, []string{types.TodoStatusPending})
	if err != nil {
		t.Fatalf("ShiftDueDates: %v", err)
	}
	if n != 1 {
		t.Fatalf("ShiftDueDates: want 1 row, got %d", n)
	}

	gotPending, err := repo.GetByID(dbc, pending.ID)
	if err != nil || gotPending.DueDate == nil {
		t.Fatalf("reload pending: %v", err)
	}
	if want := day0.AddDate(0, 0, 7); !gotPending.DueDate.UTC().Equal(want) {
		t.Fatalf("pending due: want %v, got %v", want, gotPending.DueDate.UTC())
	}

	gotDone, err := repo.GetByID(dbc, done.ID)
	if err != nil || gotDone.DueDate == nil {
		t.Fatalf("reload completed: %v", err)
	}
	if !gotDone.DueDate.UTC().Equal(day0) {
		t.Fatalf("completed row must be untouched, got %v", gotDone.DueDate.UTC())
	}

	// translate back: exact restore
	if _, err := repo.ShiftDueDates(dbc, p.ID, -7, []string{types.TodoStatusPending}); err != nil {
		t.Fatalf("ShiftDueDates(-7): %v", err)
	}
	gotPending, _ = repo.GetByID(dbc, pending.ID)
	if !gotPending.DueDate.UTC().Equal(day0) {
		t.Fatalf("round-trip shift must restore due date, got %v", gotPending.DueDate.UTC())
	}
}

func TestTodoRepoShiftDayOrders(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.WithTx(context.Background(), tx)

	repo := NewTodoRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, dbc.Ctx, tx, "ordershift@example.com")
	p := testutil.SeedPlan(t, dbc.Ctx, tx, u.ID)

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := testutil.SeedTodo(t, dbc.Ctx, tx, p.ID, 1, types.TodoStatusPending, due)
	b := testutil.SeedTodo(t, dbc.Ctx, tx, p.ID, 2, types.TodoStatusPending, due)

	if err := repo.ShiftDayOrders(dbc, []uuid.UUID{b.ID}, 3); err != nil {
		t.Fatalf("ShiftDayOrders: %v", err)
	}
	gotA, _ := repo.GetByID(dbc, a.ID)
	gotB, _ := repo.GetByID(dbc, b.ID)
	if gotA.DayOrder != 1 {
		t.Fatalf("untargeted row moved: %d", gotA.DayOrder)
	}
	if gotB.DayOrder != 5 {
		t.Fatalf("want day_order 5, got %d", gotB.DayOrder)
	}
	if !gotB.DueDate.UTC().Equal(due) {
		t.Fatalf("order shift must not touch due_date, got %v", gotB.DueDate.UTC())
	}
}

func TestTodoRepoShiftDueDatesSqlite(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "planloop.db"))

	svc, err := db.New(testutil.Logger(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("automigrate sqlite: %v", err)
	}

	sdb := svc.DB()
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewTodoRepo(sdb, testutil.Logger(t))
	u := testutil.SeedUser(t, dbc.Ctx, sdb, "sqliteshift@example.com")
	p := testutil.SeedPlan(t, dbc.Ctx, sdb, u.ID)

	day0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	td := testutil.SeedTodo(t, dbc.Ctx, sdb, p.ID, 1, types.TodoStatusPending, day0)

	n, err := repo.ShiftDueDates(dbc, p.ID, 7, []string{types.TodoStatusPending})
	if err != nil {
		t.Fatalf("ShiftDueDates: %v", err)
	}
	if n != 1 {
		t.Fatalf("ShiftDueDates: want 1 row, got %d", n)
	}

	got, err := repo.GetByID(dbc, td.ID)
	if err != nil || got.DueDate == nil {
		t.Fatalf("reload: %v", err)
	}
	if want := "2024-05-08"; got.DueDate.Format("2006-01-02") != want {
		t.Fatalf("sqlite shift: want %s, got %v", want, got.DueDate)
	}
}
