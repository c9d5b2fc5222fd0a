package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/planloop/planloop-backend/internal/data/repos"
	"github.com/planloop/planloop-backend/internal/data/repos/testutil"
	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/domain/planning"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	pkgerrors "github.com/planloop/planloop-backend/internal/pkg/errors"
)

func newMarketplaceService(tb testing.TB, tx *gorm.DB) MarketplaceService {
	tb.Helper()
	log := testutil.Logger(tb)
	return NewMarketplaceService(
		tx,
		log,
		repos.NewPlanRepo(tx, log),
		repos.NewTodoRepo(tx, log),
		repos.NewSnapshotRepo(tx, log),
		repos.NewPurchaseRepo(tx, log),
		repos.NewPlanEventRepo(tx, log),
		repos.NewUserRepo(tx, log),
	)
}

func snapshotSteps(tb testing.TB, steps []planning.StepInput) []byte {
	tb.Helper()
	raw, err := json.Marshal(steps)
	if err != nil {
		tb.Fatalf("marshal steps: %v", err)
	}
	return raw
}

func TestMarketplacePublishAndForkFree(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newMarketplaceService(t, tx)
	author := testutil.SeedUser(t, ctx, tx, "author@test.dev")
	forker := testutil.SeedUser(t, ctx, tx, "forker@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, author.ID)

	due := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	testutil.SeedTodo(t, ctx, tx, plan.ID, 1, types.TodoStatusPending, due)
	testutil.SeedTodo(t, ctx, tx, plan.ID, 2, types.TodoStatusPending, due)

	snapshot, err := svc.PublishSnapshot(ctx, author.ID, plan.ID, 0, true)
	if err != nil {
		t.Fatalf("PublishSnapshot failed: %v", err)
	}
	if !snapshot.Free {
		t.Fatal("zero-price snapshot should be free")
	}
	var steps []planning.StepInput
	if err := json.Unmarshal(snapshot.Steps, &steps); err != nil || len(steps) != 2 {
		t.Fatalf("expected 2 serialized steps, got %v (err %v)", steps, err)
	}

	fork, err := svc.ForkSnapshot(ctx, forker.ID, snapshot.ID)
	if err != nil {
		t.Fatalf("free fork should not need a purchase: %v", err)
	}
	if !fork.Forked || fork.ForkedFromID == nil || *fork.ForkedFromID != snapshot.ID {
		t.Fatalf("fork lineage not recorded: %+v", fork)
	}
	if fork.UserID != forker.ID {
		t.Fatalf("fork should belong to the forker, got %s", fork.UserID)
	}

	todos, err := repos.NewTodoRepo(tx, testutil.Logger(t)).ListByPlan(dbctx.WithTx(ctx, tx), fork.ID, nil)
	if err != nil {
		t.Fatalf("ListByPlan failed: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("expected 2 forked todos, got %d", len(todos))
	}
	// two distinct orders bucket onto consecutive days starting today
	if !todos[1].DueDate.Equal(todos[0].DueDate.AddDate(0, 0, 1)) {
		t.Fatalf("expected consecutive days, got %v and %v", todos[0].DueDate, todos[1].DueDate)
	}
}

func TestMarketplaceForkPaidRequiresPurchase(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newMarketplaceService(t, tx)
	author := testutil.SeedUser(t, ctx, tx, "paid-author@test.dev")
	buyer := testutil.SeedUser(t, ctx, tx, "paid-buyer@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, author.ID)

	steps := snapshotSteps(t, []planning.StepInput{{Title: "Paid step", Order: 1}})
	snapshot := testutil.SeedSnapshot(t, ctx, tx, plan.ID, author.ID, false, 50, steps)

	_, err := svc.ForkSnapshot(ctx, buyer.ID, snapshot.ID)
	if !errors.Is(err, pkgerrors.ErrPurchaseRequired) {
		t.Fatalf("expected ErrPurchaseRequired, got %v", err)
	}

	// the failed fork wrote nothing
	plans, err := repos.NewPlanRepo(tx, testutil.Logger(t)).ListByUser(dbctx.WithTx(ctx, tx), buyer.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(plans) != 0 {
		t.Fatalf("failed fork created %d plans", len(plans))
	}

	// the author can always fork their own paid snapshot
	if _, err := svc.ForkSnapshot(ctx, author.ID, snapshot.ID); err != nil {
		t.Fatalf("author self-fork failed: %v", err)
	}
}

func TestMarketplacePurchaseThenFork(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newMarketplaceService(t, tx)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(tx, log)
	dbc := dbctx.WithTx(ctx, tx)

	author := testutil.SeedUser(t, ctx, tx, "sell-author@test.dev")
	buyer := testutil.SeedUser(t, ctx, tx, "sell-buyer@test.dev")
	if err := userRepo.AddCredits(dbc, buyer.ID, 100); err != nil {
		t.Fatalf("AddCredits failed: %v", err)
	}
	plan := testutil.SeedPlan(t, ctx, tx, author.ID)
	steps := snapshotSteps(t, []planning.StepInput{{Title: "Step", Order: 1}})
	snapshot := testutil.SeedSnapshot(t, ctx, tx, plan.ID, author.ID, false, 40, steps)

	purchase, err := svc.PurchaseSnapshot(ctx, buyer.ID, snapshot.ID)
	if err != nil {
		t.Fatalf("PurchaseSnapshot failed: %v", err)
	}
	if purchase.PriceCredits != 40 {
		t.Fatalf("expected price 40, got %d", purchase.PriceCredits)
	}

	gotBuyer, err := userRepo.GetByID(dbc, buyer.ID)
	if err != nil {
		t.Fatalf("GetByID buyer failed: %v", err)
	}
	if gotBuyer.Credits != 60 {
		t.Fatalf("expected buyer credits 60, got %d", gotBuyer.Credits)
	}
	gotAuthor, err := userRepo.GetByID(dbc, author.ID)
	if err != nil {
		t.Fatalf("GetByID author failed: %v", err)
	}
	if gotAuthor.Credits != 40 {
		t.Fatalf("expected author credits 40, got %d", gotAuthor.Credits)
	}

	if _, err := svc.ForkSnapshot(ctx, buyer.ID, snapshot.ID); err != nil {
		t.Fatalf("fork after purchase failed: %v", err)
	}

	if _, err := svc.PurchaseSnapshot(ctx, buyer.ID, snapshot.ID); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected double purchase to fail, got %v", err)
	}
}

func TestMarketplacePurchaseValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newMarketplaceService(t, tx)
	author := testutil.SeedUser(t, ctx, tx, "val-author@test.dev")
	broke := testutil.SeedUser(t, ctx, tx, "val-broke@test.dev")
	plan := testutil.SeedPlan(t, ctx, tx, author.ID)

	free := testutil.SeedSnapshot(t, ctx, tx, plan.ID, author.ID, true, 0, nil)
	if _, err := svc.PurchaseSnapshot(ctx, broke.ID, free.ID); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected free purchase to be rejected, got %v", err)
	}

	paid := testutil.SeedSnapshot(t, ctx, tx, plan.ID, author.ID, false, 500, nil)
	if _, err := svc.PurchaseSnapshot(ctx, broke.ID, paid.ID); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected insufficient credits to be rejected, got %v", err)
	}
	if _, err := svc.PurchaseSnapshot(ctx, author.ID, paid.ID); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("expected self purchase to be rejected, got %v", err)
	}
}
