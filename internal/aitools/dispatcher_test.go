package aitools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/domain/planning"
	pkgerrors "github.com/planloop/planloop-backend/internal/pkg/errors"
	"github.com/planloop/planloop-backend/internal/platform/logger"
	"github.com/planloop/planloop-backend/internal/services"
)

type stubPlans struct {
	services.PlanService
	created  *services.CreatePlanInput
	replaced []planning.StepInput
	appended []planning.StepInput
	shiftErr error
	shifted  int
}

func (s *stubPlans) CreateWithSteps(ctx context.Context, userID uuid.UUID, in services.CreatePlanInput) (*types.Plan, error) {
	s.created = &in
	return &types.Plan{ID: uuid.New()}, nil
}

func (s *stubPlans) ReplacePendingSteps(ctx context.Context, userID, planID uuid.UUID, steps []planning.StepInput, opts services.MutateOptions) error {
	s.replaced = steps
	return nil
}

func (s *stubPlans) AppendSteps(ctx context.Context, userID, planID uuid.UUID, steps []planning.StepInput, opts services.MutateOptions) error {
	s.appended = steps
	return nil
}

func (s *stubPlans) ShiftByDays(ctx context.Context, userID, planID uuid.UUID, days int, opts services.ShiftOptions) (int64, error) {
	if s.shiftErr != nil {
		return 0, s.shiftErr
	}
	s.shifted = days
	return 3, nil
}

type stubMarketplace struct {
	services.MarketplaceService
	forkErr error
}

func (s *stubMarketplace) ForkSnapshot(ctx context.Context, newOwnerID, snapshotID uuid.UUID) (*types.Plan, error) {
	if s.forkErr != nil {
		return nil, s.forkErr
	}
	return &types.Plan{ID: uuid.New(), Forked: true}, nil
}

func newTestDispatcher(t *testing.T, plans *stubPlans, mkt *stubMarketplace) *Dispatcher {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewDispatcher(log, plans, mkt)
}

func TestDispatcherCreatePlan(t *testing.T) {
	plans := &stubPlans{}
	d := newTestDispatcher(t, plans, &stubMarketplace{})

	args, _ := json.Marshal(map[string]any{
		"title": "Learn Go",
		"steps": []map[string]any{
			{"title": "Read the tour", "order": 1},
			{"title": "Write a CLI", "order": 2},
		},
	})
	results := d.Execute(context.Background(), []ToolCall{{ToolName: ToolCreatePlan, Args: args}})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Success {
		t.Fatalf("expected success, got error %q", results[0].Error)
	}
	if plans.created == nil || len(plans.created.Steps) != 2 {
		t.Fatalf("expected 2 steps to reach the service, got %+v", plans.created)
	}
	if results[0].Data["step_count"] != 2 {
		t.Fatalf("expected step_count 2, got %v", results[0].Data["step_count"])
	}
}

func TestDispatcherUnknownTool(t *testing.T) {
	d := newTestDispatcher(t, &stubPlans{}, &stubMarketplace{})
	results := d.Execute(context.Background(), []ToolCall{{ToolName: "delete_everything", Args: json.RawMessage(`{}`)}})
	if results[0].Success {
		t.Fatal("expected failure for unknown tool")
	}
}

func TestDispatcherMissingArgs(t *testing.T) {
	d := newTestDispatcher(t, &stubPlans{}, &stubMarketplace{})
	results := d.Execute(context.Background(), []ToolCall{{ToolName: ToolShiftDates, Args: json.RawMessage(`{"plan_id":"` + uuid.NewString() + `"}`)}})
	if results[0].Success {
		t.Fatal("expected failure for missing days arg")
	}
	if results[0].Error == "" {
		t.Fatal("expected error message naming missing args")
	}
}

func TestDispatcherServiceErrorDoesNotAbortBatch(t *testing.T) {
	plans := &stubPlans{shiftErr: pkgerrors.ErrUnauthorized}
	d := newTestDispatcher(t, plans, &stubMarketplace{})

	shiftArgs, _ := json.Marshal(map[string]any{"plan_id": uuid.New(), "days": 2})
	appendArgs, _ := json.Marshal(map[string]any{
		"plan_id": uuid.New(),
		"steps":   []map[string]any{{"title": "Extra step", "order": 5}},
	})
	results := d.Execute(context.Background(), []ToolCall{
		{ToolName: ToolShiftDates, Args: shiftArgs},
		{ToolName: ToolAppendTodos, Args: appendArgs},
	})
	if results[0].Success {
		t.Fatal("expected shift to fail")
	}
	if !results[1].Success {
		t.Fatalf("expected append to still run, got %q", results[1].Error)
	}
	if len(plans.appended) != 1 {
		t.Fatalf("expected append to reach the service, got %d steps", len(plans.appended))
	}
}

func TestDispatcherMaxCallsCap(t *testing.T) {
	t.Setenv("CHAT_TOOL_MAX_CALLS", "1")
	plans := &stubPlans{}
	d := newTestDispatcher(t, plans, &stubMarketplace{})

	args, _ := json.Marshal(map[string]any{"plan_id": uuid.New(), "days": 1})
	results := d.Execute(context.Background(), []ToolCall{
		{ToolName: ToolShiftDates, Args: args},
		{ToolName: ToolShiftDates, Args: args},
	})
	if !results[0].Success {
		t.Fatalf("first call should run: %q", results[0].Error)
	}
	if results[1].Success {
		t.Fatal("second call should be rejected by the cap")
	}
}

func TestDispatcherForkPurchaseRequired(t *testing.T) {
	mkt := &stubMarketplace{forkErr: pkgerrors.ErrPurchaseRequired}
	d := newTestDispatcher(t, &stubPlans{}, mkt)

	args, _ := json.Marshal(map[string]any{"snapshot_id": uuid.New()})
	results := d.Execute(context.Background(), []ToolCall{{ToolName: ToolForkPlan, Args: args}})
	if results[0].Success {
		t.Fatal("expected fork to fail without a purchase")
	}
}
