// Package aitools translates structured tool calls produced by the chat
// model into plan mutations. The chat loop itself lives elsewhere; this
// package owns the registry, argument decoding, and the
// success/error envelope fed back to the model.
package aitools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planloop/planloop-backend/internal/domain/planning"
	"github.com/planloop/planloop-backend/internal/pkg/ctxutil"
	"github.com/planloop/planloop-backend/internal/platform/envutil"
	"github.com/planloop/planloop-backend/internal/platform/logger"
	"github.com/planloop/planloop-backend/internal/services"
)

const (
	ToolCreatePlan    = "create_plan"
	ToolReplaceTodos  = "replace_plan_todos"
	ToolAppendTodos   = "append_plan_todos"
	ToolShiftDates    = "shift_plan_dates"
	ToolShiftFromTodo = "shift_from_todo"
	ToolForkPlan      = "fork_marketplace_plan"
)

// ToolCall is one structured function call extracted from a model
// response.
type ToolCall struct {
	ToolName string          `json:"tool_name"`
	Args     json.RawMessage `json:"args"`
}

// ToolResult is the envelope reported back to the model so it can retry
// or narrate the outcome.
type ToolResult struct {
	ToolName string         `json:"tool_name"`
	Success  bool           `json:"success"`
	Error    string         `json:"error,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type toolSpec struct {
	ToolName string
	Requires []string
	run      func(d *Dispatcher, ctx context.Context, userID uuid.UUID, args json.RawMessage) (map[string]any, error)
}

type Dispatcher struct {
	log         *logger.Logger
	plans       services.PlanService
	marketplace services.MarketplaceService
	registry    map[string]toolSpec
	maxCalls    int
}

func NewDispatcher(log *logger.Logger, plans services.PlanService, marketplace services.MarketplaceService) *Dispatcher {
	d := &Dispatcher{
		log:         log.With("service", "ToolDispatcher"),
		plans:       plans,
		marketplace: marketplace,
		maxCalls:    envutil.Int("CHAT_TOOL_MAX_CALLS", 4),
	}
	d.registry = map[string]toolSpec{
		ToolCreatePlan:    {ToolName: ToolCreatePlan, Requires: []string{"title", "steps"}, run: runCreatePlan},
		ToolReplaceTodos:  {ToolName: ToolReplaceTodos, Requires: []string{"plan_id", "steps"}, run: runReplaceTodos},
		ToolAppendTodos:   {ToolName: ToolAppendTodos, Requires: []string{"plan_id", "steps"}, run: runAppendTodos},
		ToolShiftDates:    {ToolName: ToolShiftDates, Requires: []string{"plan_id", "days"}, run: runShiftDates},
		ToolShiftFromTodo: {ToolName: ToolShiftFromTodo, Requires: []string{"plan_id", "todo_id", "shift_by"}, run: runShiftFromTodo},
		ToolForkPlan:      {ToolName: ToolForkPlan, Requires: []string{"snapshot_id"}, run: runForkPlan},
	}
	return d
}

// Execute runs the calls in order up to the configured cap. Failures
// never abort the batch: each call reports its own envelope.
func (d *Dispatcher) Execute(ctx context.Context, calls []ToolCall) []ToolResult {
	userID := ctxutil.UserID(ctx)
	results := make([]ToolResult, 0, len(calls))
	for i, call := range calls {
		if i >= d.maxCalls {
			results = append(results, ToolResult{ToolName: call.ToolName, Success: false, Error: "max tool calls exceeded"})
			continue
		}
		results = append(results, d.executeOne(ctx, userID, call))
	}
	return results
}

func (d *Dispatcher) executeOne(ctx context.Context, userID uuid.UUID, call ToolCall) ToolResult {
	spec, ok := d.registry[call.ToolName]
	if !ok {
		return ToolResult{ToolName: call.ToolName, Success: false, Error: fmt.Sprintf("unknown tool %q", call.ToolName)}
	}
	if missing := missingArgs(call.Args, spec.Requires); len(missing) > 0 {
		return ToolResult{ToolName: call.ToolName, Success: false, Error: fmt.Sprintf("missing args: %v", missing)}
	}
	data, err := spec.run(d, ctx, userID, call.Args)
	if err != nil {
		d.log.Warn("tool call failed", "tool", call.ToolName, "error", err)
		return ToolResult{ToolName: call.ToolName, Success: false, Error: err.Error()}
	}
	return ToolResult{ToolName: call.ToolName, Success: true, Data: data}
}

func missingArgs(raw json.RawMessage, required []string) []string {
	present := map[string]json.RawMessage{}
	_ = json.Unmarshal(raw, &present)
	var missing []string
	for _, key := range required {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

type createPlanArgs struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Difficulty    string               `json:"difficulty"`
	EstimatedDays *int                 `json:"estimated_days"`
	StartDate     *time.Time           `json:"start_date"`
	Steps         []planning.StepInput `json:"steps"`
}

func runCreatePlan(d *Dispatcher, ctx context.Context, userID uuid.UUID, raw json.RawMessage) (map[string]any, error) {
	var args createPlanArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	plan, err := d.plans.CreateWithSteps(ctx, userID, services.CreatePlanInput{
		Title:         args.Title,
		Description:   args.Description,
		Difficulty:    args.Difficulty,
		EstimatedDays: args.EstimatedDays,
		StartDate:     args.StartDate,
		Steps:         args.Steps,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"plan_id": plan.ID, "step_count": len(args.Steps)}, nil
}

type stepsArgs struct {
	PlanID   uuid.UUID            `json:"plan_id"`
	Steps    []planning.StepInput `json:"steps"`
	Rebucket bool                 `json:"rebucket"`
}

func runReplaceTodos(d *Dispatcher, ctx context.Context, userID uuid.UUID, raw json.RawMessage) (map[string]any, error) {
	var args stepsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	if err := d.plans.ReplacePendingSteps(ctx, userID, args.PlanID, args.Steps, services.MutateOptions{Rebucket: args.Rebucket}); err != nil {
		return nil, err
	}
	return map[string]any{"plan_id": args.PlanID, "step_count": len(args.Steps)}, nil
}

func runAppendTodos(d *Dispatcher, ctx context.Context, userID uuid.UUID, raw json.RawMessage) (map[string]any, error) {
	var args stepsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	if err := d.plans.AppendSteps(ctx, userID, args.PlanID, args.Steps, services.MutateOptions{Rebucket: args.Rebucket}); err != nil {
		return nil, err
	}
	return map[string]any{"plan_id": args.PlanID, "step_count": len(args.Steps)}, nil
}

type shiftDatesArgs struct {
	PlanID         uuid.UUID `json:"plan_id"`
	Days           int       `json:"days"`
	AllStatuses    bool      `json:"all_statuses"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func runShiftDates(d *Dispatcher, ctx context.Context, userID uuid.UUID, raw json.RawMessage) (map[string]any, error) {
	var args shiftDatesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	n, err := d.plans.ShiftByDays(ctx, userID, args.PlanID, args.Days, services.ShiftOptions{
		AllStatuses:    args.AllStatuses,
		IdempotencyKey: args.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"plan_id": args.PlanID, "shifted": n}, nil
}

type shiftFromTodoArgs struct {
	PlanID         uuid.UUID `json:"plan_id"`
	TodoID         uuid.UUID `json:"todo_id"`
	ShiftBy        int       `json:"shift_by"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func runShiftFromTodo(d *Dispatcher, ctx context.Context, userID uuid.UUID, raw json.RawMessage) (map[string]any, error) {
	var args shiftFromTodoArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	if err := d.plans.ShiftFromPivot(ctx, userID, args.PlanID, args.TodoID, args.ShiftBy, services.ShiftOptions{
		IdempotencyKey: args.IdempotencyKey,
	}); err != nil {
		return nil, err
	}
	return map[string]any{"plan_id": args.PlanID, "todo_id": args.TodoID}, nil
}

type forkPlanArgs struct {
	SnapshotID uuid.UUID `json:"snapshot_id"`
}

func runForkPlan(d *Dispatcher, ctx context.Context, userID uuid.UUID, raw json.RawMessage) (map[string]any, error) {
	var args forkPlanArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode args: %w", err)
	}
	plan, err := d.marketplace.ForkSnapshot(ctx, userID, args.SnapshotID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"plan_id": plan.ID}, nil
}
