package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/planloop/planloop-backend/internal/domain"
	"github.com/planloop/planloop-backend/internal/domain/planning"
	"github.com/planloop/planloop-backend/internal/data/repos"
	"github.com/planloop/planloop-backend/internal/pkg/dbctx"
	pkgerrors "github.com/planloop/planloop-backend/internal/pkg/errors"
	"github.com/planloop/planloop-backend/internal/platform/logger"
	"github.com/planloop/planloop-backend/internal/scheduler"
)

// CreatePlanInput is the payload shared by the direct endpoint and the
// AI tool dispatcher.
type CreatePlanInput struct {
	Title         string
	Description   string
	Difficulty    string
	EstimatedDays *int
	StartDate     *time.Time
	Status        string
	Steps         []planning.StepInput
}

// MutateOptions controls replace/append date defaulting. The source
// system defaulted new rows to "now" instead of re-running bucketing;
// that behavior is kept as the default and Rebucket opts into
// recomputing dates against the plan's start date. Rebucketing dates
// only the incoming rows: surviving todos contribute their orders to
// the ranking but keep their stored due dates.
type MutateOptions struct {
	Rebucket bool
}

// ShiftOptions carries the optional idempotency key for bulk shifts
// arriving over at-least-once delivery. Bulk shifts move pending todos
// only; AllStatuses opts into moving completed rows as well.
type ShiftOptions struct {
	AllStatuses    bool
	IdempotencyKey string
}

type PlanDetail struct {
	Plan      *types.Plan                  `json:"plan"`
	Todos     []*types.Todo                `json:"todos"`
	Purchases []*types.PlanPurchase        `json:"purchases,omitempty"`
	Snapshots []*types.MarketplaceSnapshot `json:"snapshots,omitempty"`
}

type PlanService interface {
	CreateWithSteps(ctx context.Context, userID uuid.UUID, in CreatePlanInput) (*types.Plan, error)
	ReplacePendingSteps(ctx context.Context, userID, planID uuid.UUID, steps []planning.StepInput, opts MutateOptions) error
	AppendSteps(ctx context.Context, userID, planID uuid.UUID, steps []planning.StepInput, opts MutateOptions) error
	ShiftByDays(ctx context.Context, userID, planID uuid.UUID, days int, opts ShiftOptions) (int64, error)
	ShiftFromPivot(ctx context.Context, userID, planID, pivotTodoID uuid.UUID, shiftBy int, opts ShiftOptions) error

	ListPlans(ctx context.Context, userID uuid.UUID) ([]*types.Plan, error)
	GetPlanDetail(ctx context.Context, userID, planID uuid.UUID) (*PlanDetail, error)
	UpdatePlan(ctx context.Context, userID, planID uuid.UUID, updates map[string]interface{}) error
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error

	ListTodos(ctx context.Context, userID, planID uuid.UUID, statuses []string) ([]*types.Todo, error)
	ListEvents(ctx context.Context, userID, planID uuid.UUID, limit int) ([]*types.PlanEvent, error)
	UpdateTodo(ctx context.Context, userID, todoID uuid.UUID, updates map[string]interface{}) error
	DeleteTodo(ctx context.Context, userID, todoID uuid.UUID) error
}

type planService struct {
	db           *gorm.DB
	log          *logger.Logger
	planRepo     repos.PlanRepo
	todoRepo     repos.TodoRepo
	purchaseRepo repos.PurchaseRepo
	snapshotRepo repos.SnapshotRepo
	eventRepo    repos.PlanEventRepo
	idem         IdempotencyService
}

func NewPlanService(
	db *gorm.DB,
	log *logger.Logger,
	planRepo repos.PlanRepo,
	todoRepo repos.TodoRepo,
	purchaseRepo repos.PurchaseRepo,
	snapshotRepo repos.SnapshotRepo,
	eventRepo repos.PlanEventRepo,
	idem IdempotencyService,
) PlanService {
	return &planService{
		db:           db,
		log:          log.With("service", "PlanService"),
		planRepo:     planRepo,
		todoRepo:     todoRepo,
		purchaseRepo: purchaseRepo,
		snapshotRepo: snapshotRepo,
		eventRepo:    eventRepo,
		idem:         idem,
	}
}

// authorizePlan loads the plan and verifies ownership. Every mutating
// operation goes through here before touching rows.
func (s *planService) authorizePlan(dbc dbctx.Context, planID, userID uuid.UUID) (*types.Plan, error) {
	plan, err := s.planRepo.GetByID(dbc, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s: %w", planID, pkgerrors.ErrNotFound)
	}
	if plan.UserID != userID {
		return nil, fmt.Errorf("plan %s: %w", planID, pkgerrors.ErrUnauthorized)
	}
	return plan, nil
}

// buildTodoRows materializes step descriptors into todo rows. dueByOrder
// may be nil, in which case fallback is used for every row.
func buildTodoRows(planID uuid.UUID, steps []planning.StepInput, dueByOrder map[int]time.Time, fallback time.Time) []*types.Todo {
	rows := make([]*types.Todo, 0, len(steps))
	for _, st := range steps {
		due := fallback
		if dueByOrder != nil {
			if d, ok := dueByOrder[st.Order]; ok {
				due = d
			}
		}
		dueCopy := due
		priority := st.Priority
		if priority == "" {
			priority = types.PriorityMedium
		}
		var resources datatypes.JSON
		if len(st.Resources) > 0 {
			if raw, err := json.Marshal(st.Resources); err == nil {
				resources = datatypes.JSON(raw)
			}
		}
		rows = append(rows, &types.Todo{
			ID:               uuid.New(),
			PlanID:           planID,
			Title:            st.Title,
			Description:      st.Description,
			DayOrder:         st.Order,
			Priority:         priority,
			Status:           types.TodoStatusPending,
			DueDate:          &dueCopy,
			EstimatedMinutes: st.EstimatedMinutes,
			Resources:        resources,
		})
	}
	return rows
}

func (s *planService) CreateWithSteps(ctx context.Context, userID uuid.UUID, in CreatePlanInput) (*types.Plan, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", pkgerrors.ErrInvalidArgument)
	}
	if err := planning.ValidateSteps(in.Steps); err != nil {
		return nil, fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = types.DifficultyMedium
	}
	status := in.Status
	if status == "" {
		status = types.PlanStatusDraft
	}

	plan := &types.Plan{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         in.Title,
		Description:   in.Description,
		Difficulty:    difficulty,
		EstimatedDays: in.EstimatedDays,
		Status:        status,
		StartDate:     in.StartDate,
	}

	orders := stepOrders(in.Steps)
	dueByOrder := scheduler.DueDates(start, orders)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := s.planRepo.Create(dbc, []*types.Plan{plan}); err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		rows := buildTodoRows(plan.ID, in.Steps, dueByOrder, scheduler.DayStart(start))
		if _, err := s.todoRepo.Create(dbc, rows); err != nil {
			return fmt.Errorf("create todos: %w", err)
		}
		return s.recordEvent(dbc, plan.ID, userID, types.EventPlanCreated, map[string]interface{}{
			"step_count": len(rows),
			"day_count":  scheduler.DayCount(orders),
		}, "")
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) ReplacePendingSteps(ctx context.Context, userID, planID uuid.UUID, steps []planning.StepInput, opts MutateOptions) error {
	if err := planning.ValidateSteps(steps); err != nil {
		return fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument)
	}
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		plan, err := s.authorizePlan(dbc, planID, userID)
		if err != nil {
			return err
		}
		if err := s.todoRepo.FullDeleteByPlanAndStatus(dbc, planID, []string{types.TodoStatusPending}); err != nil {
			return fmt.Errorf("delete pending todos: %w", err)
		}

		var dueByOrder map[int]time.Time
		if opts.Rebucket {
			// Re-bucket against the plan's start date, keeping surviving
			// completed todos in the order space so new slots rank
			// consistently with them.
			survivors, err := s.todoRepo.ListByPlan(dbc, planID, nil)
			if err != nil {
				return fmt.Errorf("load surviving todos: %w", err)
			}
			orders := stepOrders(steps)
			for _, t := range survivors {
				orders = append(orders, t.DayOrder)
			}
			dueByOrder = scheduler.DueDates(plan.EffectiveStart(), orders)
		}

		rows := buildTodoRows(planID, steps, dueByOrder, now)
		if _, err := s.todoRepo.Create(dbc, rows); err != nil {
			return fmt.Errorf("insert todos: %w", err)
		}
		return s.recordEvent(dbc, planID, userID, types.EventTodosReplaced, map[string]interface{}{
			"step_count": len(rows),
			"rebucket":   opts.Rebucket,
		}, "")
	})
}

func (s *planService) AppendSteps(ctx context.Context, userID, planID uuid.UUID, steps []planning.StepInput, opts MutateOptions) error {
	if len(steps) == 0 {
		return nil
	}
	if err := planning.ValidateSteps(steps); err != nil {
		return fmt.Errorf("%v: %w", err, pkgerrors.ErrInvalidArgument)
	}
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		plan, err := s.authorizePlan(dbc, planID, userID)
		if err != nil {
			return err
		}

		var dueByOrder map[int]time.Time
		if opts.Rebucket {
			existing, err := s.todoRepo.ListByPlan(dbc, planID, nil)
			if err != nil {
				return fmt.Errorf("load existing todos: %w", err)
			}
			orders := stepOrders(steps)
			for _, t := range existing {
				orders = append(orders, t.DayOrder)
			}
			dueByOrder = scheduler.DueDates(plan.EffectiveStart(), orders)
		}

		rows := buildTodoRows(planID, steps, dueByOrder, now)
		if _, err := s.todoRepo.Create(dbc, rows); err != nil {
			return fmt.Errorf("insert todos: %w", err)
		}
		return s.recordEvent(dbc, planID, userID, types.EventTodosAppended, map[string]interface{}{
			"step_count": len(rows),
			"rebucket":   opts.Rebucket,
		}, "")
	})
}

func (s *planService) ShiftByDays(ctx context.Context, userID, planID uuid.UUID, days int, opts ShiftOptions) (int64, error) {
	if days == 0 {
		return 0, nil
	}
	if ok, err := s.idem.Reserve(ctx, opts.IdempotencyKey, 0); err != nil {
		return 0, err
	} else if !ok {
		s.log.Info("shift already applied, skipping", "plan_id", planID)
		return 0, nil
	}

	statuses := []string{types.TodoStatusPending}
	if opts.AllStatuses {
		statuses = nil
	}

	var shifted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := s.authorizePlan(dbc, planID, userID); err != nil {
			return err
		}
		if applied, err := s.alreadyApplied(dbc, opts.IdempotencyKey); err != nil {
			return err
		} else if applied {
			return nil
		}
		n, err := s.todoRepo.ShiftDueDates(dbc, planID, days, statuses)
		if err != nil {
			return fmt.Errorf("shift due dates: %w", err)
		}
		shifted = n
		return s.recordEvent(dbc, planID, userID, types.EventDatesShifted, map[string]interface{}{
			"days":         days,
			"all_statuses": opts.AllStatuses,
			"rows":         n,
		}, opts.IdempotencyKey)
	})
	if err != nil {
		if opts.IdempotencyKey != "" {
			_ = s.idem.Release(ctx, opts.IdempotencyKey)
		}
		return 0, err
	}
	return shifted, nil
}

func (s *planService) ShiftFromPivot(ctx context.Context, userID, planID, pivotTodoID uuid.UUID, shiftBy int, opts ShiftOptions) error {
	if shiftBy == 0 {
		return nil
	}
	if ok, err := s.idem.Reserve(ctx, opts.IdempotencyKey, 0); err != nil {
		return err
	} else if !ok {
		s.log.Info("pivot shift already applied, skipping", "plan_id", planID)
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := s.authorizePlan(dbc, planID, userID); err != nil {
			return err
		}
		if applied, err := s.alreadyApplied(dbc, opts.IdempotencyKey); err != nil {
			return err
		} else if applied {
			return nil
		}

		todos, err := s.todoRepo.ListByPlan(dbc, planID, nil)
		if err != nil {
			return fmt.Errorf("load todos: %w", err)
		}
		pivot := -1
		for i, t := range todos {
			if t.ID == pivotTodoID {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			return fmt.Errorf("todo %s: %w", pivotTodoID, pkgerrors.ErrNotFound)
		}

		// Structural reorder: day_order moves, due-dates do not. The
		// next bucketing pass resolves the new slots into dates.
		ids := make([]uuid.UUID, 0, len(todos)-pivot)
		for _, t := range todos[pivot:] {
			ids = append(ids, t.ID)
		}
		if err := s.todoRepo.ShiftDayOrders(dbc, ids, shiftBy); err != nil {
			return fmt.Errorf("shift day orders: %w", err)
		}
		return s.recordEvent(dbc, planID, userID, types.EventOrdersShifted, map[string]interface{}{
			"pivot_todo_id": pivotTodoID,
			"shift_by":      shiftBy,
			"rows":          len(ids),
		}, opts.IdempotencyKey)
	})
	if err != nil && opts.IdempotencyKey != "" {
		_ = s.idem.Release(ctx, opts.IdempotencyKey)
	}
	return err
}

func (s *planService) ListPlans(ctx context.Context, userID uuid.UUID) ([]*types.Plan, error) {
	return s.planRepo.ListByUser(dbctx.New(ctx), userID)
}

func (s *planService) GetPlanDetail(ctx context.Context, userID, planID uuid.UUID) (*PlanDetail, error) {
	plan, err := s.authorizePlan(dbctx.New(ctx), planID, userID)
	if err != nil {
		return nil, err
	}

	detail := &PlanDetail{Plan: plan}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		todos, err := s.todoRepo.ListByPlan(dbctx.New(gctx), planID, nil)
		if err != nil {
			return err
		}
		detail.Todos = todos
		return nil
	})
	g.Go(func() error {
		purchases, err := s.purchaseRepo.ListByBuyer(dbctx.New(gctx), userID)
		if err != nil {
			return err
		}
		detail.Purchases = purchases
		return nil
	})
	g.Go(func() error {
		snapshots, err := s.snapshotRepo.ListByAuthor(dbctx.New(gctx), userID)
		if err != nil {
			return err
		}
		detail.Snapshots = snapshots
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return detail, nil
}

var planUpdatableFields = map[string]bool{
	"title":          true,
	"description":    true,
	"difficulty":     true,
	"estimated_days": true,
	"status":         true,
	"start_date":     true,
}

func (s *planService) UpdatePlan(ctx context.Context, userID, planID uuid.UUID, updates map[string]interface{}) error {
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if planUpdatableFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("no updatable fields: %w", pkgerrors.ErrInvalidArgument)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := s.authorizePlan(dbc, planID, userID); err != nil {
			return err
		}
		return s.planRepo.UpdateFields(dbc, planID, filtered)
	})
}

func (s *planService) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		if _, err := s.authorizePlan(dbc, planID, userID); err != nil {
			return err
		}
		// Cascade: todos go with the plan.
		if err := s.todoRepo.FullDeleteByPlanIDs(dbc, []uuid.UUID{planID}); err != nil {
			return fmt.Errorf("delete todos: %w", err)
		}
		if err := s.planRepo.FullDeleteByIDs(dbc, []uuid.UUID{planID}); err != nil {
			return fmt.Errorf("delete plan: %w", err)
		}
		return s.recordEvent(dbc, planID, userID, types.EventPlanDeleted, nil, "")
	})
}

func (s *planService) ListTodos(ctx context.Context, userID, planID uuid.UUID, statuses []string) ([]*types.Todo, error) {
	dbc := dbctx.New(ctx)
	if _, err := s.authorizePlan(dbc, planID, userID); err != nil {
		return nil, err
	}
	return s.todoRepo.ListByPlan(dbc, planID, statuses)
}

func (s *planService) ListEvents(ctx context.Context, userID, planID uuid.UUID, limit int) ([]*types.PlanEvent, error) {
	dbc := dbctx.New(ctx)
	if _, err := s.authorizePlan(dbc, planID, userID); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByPlan(dbc, planID, limit)
}

var todoUpdatableFields = map[string]bool{
	"title":             true,
	"description":       true,
	"priority":          true,
	"status":            true,
	"due_date":          true,
	"day_order":         true,
	"estimated_minutes": true,
	"resources":         true,
}

func (s *planService) UpdateTodo(ctx context.Context, userID, todoID uuid.UUID, updates map[string]interface{}) error {
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if todoUpdatableFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("no updatable fields: %w", pkgerrors.ErrInvalidArgument)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		todo, err := s.todoRepo.GetByID(dbc, todoID)
		if err != nil {
			return fmt.Errorf("load todo: %w", err)
		}
		if todo == nil {
			return fmt.Errorf("todo %s: %w", todoID, pkgerrors.ErrNotFound)
		}
		if _, err := s.authorizePlan(dbc, todo.PlanID, userID); err != nil {
			return err
		}
		if status, ok := filtered["status"].(string); ok {
			if status == types.TodoStatusCompleted && todo.Status != types.TodoStatusCompleted {
				filtered["completed_at"] = time.Now().UTC()
			}
			if status != types.TodoStatusCompleted {
				filtered["completed_at"] = nil
			}
		}
		return s.todoRepo.UpdateFields(dbc, todoID, filtered)
	})
}

func (s *planService) DeleteTodo(ctx context.Context, userID, todoID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		todo, err := s.todoRepo.GetByID(dbc, todoID)
		if err != nil {
			return fmt.Errorf("load todo: %w", err)
		}
		if todo == nil {
			return fmt.Errorf("todo %s: %w", todoID, pkgerrors.ErrNotFound)
		}
		if _, err := s.authorizePlan(dbc, todo.PlanID, userID); err != nil {
			return err
		}
		return s.todoRepo.FullDeleteByIDs(dbc, []uuid.UUID{todoID})
	})
}

func (s *planService) alreadyApplied(dbc dbctx.Context, idempotencyKey string) (bool, error) {
	if idempotencyKey == "" {
		return false, nil
	}
	return s.eventRepo.ExistsKey(dbc, idempotencyKey)
}

func (s *planService) recordEvent(dbc dbctx.Context, planID, userID uuid.UUID, eventType string, payload map[string]interface{}, idempotencyKey string) error {
	ev := &types.PlanEvent{
		ID:     uuid.New(),
		PlanID: planID,
		UserID: userID,
		Type:   eventType,
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = datatypes.JSON(raw)
		}
	}
	if idempotencyKey != "" {
		key := idempotencyKey
		ev.IdempotencyKey = &key
	}
	if _, err := s.eventRepo.Create(dbc, []*types.PlanEvent{ev}); err != nil {
		return fmt.Errorf("record %s event: %w", eventType, err)
	}
	return nil
}

func stepOrders(steps []planning.StepInput) []int {
	orders := make([]int, 0, len(steps))
	for _, st := range steps {
		orders = append(orders, st.Order)
	}
	return orders
}
