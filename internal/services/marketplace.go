package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
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

type MarketplaceService interface {
	// PublishSnapshot freezes the plan's current content into an
	// immutable snapshot other users can fork.
	PublishSnapshot(ctx context.Context, userID, planID uuid.UUID, priceCredits int, free bool) (*types.MarketplaceSnapshot, error)

	// ForkSnapshot creates a new plan for newOwner from a snapshot,
	// re-bucketing the snapshot's steps relative to "now". Paid
	// snapshots require a recorded purchase unless the forker is the
	// author.
	ForkSnapshot(ctx context.Context, newOwnerID, snapshotID uuid.UUID) (*types.Plan, error)

	// PurchaseSnapshot debits the buyer, credits the author, and
	// records the purchase the fork gate reads.
	PurchaseSnapshot(ctx context.Context, buyerID, snapshotID uuid.UUID) (*types.PlanPurchase, error)
}

type marketplaceService struct {
	db           *gorm.DB
	log          *logger.Logger
	planRepo     repos.PlanRepo
	todoRepo     repos.TodoRepo
	snapshotRepo repos.SnapshotRepo
	purchaseRepo repos.PurchaseRepo
	eventRepo    repos.PlanEventRepo
	userRepo     repos.UserRepo
}

func NewMarketplaceService(
	db *gorm.DB,
	log *logger.Logger,
	planRepo repos.PlanRepo,
	todoRepo repos.TodoRepo,
	snapshotRepo repos.SnapshotRepo,
	purchaseRepo repos.PurchaseRepo,
	eventRepo repos.PlanEventRepo,
	userRepo repos.UserRepo,
) MarketplaceService {
	return &marketplaceService{
		db:           db,
		log:          log.With("service", "MarketplaceService"),
		planRepo:     planRepo,
		todoRepo:     todoRepo,
		snapshotRepo: snapshotRepo,
		purchaseRepo: purchaseRepo,
		eventRepo:    eventRepo,
		userRepo:     userRepo,
	}
}

func (s *marketplaceService) PublishSnapshot(ctx context.Context, userID, planID uuid.UUID, priceCredits int, free bool) (*types.MarketplaceSnapshot, error) {
	if priceCredits < 0 {
		return nil, fmt.Errorf("price must be non-negative: %w", pkgerrors.ErrInvalidArgument)
	}

	var snapshot *types.MarketplaceSnapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		plan, err := s.planRepo.GetByID(dbc, planID)
		if err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		if plan == nil {
			return fmt.Errorf("plan %s: %w", planID, pkgerrors.ErrNotFound)
		}
		if plan.UserID != userID {
			return fmt.Errorf("plan %s: %w", planID, pkgerrors.ErrUnauthorized)
		}

		todos, err := s.todoRepo.ListByPlan(dbc, planID, nil)
		if err != nil {
			return fmt.Errorf("load todos: %w", err)
		}
		steps := make([]planning.StepInput, 0, len(todos))
		for _, t := range todos {
			var resources []string
			if len(t.Resources) > 0 {
				_ = json.Unmarshal(t.Resources, &resources)
			}
			steps = append(steps, planning.StepInput{
				Title:            t.Title,
				Description:      t.Description,
				Order:            t.DayOrder,
				Priority:         t.Priority,
				EstimatedMinutes: t.EstimatedMinutes,
				Resources:        resources,
			})
		}
		raw, err := json.Marshal(steps)
		if err != nil {
			return fmt.Errorf("serialize steps: %w", err)
		}

		snapshot = &types.MarketplaceSnapshot{
			ID:            uuid.New(),
			PlanID:        plan.ID,
			AuthorID:      userID,
			Title:         plan.Title,
			Description:   plan.Description,
			Difficulty:    plan.Difficulty,
			EstimatedDays: plan.EstimatedDays,
			PriceCredits:  priceCredits,
			Free:          free || priceCredits == 0,
			Steps:         datatypes.JSON(raw),
		}
		if _, err := s.snapshotRepo.Create(dbc, []*types.MarketplaceSnapshot{snapshot}); err != nil {
			return fmt.Errorf("create snapshot: %w", err)
		}

		ev := &types.PlanEvent{
			ID:     uuid.New(),
			PlanID: plan.ID,
			UserID: userID,
			Type:   types.EventSnapshotPublished,
		}
		if payload, err := json.Marshal(map[string]interface{}{"snapshot_id": snapshot.ID, "price": priceCredits}); err == nil {
			ev.Payload = datatypes.JSON(payload)
		}
		_, err = s.eventRepo.Create(dbc, []*types.PlanEvent{ev})
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *marketplaceService) ForkSnapshot(ctx context.Context, newOwnerID, snapshotID uuid.UUID) (*types.Plan, error) {
	if newOwnerID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	var plan *types.Plan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		snapshot, err := s.snapshotRepo.GetByID(dbc, snapshotID)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if snapshot == nil {
			return fmt.Errorf("snapshot %s: %w", snapshotID, pkgerrors.ErrNotFound)
		}

		// Fork gate: free plans and the author always pass, everyone
		// else needs a recorded purchase. No writes happen on failure.
		if !snapshot.Free && snapshot.AuthorID != newOwnerID {
			purchased, err := s.purchaseRepo.Exists(dbc, snapshot.ID, newOwnerID)
			if err != nil {
				return fmt.Errorf("check purchase: %w", err)
			}
			if !purchased {
				return fmt.Errorf("snapshot %s: %w", snapshotID, pkgerrors.ErrPurchaseRequired)
			}
		}

		var steps []planning.StepInput
		if len(snapshot.Steps) > 0 {
			if err := json.Unmarshal(snapshot.Steps, &steps); err != nil {
				return fmt.Errorf("decode snapshot steps: %w", err)
			}
		}

		now := time.Now().UTC()
		sourceID := snapshot.ID
		plan = &types.Plan{
			ID:            uuid.New(),
			UserID:        newOwnerID,
			Title:         snapshot.Title,
			Description:   snapshot.Description,
			Difficulty:    snapshot.Difficulty,
			EstimatedDays: snapshot.EstimatedDays,
			Status:        types.PlanStatusActive,
			Forked:        true,
			ForkedFromID:  &sourceID,
		}
		if _, err := s.planRepo.Create(dbc, []*types.Plan{plan}); err != nil {
			return fmt.Errorf("create forked plan: %w", err)
		}

		// Same bucketing as direct creation: snapshots carry no dates,
		// so the fork moment is the start reference.
		dueByOrder := scheduler.DueDates(now, stepOrders(steps))
		rows := buildTodoRows(plan.ID, steps, dueByOrder, scheduler.DayStart(now))
		if _, err := s.todoRepo.Create(dbc, rows); err != nil {
			return fmt.Errorf("create forked todos: %w", err)
		}

		ev := &types.PlanEvent{
			ID:     uuid.New(),
			PlanID: plan.ID,
			UserID: newOwnerID,
			Type:   types.EventPlanForked,
		}
		if payload, err := json.Marshal(map[string]interface{}{"snapshot_id": snapshot.ID, "step_count": len(rows)}); err == nil {
			ev.Payload = datatypes.JSON(payload)
		}
		_, err = s.eventRepo.Create(dbc, []*types.PlanEvent{ev})
		return err
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *marketplaceService) PurchaseSnapshot(ctx context.Context, buyerID, snapshotID uuid.UUID) (*types.PlanPurchase, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	var purchase *types.PlanPurchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.WithTx(ctx, tx)
		snapshot, err := s.snapshotRepo.GetByID(dbc, snapshotID)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		if snapshot == nil {
			return fmt.Errorf("snapshot %s: %w", snapshotID, pkgerrors.ErrNotFound)
		}
		if snapshot.Free || snapshot.PriceCredits == 0 {
			return fmt.Errorf("snapshot is free: %w", pkgerrors.ErrInvalidArgument)
		}
		if snapshot.AuthorID == buyerID {
			return fmt.Errorf("cannot buy own snapshot: %w", pkgerrors.ErrInvalidArgument)
		}
		if exists, err := s.purchaseRepo.Exists(dbc, snapshotID, buyerID); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("already purchased: %w", pkgerrors.ErrInvalidArgument)
		}

		buyer, err := s.userRepo.GetByID(dbc, buyerID)
		if err != nil {
			return fmt.Errorf("load buyer: %w", err)
		}
		if buyer == nil {
			return fmt.Errorf("buyer %s: %w", buyerID, pkgerrors.ErrNotFound)
		}
		if buyer.Credits < snapshot.PriceCredits {
			return fmt.Errorf("insufficient credits: %w", pkgerrors.ErrInvalidArgument)
		}

		if err := s.userRepo.AddCredits(dbc, buyerID, -snapshot.PriceCredits); err != nil {
			return fmt.Errorf("debit buyer: %w", err)
		}
		if err := s.userRepo.AddCredits(dbc, snapshot.AuthorID, snapshot.PriceCredits); err != nil {
			return fmt.Errorf("credit author: %w", err)
		}

		purchase = &types.PlanPurchase{
			ID:           uuid.New(),
			SnapshotID:   snapshotID,
			BuyerID:      buyerID,
			PriceCredits: snapshot.PriceCredits,
		}
		_, err = s.purchaseRepo.Create(dbc, []*types.PlanPurchase{purchase})
		return err
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}
