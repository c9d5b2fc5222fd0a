package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/planloop/planloop-backend/internal/domain/planning"
	"github.com/planloop/planloop-backend/internal/http/response"
	"github.com/planloop/planloop-backend/internal/pkg/ctxutil"
	"github.com/planloop/planloop-backend/internal/services"
)

type PlanHandler struct {
	planService services.PlanService
}

func NewPlanHandler(planService services.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// POST /plans
// body: { "title": "...", "steps": [{ "title": "...", "order": 1 }, ...] }
func (ph *PlanHandler) Create(c *gin.Context) {
	var req struct {
		Title         string               `json:"title"`
		Description   string               `json:"description"`
		Difficulty    string               `json:"difficulty"`
		EstimatedDays *int                 `json:"estimated_days"`
		StartDate     *time.Time           `json:"start_date"`
		Status        string               `json:"status"`
		Steps         []planning.StepInput `json:"steps"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	plan, err := ph.planService.CreateWithSteps(c.Request.Context(), ctxutil.UserID(c.Request.Context()), services.CreatePlanInput{
		Title:         req.Title,
		Description:   req.Description,
		Difficulty:    req.Difficulty,
		EstimatedDays: req.EstimatedDays,
		StartDate:     req.StartDate,
		Status:        req.Status,
		Steps:         req.Steps,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"plan": plan})
}

// GET /plans
func (ph *PlanHandler) List(c *gin.Context) {
	plans, err := ph.planService.ListPlans(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plans": plans})
}

// GET /plans/:plan_id
func (ph *PlanHandler) Get(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	detail, err := ph.planService.GetPlanDetail(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, detail)
}

// PATCH /plans/:plan_id
func (ph *PlanHandler) Update(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ph.planService.UpdatePlan(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, updates); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /plans/:plan_id
func (ph *PlanHandler) Delete(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	if err := ph.planService.DeletePlan(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /plans/:plan_id/todos
// Replaces the plan's pending todos with a new step list. Completed
// todos survive.
func (ph *PlanHandler) ReplaceTodos(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req struct {
		Steps    []planning.StepInput `json:"steps"`
		Rebucket bool                 `json:"rebucket"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	err = ph.planService.ReplacePendingSteps(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, req.Steps, services.MutateOptions{Rebucket: req.Rebucket})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /plans/:plan_id/todos
func (ph *PlanHandler) AppendTodos(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req struct {
		Steps    []planning.StepInput `json:"steps"`
		Rebucket bool                 `json:"rebucket"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	err = ph.planService.AppendSteps(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, req.Steps, services.MutateOptions{Rebucket: req.Rebucket})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /plans/:plan_id/shift
// body: { "days": 7, "all_statuses": false }
// The Idempotency-Key header dedupes redeliveries.
func (ph *PlanHandler) ShiftDates(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req struct {
		Days        int  `json:"days"`
		AllStatuses bool `json:"all_statuses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	shifted, err := ph.planService.ShiftByDays(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, req.Days, services.ShiftOptions{
		AllStatuses:    req.AllStatuses,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"shifted": shifted})
}

// POST /plans/:plan_id/shift-from
// body: { "todo_id": "...", "shift_by": 2 }
func (ph *PlanHandler) ShiftFromTodo(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req struct {
		TodoID  uuid.UUID `json:"todo_id"`
		ShiftBy int       `json:"shift_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	err = ph.planService.ShiftFromPivot(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, req.TodoID, req.ShiftBy, services.ShiftOptions{
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /plans/:plan_id/events?limit=50
func (ph *PlanHandler) ListEvents(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	events, err := ph.planService.ListEvents(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}

// GET /plans/:plan_id/todos?status=pending,completed
func (ph *PlanHandler) ListTodos(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var statuses []string
	if raw := c.Query("status"); raw != "" {
		statuses = splitCSV(raw)
	}
	todos, err := ph.planService.ListTodos(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, statuses)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"todos": todos})
}
