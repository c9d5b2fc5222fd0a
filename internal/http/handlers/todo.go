package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/planloop/planloop-backend/internal/http/response"
	"github.com/planloop/planloop-backend/internal/pkg/ctxutil"
	"github.com/planloop/planloop-backend/internal/services"
)

type TodoHandler struct {
	planService services.PlanService
}

func NewTodoHandler(planService services.PlanService) *TodoHandler {
	return &TodoHandler{planService: planService}
}

// PATCH /todos/:todo_id
func (th *TodoHandler) Update(c *gin.Context) {
	todoID, err := uuid.Parse(c.Param("todo_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_todo_id", err)
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := th.planService.UpdateTodo(c.Request.Context(), ctxutil.UserID(c.Request.Context()), todoID, updates); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /todos/:todo_id
func (th *TodoHandler) Delete(c *gin.Context) {
	todoID, err := uuid.Parse(c.Param("todo_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_todo_id", err)
		return
	}
	if err := th.planService.DeleteTodo(c.Request.Context(), ctxutil.UserID(c.Request.Context()), todoID); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
