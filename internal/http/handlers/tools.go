package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/planloop/planloop-backend/internal/aitools"
	"github.com/planloop/planloop-backend/internal/http/response"
)

var errNoCalls = errors.New("calls must not be empty")

type ToolsHandler struct {
	dispatcher *aitools.Dispatcher
}

func NewToolsHandler(dispatcher *aitools.Dispatcher) *ToolsHandler {
	return &ToolsHandler{dispatcher: dispatcher}
}

// POST /tools/execute
// body: { "calls": [{ "tool_name": "create_plan", "args": { ... } }] }
// Used by the assistant runtime to apply structured plan edits.
func (th *ToolsHandler) Execute(c *gin.Context) {
	var req struct {
		Calls []aitools.ToolCall `json:"calls"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Calls) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errNoCalls)
		return
	}
	results := th.dispatcher.Execute(c.Request.Context(), req.Calls)
	response.RespondOK(c, gin.H{"results": results})
}
