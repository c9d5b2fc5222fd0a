package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/planloop/planloop-backend/internal/http/response"
	"github.com/planloop/planloop-backend/internal/pkg/ctxutil"
	"github.com/planloop/planloop-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetUser(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}
