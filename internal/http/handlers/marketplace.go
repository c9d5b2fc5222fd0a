package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/planloop/planloop-backend/internal/http/response"
	"github.com/planloop/planloop-backend/internal/pkg/ctxutil"
	"github.com/planloop/planloop-backend/internal/services"
)

type MarketplaceHandler struct {
	marketplaceService services.MarketplaceService
}

func NewMarketplaceHandler(marketplaceService services.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplaceService: marketplaceService}
}

// POST /plans/:plan_id/publish
// body: { "price_credits": 50, "free": false }
func (mh *MarketplaceHandler) Publish(c *gin.Context) {
	planID, err := uuid.Parse(c.Param("plan_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_plan_id", err)
		return
	}
	var req struct {
		PriceCredits int  `json:"price_credits"`
		Free         bool `json:"free"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	snapshot, err := mh.marketplaceService.PublishSnapshot(c.Request.Context(), ctxutil.UserID(c.Request.Context()), planID, req.PriceCredits, req.Free)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"snapshot": snapshot})
}

// POST /marketplace/:snapshot_id/fork
func (mh *MarketplaceHandler) Fork(c *gin.Context) {
	snapshotID, err := uuid.Parse(c.Param("snapshot_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_snapshot_id", err)
		return
	}
	plan, err := mh.marketplaceService.ForkSnapshot(c.Request.Context(), ctxutil.UserID(c.Request.Context()), snapshotID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"plan": plan})
}

// POST /marketplace/:snapshot_id/purchase
func (mh *MarketplaceHandler) Purchase(c *gin.Context) {
	snapshotID, err := uuid.Parse(c.Param("snapshot_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_snapshot_id", err)
		return
	}
	purchase, err := mh.marketplaceService.PurchaseSnapshot(c.Request.Context(), ctxutil.UserID(c.Request.Context()), snapshotID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"purchase": purchase})
}
