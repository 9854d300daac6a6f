package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_revenue/internal/models"
	"github.com/GTDGit/gtd_revenue/internal/service"
	"github.com/GTDGit/gtd_revenue/internal/utils"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// RevenueHandler exposes the revenue pipeline over HTTP.
type RevenueHandler struct {
	dispatcher *service.Dispatcher
	query      *service.QueryService
}

// NewRevenueHandler constructs a RevenueHandler.
func NewRevenueHandler(dispatcher *service.Dispatcher, query *service.QueryService) *RevenueHandler {
	return &RevenueHandler{dispatcher: dispatcher, query: query}
}

// Dispatch handles POST /v1/revenue/dispatch. It answers with the flat
// payload of the action rather than the envelope.
func (h *RevenueHandler) Dispatch(c *gin.Context) {
	var req service.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	payload := resultPayload(res)
	payload["success"] = true
	c.JSON(http.StatusOK, payload)
}

// ComputeProductMetrics handles POST /v1/revenue/product-metrics
func (h *RevenueHandler) ComputeProductMetrics(c *gin.Context) {
	h.runAction(c, models.ActionComputeProductMetrics, "Product metrics computed")
}

// ComputeStorePredictions handles POST /v1/revenue/store-predictions
func (h *RevenueHandler) ComputeStorePredictions(c *gin.Context) {
	h.runAction(c, models.ActionComputeStorePredictions, "Store predictions computed")
}

// GenerateDeals handles POST /v1/revenue/deals
func (h *RevenueHandler) GenerateDeals(c *gin.Context) {
	h.runAction(c, models.ActionGenerateDealRecommendations, "Deal recommendations generated")
}

// GetStorePredictions handles GET /v1/revenue/stores/:storeId/predictions
func (h *RevenueHandler) GetStorePredictions(c *gin.Context) {
	req := service.Request{
		Action: models.ActionGetStorePredictions,
		Scope:  models.Scope{StoreID: c.Param("storeId")},
	}
	h.respond(c, req, "Store predictions retrieved")
}

// GetHeroGhost handles GET /v1/revenue/hero-ghost
func (h *RevenueHandler) GetHeroGhost(c *gin.Context) {
	var scope models.Scope
	if err := c.ShouldBindQuery(&scope); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}
	h.respond(c, service.Request{Action: models.ActionGetHeroGhostSKUs, Scope: scope}, "Hero and ghost products retrieved")
}

// GetDeals handles GET /v1/revenue/deals
func (h *RevenueHandler) GetDeals(c *gin.Context) {
	var scope models.Scope
	if err := c.ShouldBindQuery(&scope); err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query parameters")
		return
	}
	scope.StoreID = ""
	if err := service.ValidateScope(scope); err != nil {
		h.handleError(c, err)
		return
	}

	deals := h.query.ActiveDeals(c.Request.Context(), scope)
	utils.Success(c, http.StatusOK, "Deal recommendations retrieved", gin.H{"deals": deals})
}

// GetRuns handles GET /v1/revenue/runs
func (h *RevenueHandler) GetRuns(c *gin.Context) {
	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunLimit)
	}

	runs, err := h.query.RecentRuns(c.Request.Context(), c.Query("action"), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Pipeline runs retrieved", gin.H{"runs": runs})
}

// runAction dispatches a compute action whose scope comes from an optional
// JSON body.
func (h *RevenueHandler) runAction(c *gin.Context, action, message string) {
	var scope models.Scope
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&scope); err != nil {
			utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}
	h.respond(c, service.Request{Action: action, Scope: scope}, message)
}

func (h *RevenueHandler) respond(c *gin.Context, req service.Request, message string) {
	res, err := h.dispatcher.Dispatch(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, message, resultPayload(res))
}

func resultPayload(res *service.Result) gin.H {
	switch res.Action {
	case models.ActionComputeProductMetrics:
		return gin.H{"computed": res.Report.Processed, "failed": res.Report.Failed}
	case models.ActionComputeStorePredictions:
		return gin.H{"predictions": res.Report.Written, "failed": res.Report.Failed}
	case models.ActionGenerateDealRecommendations:
		return gin.H{"deals": res.Report.Written, "failed": res.Report.Failed}
	case models.ActionGetStorePredictions:
		return gin.H{"predictions": res.Predictions}
	default:
		return gin.H{"heroes": res.HeroGhost.Heroes, "ghosts": res.HeroGhost.Ghosts}
	}
}

func (h *RevenueHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrUnknownAction):
		utils.Error(c, http.StatusBadRequest, utils.ErrUnknownAction.Error(), err.Error())
	case errors.Is(err, utils.ErrMissingStoreID):
		utils.Error(c, http.StatusBadRequest, utils.ErrMissingStoreID.Error(), "storeId is required")
	case errors.Is(err, utils.ErrInvalidScope):
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidScope.Error(), err.Error())
	default:
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
