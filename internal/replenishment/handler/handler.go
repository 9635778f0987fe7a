package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/pkg/web"
	"github.com/forgedesk/inventory-service/internal/replenishment"
)

type ReplenishmentHandler struct {
	uc     replenishment.UseCase
	logger logger.ZapLogger
}

func NewReplenishmentHandler(uc replenishment.UseCase, log logger.ZapLogger) *ReplenishmentHandler {
	return &ReplenishmentHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReplenishmentHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/replenishment/plan", h.Plan)
	rg.GET("/replenishment/by-supplier", h.PlanBySupplier)
}

func (h *ReplenishmentHandler) Plan(c *gin.Context) {
	plans, err := h.uc.Plan(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": plans})
}

func (h *ReplenishmentHandler) PlanBySupplier(c *gin.Context) {
	groups, err := h.uc.PlanBySupplier(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}
