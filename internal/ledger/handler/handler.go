package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forgedesk/inventory-service/internal/ledger"
	"github.com/forgedesk/inventory-service/internal/ledger/dto"
	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/pkg/web"
)

type LedgerHandler struct {
	uc     ledger.UseCase
	logger logger.ZapLogger
}

func NewLedgerHandler(uc ledger.UseCase, log logger.ZapLogger) *LedgerHandler {
	return &LedgerHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *LedgerHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/items", h.ListItems)
	rg.GET("/items/lookup", h.ResolveItem)
	rg.GET("/items/:id", h.GetItem)
	rg.GET("/items/:id/available", h.AvailableQty)
	rg.GET("/items/:id/average-daily-use", h.AverageDailyUse)
	rg.POST("/items/:id/commit", h.Commit)
	rg.POST("/items/:id/release", h.Release)
	rg.GET("/summary", h.Summary)
	rg.GET("/transactions", h.ListTransactions)
	rg.POST("/transactions", h.RecordTransaction)
}

func (h *LedgerHandler) ListItems(c *gin.Context) {
	filters := &dto.ItemFilters{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 50),
	}

	items, total, err := h.uc.ListItems(c.Request.Context(), filters)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *LedgerHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := h.uc.GetItem(c.Request.Context(), id)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *LedgerHandler) ResolveItem(c *gin.Context) {
	identifier := c.Query("identifier")
	if identifier == "" {
		web.RespondError(c, model.Invalid("identifier", "is required"))
		return
	}
	item, err := h.uc.ResolveItem(c.Request.Context(), identifier)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *LedgerHandler) AvailableQty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	available, err := h.uc.AvailableQty(c.Request.Context(), id)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": id, "available_qty": available})
}

func (h *LedgerHandler) AverageDailyUse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	adu, err := h.uc.AverageDailyUse(c.Request.Context(), id, queryInt(c, "window_days", 0))
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": id, "average_daily_use": adu})
}

func (h *LedgerHandler) Summary(c *gin.Context) {
	summary, err := h.uc.Summary(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *LedgerHandler) RecordTransaction(c *gin.Context) {
	var input dto.RecordTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}
	txn, err := h.uc.RecordTransaction(c.Request.Context(), &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	entries, err := h.uc.ListTransactions(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}

type quantityBody struct {
	Quantity int64 `json:"quantity"`
}

func (h *LedgerHandler) Commit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body quantityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}

	item, warning, err := h.uc.Commit(c.Request.Context(), id, body.Quantity)
	if err != nil {
		web.RespondError(c, err)
		return
	}

	resp := gin.H{"item": item}
	if warning != nil {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LedgerHandler) Release(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body quantityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}

	item, err := h.uc.Release(c.Request.Context(), id, body.Quantity)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		web.RespondError(c, model.Invalid("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
