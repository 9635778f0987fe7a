package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/pkg/web"
	"github.com/forgedesk/inventory-service/internal/purchasing"
	"github.com/forgedesk/inventory-service/internal/purchasing/dto"
)

type PurchasingHandler struct {
	uc     purchasing.UseCase
	logger logger.ZapLogger
}

func NewPurchasingHandler(uc purchasing.UseCase, log logger.ZapLogger) *PurchasingHandler {
	return &PurchasingHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PurchasingHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/suppliers", h.ListSuppliers)
	rg.POST("/suppliers", h.CreateSupplier)

	rg.GET("/purchase-orders", h.ListOpen)
	rg.POST("/purchase-orders", h.CreateOrder)
	rg.GET("/purchase-orders/:id", h.GetOrder)
	rg.PATCH("/purchase-orders/:id", h.UpdateOrder)
	rg.POST("/purchase-orders/:id/receipts", h.RecordReceipt)
	rg.GET("/purchase-orders/:id/receipts", h.ReceiptHistory)
	rg.GET("/receipts", h.RecentReceipts)
}

func (h *PurchasingHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.uc.ListSuppliers(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

func (h *PurchasingHandler) CreateSupplier(c *gin.Context) {
	var input dto.SupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}
	supplier, err := h.uc.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *PurchasingHandler) ListOpen(c *gin.Context) {
	orders, err := h.uc.ListOpen(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": orders})
}

func (h *PurchasingHandler) CreateOrder(c *gin.Context) {
	var input dto.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}
	po, err := h.uc.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

func (h *PurchasingHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	po, err := h.uc.GetOrder(c.Request.Context(), id)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (h *PurchasingHandler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}
	po, err := h.uc.UpdateOrder(c.Request.Context(), id, &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

// RecordReceipt books the receipt, then folds the new balances into the
// order status as a separate step.
func (h *PurchasingHandler) RecordReceipt(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.ReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}

	result, err := h.uc.RecordReceipt(c.Request.Context(), id, &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}

	status, err := h.uc.RecalculateStatus(c.Request.Context(), id)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	result.Status = status

	c.JSON(http.StatusCreated, result)
}

func (h *PurchasingHandler) ReceiptHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	receipts, err := h.uc.ReceiptHistory(c.Request.Context(), id)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func (h *PurchasingHandler) RecentReceipts(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	receipts, err := h.uc.RecentReceipts(c.Request.Context(), limit)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": receipts})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		web.RespondError(c, model.Invalid("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}
