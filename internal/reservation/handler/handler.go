package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"
	"github.com/forgedesk/inventory-service/internal/pkg/web"
	"github.com/forgedesk/inventory-service/internal/reservation"
	"github.com/forgedesk/inventory-service/internal/reservation/dto"
)

type ReservationHandler struct {
	uc     reservation.UseCase
	logger logger.ZapLogger
}

func NewReservationHandler(uc reservation.UseCase, log logger.ZapLogger) *ReservationHandler {
	return &ReservationHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ReservationHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/reservations", h.List)
	rg.POST("/reservations", h.Create)
	rg.GET("/reservations/:id", h.Get)
	rg.PATCH("/reservations/:id", h.Edit)
	rg.PUT("/reservations/:id/status", h.UpdateStatus)
}

func (h *ReservationHandler) List(c *gin.Context) {
	reservations, err := h.uc.List(c.Request.Context())
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var input dto.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}

	detail, warnings, err := h.uc.Create(c.Request.Context(), &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}

	resp := gin.H{"reservation": detail}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ReservationHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.EditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}

	result, warnings, err := h.uc.Edit(c.Request.Context(), id, &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}

	resp := gin.H{"result": result}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input dto.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		web.RespondError(c, model.Invalid("body", err.Error()))
		return
	}

	result, err := h.uc.UpdateStatus(c.Request.Context(), id, &input)
	if err != nil {
		web.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		web.RespondError(c, model.Invalid("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}
