package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forgedesk/inventory-service/internal/model"
)

// RespondError maps domain error kinds onto HTTP status codes. Unknown
// errors come back as 500 with a generic body.
func RespondError(c *gin.Context, err error) {
	var (
		validationErr   *model.ValidationError
		terminalErr     *model.TerminalStateError
		insufficientErr *model.InsufficientStockError
		overReceiptErr  *model.OverReceiptError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, model.ErrItemNotFound),
		errors.Is(err, model.ErrReservationNotFound),
		errors.Is(err, model.ErrPurchaseOrderNotFound),
		errors.Is(err, model.ErrSupplierNotFound),
		errors.Is(err, model.ErrReceiptNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &terminalErr):
		c.JSON(http.StatusConflict, gin.H{"error": terminalErr.Error()})
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     insufficientErr.Error(),
			"item_id":   insufficientErr.ItemID,
			"sku":       insufficientErr.SKU,
			"projected": insufficientErr.Projected,
		})
	case errors.As(err, &overReceiptErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       overReceiptErr.Error(),
			"line_id":     overReceiptErr.LineID,
			"outstanding": overReceiptErr.Outstanding,
			"requested":   overReceiptErr.Requested,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
