package dto

import (
	"time"

	"github.com/forgedesk/inventory-service/internal/model"
)

type ReservationSummary struct {
	ID             int64                   `db:"id" json:"id"`
	JobNumber      string                  `db:"job_number" json:"job_number"`
	JobName        string                  `db:"job_name" json:"job_name"`
	RequestedBy    string                  `db:"requested_by" json:"requested_by"`
	NeededBy       *time.Time              `db:"needed_by" json:"needed_by"`
	Status         model.ReservationStatus `db:"status" json:"status"`
	LineCount      int                     `db:"line_count" json:"line_count"`
	TotalCommitted int64                   `db:"total_committed" json:"total_committed"`
	TotalConsumed  int64                   `db:"total_consumed" json:"total_consumed"`
	CreatedAt      time.Time               `db:"created_at" json:"created_at"`
}

type ReservationDetail struct {
	Reservation model.Reservation       `json:"reservation"`
	Lines       []ReservationLineDetail `json:"lines"`
}

type ReservationLineDetail struct {
	ID              int64   `db:"id" json:"id"`
	InventoryItemID int64   `db:"inventory_item_id" json:"inventory_item_id"`
	SKU             string  `db:"sku" json:"sku"`
	Item            string  `db:"item" json:"item"`
	Location        string  `db:"location" json:"location"`
	RequestedQty    int64   `db:"requested_qty" json:"requested_qty"`
	CommittedQty    int64   `db:"committed_qty" json:"committed_qty"`
	ConsumedQty     int64   `db:"consumed_qty" json:"consumed_qty"`
	OnHand          int64   `db:"on_hand" json:"on_hand"`
	AvailableQty    int64   `db:"available_qty" json:"available_qty"`
}

type EditResult struct {
	Detail         *ReservationDetail `json:"detail"`
	LinesUpdated   int                `json:"lines_updated"`
	LinesAdded     int                `json:"lines_added"`
	TotalCommitted int64              `json:"total_committed"`
	TotalReleased  int64              `json:"total_released"`
}

type CompletionResult struct {
	JobNumber     string `json:"job_number"`
	TotalConsumed int64  `json:"total_consumed"`
	TotalReleased int64  `json:"total_released"`
	TransactionID *int64 `json:"transaction_id"`
}

type CancellationResult struct {
	JobNumber     string `json:"job_number"`
	TotalReleased int64  `json:"total_released"`
}

// StatusUpdateResult is the envelope for updateStatus, whichever branch ran.
type StatusUpdateResult struct {
	Status            model.ReservationStatus  `json:"status"`
	InsufficientItems []model.InsufficientItem `json:"insufficient_items,omitempty"`
	Completion        *CompletionResult        `json:"completion,omitempty"`
	Cancellation      *CancellationResult      `json:"cancellation,omitempty"`
}
