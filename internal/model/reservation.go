package model

import "time"

type ReservationStatus string

const (
	ReservationStatusActive     ReservationStatus = "active"
	ReservationStatusInProgress ReservationStatus = "in_progress"
	ReservationStatusFulfilled  ReservationStatus = "fulfilled"
	ReservationStatusCancelled  ReservationStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusFulfilled || s == ReservationStatusCancelled
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusActive, ReservationStatusInProgress,
		ReservationStatusFulfilled, ReservationStatusCancelled:
		return true
	}
	return false
}

// Reservation holds material committed to a fabrication job.
type Reservation struct {
	ID          int64             `db:"id" json:"id"`
	JobNumber   string            `db:"job_number" json:"job_number"`
	JobName     string            `db:"job_name" json:"job_name"`
	RequestedBy string            `db:"requested_by" json:"requested_by"`
	NeededBy    *time.Time        `db:"needed_by" json:"needed_by"`
	Notes       *string           `db:"notes" json:"notes"`
	Status      ReservationStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`

	Lines []ReservationLine `db:"-" json:"lines"`
}

// ReservationLine tracks one item on a job. CommittedQty is the outstanding
// commitment still held against the item; ConsumedQty is what completion has
// already deducted from stock.
type ReservationLine struct {
	ID              int64 `db:"id" json:"id"`
	ReservationID   int64 `db:"reservation_id" json:"reservation_id"`
	InventoryItemID int64 `db:"inventory_item_id" json:"inventory_item_id"`
	RequestedQty    int64 `db:"requested_qty" json:"requested_qty"`
	CommittedQty    int64 `db:"committed_qty" json:"committed_qty"`
	ConsumedQty     int64 `db:"consumed_qty" json:"consumed_qty"`
}
