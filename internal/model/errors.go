package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound          = errors.New("inventory item not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrPurchaseOrderNotFound = errors.New("purchase order not found")
	ErrSupplierNotFound      = errors.New("supplier not found")
	ErrReceiptNotFound       = errors.New("receipt not found")
)

// ValidationError reports malformed or contradictory input. Nothing is
// written when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// TerminalStateError reports a mutation attempted against a record whose
// status forbids further changes.
type TerminalStateError struct {
	Entity string
	ID     int64
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s %d is %s and can no longer be modified", e.Entity, e.ID, e.Status)
}

// InsufficientStockError rejects a transaction line that would drive
// projected stock below zero. The whole transaction is discarded.
type InsufficientStockError struct {
	ItemID    int64
	SKU       string
	Projected int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d (%s): change %d would leave %d on hand",
		e.ItemID, e.SKU, e.Requested, e.Projected)
}

// OverReceiptError rejects a receipt whose receive+cancel exceeds the
// outstanding balance on a purchase order line.
type OverReceiptError struct {
	LineID      int64
	Outstanding decimal.Decimal
	Requested   decimal.Decimal
}

func (e *OverReceiptError) Error() string {
	return fmt.Sprintf("over-receipt on purchase order line %d: %s requested against %s outstanding",
		e.LineID, e.Requested.String(), e.Outstanding.String())
}

// ShortageWarning accompanies a successful commitment that exceeded
// availability. It is advisory, not an error.
type ShortageWarning struct {
	ItemID       int64  `json:"item_id"`
	SKU          string `json:"sku"`
	Item         string `json:"item"`
	Location     string `json:"location"`
	RequestedQty int64  `json:"requested_qty"`
	AvailableQty int64  `json:"available_qty"`
}

func (w ShortageWarning) Message() string {
	return fmt.Sprintf("%s (%s) committed %d with only %d available",
		w.Item, w.SKU, w.RequestedQty, w.AvailableQty)
}

// InsufficientItem flags a committed line whose item lacks the on-hand stock
// to fulfill it, surfaced when work starts on a job.
type InsufficientItem struct {
	ItemID       int64  `json:"item_id"`
	SKU          string `json:"sku"`
	Item         string `json:"item"`
	Location     string `json:"location"`
	CommittedQty int64  `json:"committed_qty"`
	OnHand       int64  `json:"on_hand"`
	Shortage     int64  `json:"shortage"`
}
