package reservation

import (
	"fmt"

	"github.com/forgedesk/inventory-service/internal/model"
)

// ValidateTransition enforces the job lifecycle:
// active -> in_progress -> fulfilled, with cancellation allowed from either
// non-terminal state. Terminal reservations reject every change.
func ValidateTransition(id int64, from, to model.ReservationStatus) error {
	if !to.Valid() {
		return model.Invalid("status", fmt.Sprintf("unknown status %q", to))
	}
	if from.Terminal() {
		return &model.TerminalStateError{Entity: "reservation", ID: id, Status: string(from)}
	}
	if from == to {
		return model.Invalid("status", fmt.Sprintf("reservation is already %s", from))
	}

	switch to {
	case model.ReservationStatusInProgress:
		if from == model.ReservationStatusActive {
			return nil
		}
	case model.ReservationStatusFulfilled:
		if from == model.ReservationStatusInProgress {
			return nil
		}
		return model.Invalid("status", "work must be started before a reservation can be fulfilled")
	case model.ReservationStatusCancelled:
		return nil
	case model.ReservationStatusActive:
		return model.Invalid("status", "reservations cannot return to active")
	}
	return model.Invalid("status", fmt.Sprintf("cannot move from %s to %s", from, to))
}
