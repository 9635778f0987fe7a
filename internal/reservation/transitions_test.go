package reservation

import (
	"testing"

	"github.com/forgedesk/inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		name    string
		from    model.ReservationStatus
		to      model.ReservationStatus
		allowed bool
	}{
		{"start work", model.ReservationStatusActive, model.ReservationStatusInProgress, true},
		{"cancel active", model.ReservationStatusActive, model.ReservationStatusCancelled, true},
		{"cancel in progress", model.ReservationStatusInProgress, model.ReservationStatusCancelled, true},
		{"fulfill in progress", model.ReservationStatusInProgress, model.ReservationStatusFulfilled, true},
		{"fulfill without starting", model.ReservationStatusActive, model.ReservationStatusFulfilled, false},
		{"back to active", model.ReservationStatusInProgress, model.ReservationStatusActive, false},
		{"same status", model.ReservationStatusActive, model.ReservationStatusActive, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(7, tc.from, tc.to)
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateTransitionTerminalStatesRejectEverything(t *testing.T) {
	targets := []model.ReservationStatus{
		model.ReservationStatusActive,
		model.ReservationStatusInProgress,
		model.ReservationStatusFulfilled,
		model.ReservationStatusCancelled,
	}
	for _, from := range []model.ReservationStatus{model.ReservationStatusFulfilled, model.ReservationStatusCancelled} {
		for _, to := range targets {
			err := ValidateTransition(3, from, to)
			var terminal *model.TerminalStateError
			require.ErrorAs(t, err, &terminal, "from %s to %s", from, to)
			assert.Equal(t, int64(3), terminal.ID)
			assert.Equal(t, string(from), terminal.Status)
		}
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	var vErr *model.ValidationError
	err := ValidateTransition(1, model.ReservationStatusActive, model.ReservationStatus("archived"))
	require.ErrorAs(t, err, &vErr)
}
