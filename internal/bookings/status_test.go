package bookings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	cases := []struct {
		name     string
		booking  Booking
		expected Status
	}{
		{name: "confirmed stays confirmed", booking: Booking{Status: StatusConfirmed, PendingExpiresAt: &past}, expected: StatusConfirmed},
		{name: "pending without window", booking: Booking{Status: StatusPending}, expected: StatusPending},
		{name: "pending inside window", booking: Booking{Status: StatusPending, PendingExpiresAt: &future}, expected: StatusPending},
		{name: "pending window elapsed", booking: Booking{Status: StatusPending, PendingExpiresAt: &past}, expected: StatusCancelled},
		{name: "pending confirmation elapsed", booking: Booking{Status: StatusPendingConfirmation, PendingExpiresAt: &now}, expected: StatusCancelled},
		{name: "no show", booking: Booking{Status: StatusNoShow}, expected: StatusNoShow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, State(&tc.booking, now))
		})
	}
}

func TestStatusIsInactive(t *testing.T) {
	inactive := []Status{StatusCancelled, StatusCancelledByClient, StatusCancelledByOrg, StatusCompleted, StatusNoShow, StatusDisputed}
	for _, s := range inactive {
		assert.True(t, s.IsInactive(), s)
	}
	for _, s := range []Status{StatusPending, StatusPendingConfirmation, StatusConfirmed} {
		assert.False(t, s.IsInactive(), s)
	}
}
