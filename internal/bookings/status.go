package bookings

import "time"

type Status string

const (
	StatusPendingConfirmation Status = "PENDING_CONFIRMATION"
	StatusPending             Status = "PENDING"
	StatusConfirmed           Status = "CONFIRMED"
	StatusCancelled           Status = "CANCELLED"
	StatusCancelledByClient   Status = "CANCELLED_BY_CLIENT"
	StatusCancelledByOrg      Status = "CANCELLED_BY_ORG"
	StatusCompleted           Status = "COMPLETED"
	StatusNoShow              Status = "NO_SHOW"
	StatusDisputed            Status = "DISPUTED"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsPending reports whether the booking still awaits payment or confirmation.
func (s Status) IsPending() bool {
	return s == StatusPending || s == StatusPendingConfirmation
}

// IsInactive reports whether no further payment changes are allowed.
func (s Status) IsInactive() bool {
	switch s {
	case StatusCancelled, StatusCancelledByClient, StatusCancelledByOrg,
		StatusCompleted, StatusNoShow, StatusDisputed:
		return true
	}
	return false
}

// State derives the effective status at now: a pending booking whose pending
// window has elapsed counts as cancelled even before a job rewrites the row.
func State(b *Booking, now time.Time) Status {
	if b.Status.IsPending() && b.PendingExpiresAt != nil && !b.PendingExpiresAt.After(now) {
		return StatusCancelled
	}
	return b.Status
}
