package splits

import (
	"time"

	"github.com/google/uuid"
)

type PricingMode string

const (
	PricingModeFixed   PricingMode = "FIXED"
	PricingModeDynamic PricingMode = "DYNAMIC"
)

type DynamicMode string

const (
	DynamicModePercent DynamicMode = "PERCENT"
	DynamicModeAmount  DynamicMode = "AMOUNT"
)

type Status string

const (
	StatusOpen      Status = "OPEN"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

type ParticipantStatus string

const (
	ParticipantStatusPending   ParticipantStatus = "PENDING"
	ParticipantStatusPaid      ParticipantStatus = "PAID"
	ParticipantStatusCancelled ParticipantStatus = "CANCELLED"
)

// BookingSplit divides a booking's price between participants. At most one
// split exists per booking.
type BookingSplit struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	BookingID       uint        `json:"bookingId" gorm:"uniqueIndex;not null"`
	OrganizationID  uint        `json:"organizationId" gorm:"index;not null"`
	PricingMode     PricingMode `json:"pricingMode" gorm:"type:varchar(10);not null"`
	Status          Status      `json:"status" gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Currency        string      `json:"currency" gorm:"type:varchar(3);not null;default:'EUR'"`
	TotalCents      int64       `json:"totalCents" gorm:"not null;default:0"`
	ShareCents      *int64      `json:"shareCents"`
	DeadlineAt      *time.Time  `json:"deadlineAt" gorm:"index"`
	CreatedByUserID *uuid.UUID  `json:"createdByUserId,omitempty" gorm:"type:uuid"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	Participants []BookingSplitParticipant `json:"participants,omitempty" gorm:"foreignKey:SplitID;constraint:OnDelete:CASCADE;"`
}

// BookingSplitParticipant is one payer's share. Shares are replaced as a set
// whenever the split is reconfigured.
type BookingSplitParticipant struct {
	ID               uint              `json:"id" gorm:"primaryKey"`
	SplitID          uint              `json:"splitId" gorm:"not null;index;uniqueIndex:idx_split_participant_invite"`
	InviteID         *uint             `json:"inviteId" gorm:"uniqueIndex:idx_split_participant_invite"`
	UserID           *string           `json:"userId" gorm:"type:varchar(64)"`
	Name             *string           `json:"name"`
	Contact          *string           `json:"contact"`
	BaseShareCents   int64             `json:"baseShareCents" gorm:"not null;default:0"`
	ShareCents       int64             `json:"shareCents" gorm:"not null;default:0"`
	PlatformFeeCents int64             `json:"platformFeeCents" gorm:"not null;default:0"`
	Status           ParticipantStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentIntentID  *string           `json:"paymentIntentId"`
	PaidAt           *time.Time        `json:"paidAt"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// IsLocked reports whether any participant has paid, which freezes the split.
func (s *BookingSplit) IsLocked() bool {
	for _, p := range s.Participants {
		if p.Status == ParticipantStatusPaid {
			return true
		}
	}
	return false
}

// PaidCents sums the positive shares of paid participants.
func (s *BookingSplit) PaidCents() int64 {
	var paid int64
	for _, p := range s.Participants {
		if p.Status == ParticipantStatusPaid && p.ShareCents > 0 {
			paid += p.ShareCents
		}
	}
	return paid
}

func (s *BookingSplit) ParticipantByInvite(inviteID uint) *BookingSplitParticipant {
	for i := range s.Participants {
		if s.Participants[i].InviteID != nil && *s.Participants[i].InviteID == inviteID {
			return &s.Participants[i]
		}
	}
	return nil
}
