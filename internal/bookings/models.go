package bookings

import (
	"time"
)

// Booking is a reservation owned by an organization. Price is in integer cents.
type Booking struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	OrganizationID   uint       `json:"organizationId" gorm:"index;not null"`
	Price            int64      `json:"price" gorm:"not null;default:0"`
	Currency         string     `json:"currency" gorm:"type:varchar(3);not null;default:'EUR'"`
	Status           Status     `json:"status" gorm:"type:varchar(30);not null;default:'PENDING'"`
	StartsAt         time.Time  `json:"startsAt"`
	PendingExpiresAt *time.Time `json:"pendingExpiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	Invites []BookingInvite `json:"invites,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusDeclined InviteStatus = "DECLINED"
)

// BookingInvite is an invitation to join a booking, addressed by a public token.
type BookingInvite struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	BookingID     uint         `json:"bookingId" gorm:"index;not null"`
	Token         string       `json:"token" gorm:"uniqueIndex;not null"`
	TargetName    *string      `json:"targetName,omitempty"`
	TargetContact *string      `json:"targetContact,omitempty"`
	Status        InviteStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
