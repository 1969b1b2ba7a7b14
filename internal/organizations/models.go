package organizations

import (
	"time"

	"github.com/google/uuid"
)

type OrgType string

const (
	OrgTypePlatform OrgType = "PLATFORM"
	OrgTypeExternal OrgType = "EXTERNAL"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleCoOwner Role = "CO_OWNER"
	RoleAdmin   Role = "ADMIN"
	RoleStaff   Role = "STAFF"
	RoleTrainer Role = "TRAINER"
	RoleViewer  Role = "VIEWER"
)

// BookingManagerRoles may read and configure booking payment splits.
var BookingManagerRoles = []Role{RoleOwner, RoleCoOwner, RoleAdmin, RoleStaff}

// Organization is the tenant owning bookings. The fee fields override the
// platform defaults when set.
type Organization struct {
	ID                    uint      `json:"id" gorm:"primaryKey"`
	Name                  string    `json:"name" gorm:"not null"`
	OrgType               OrgType   `json:"orgType" gorm:"type:varchar(20);not null;default:'EXTERNAL'"`
	Status                Status    `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	FeeMode               *string   `json:"feeMode,omitempty" gorm:"type:varchar(20)"`
	PlatformFeeBps        *int      `json:"platformFeeBps,omitempty"`
	PlatformFeeFixedCents *int      `json:"platformFeeFixedCents,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

type OrganizationMember struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	OrganizationID uint      `json:"organizationId" gorm:"not null;uniqueIndex:idx_org_member_user"`
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_org_member_user"`
	Role           Role      `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

func (o *Organization) IsPlatform() bool {
	return o.OrgType == OrgTypePlatform
}

func HasRole(role Role, allowed []Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
