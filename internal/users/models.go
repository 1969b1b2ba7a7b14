package users

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the identity issued by the external auth provider. The id is
// the token subject, so rows are created by the provider sync, never here.
type Profile struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	FullName  string    `json:"fullName" gorm:"not null;default:''"`
	Email     string    `json:"email" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}
