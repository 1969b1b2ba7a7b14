package database

import (
	"fmt"

	"organizer/internal/bookings"
	"organizer/internal/fees"
	"organizer/internal/organizations"
	"organizer/internal/splits"
	"organizer/internal/users"

	"gorm.io/gorm"
)

// Migrate creates the tables and then the constraints gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&users.Profile{},
		&organizations.Organization{},
		&organizations.OrganizationMember{},
		&bookings.Booking{},
		&bookings.BookingInvite{},
		&splits.BookingSplit{},
		&splits.BookingSplitParticipant{},
		&fees.PlatformSetting{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return MigrateConstraints(db)
}
