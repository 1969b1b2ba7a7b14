package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"organizer/internal/bookings"
	"organizer/internal/fees"
	"organizer/internal/organizations"
	"organizer/internal/shared/config"
	"organizer/internal/shared/constants"
	"organizer/internal/shared/database"
	"organizer/internal/users"
	"organizer/pkg/cache"
	"organizer/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Fixed ids so local JWTs stay valid across reseeds.
var (
	ownerID  = uuid.MustParse("6c1f3b8e-2d4a-4b7e-9f0a-1a2b3c4d5e01")
	staffID  = uuid.MustParse("6c1f3b8e-2d4a-4b7e-9f0a-1a2b3c4d5e02")
	guestID  = uuid.MustParse("6c1f3b8e-2d4a-4b7e-9f0a-1a2b3c4d5e03")
	viewerID = uuid.MustParse("6c1f3b8e-2d4a-4b7e-9f0a-1a2b3c4d5e04")
)

type Seeder struct {
	db  *database.DB
	log *logger.Logger
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	appLogger := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level})

	fmt.Println("🌱 Starting Organizer Database Seeder...")

	db, err := database.InitDB(cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	seeder := &Seeder{db: db, log: appLogger}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		appLogger.Error("Failed to clean database", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(context.Background(), cfg); err != nil {
		appLogger.Error("Failed to seed database", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates seeded tables, children first.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_split_participants",
		"booking_splits",
		"booking_invites",
		"bookings",
		"organization_members",
		"organizations",
		"profiles",
		"platform_settings",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll(ctx context.Context, cfg *config.Config) error {
	if err := s.SeedPlatformSettings(cfg); err != nil {
		return fmt.Errorf("failed to seed platform settings: %w", err)
	}

	if err := s.SeedProfiles(); err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}

	orgID, err := s.SeedOrganizations()
	if err != nil {
		return fmt.Errorf("failed to seed organizations: %w", err)
	}

	if err := s.SeedBookings(orgID); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	// cached platform fees would mask the new rows
	if s.db.Redis != nil {
		if err := cache.NewService(s.db.Redis).DeletePattern(ctx, constants.PATTERN_INVALIDATE_FEES_ALL); err != nil {
			s.log.Warn("Failed to clear fee cache", slog.Any("error", err))
		}
	}

	return nil
}

func (s *Seeder) SeedPlatformSettings(cfg *config.Config) error {
	fmt.Println("  ⚙️  Seeding platform settings...")

	rows := []fees.PlatformSetting{
		{Key: fees.SettingPlatformFeeBps, Value: strconv.Itoa(cfg.Fees.PlatformFeeBps)},
		{Key: fees.SettingPlatformFeeFixedCents, Value: strconv.Itoa(cfg.Fees.PlatformFeeFixedCents)},
		{Key: fees.SettingPlatformFeeMode, Value: cfg.Fees.DefaultFeeMode},
	}
	return s.db.PostgreSQL.Create(&rows).Error
}

func (s *Seeder) SeedProfiles() error {
	fmt.Println("  👤 Seeding profiles...")

	profiles := []users.Profile{
		{ID: ownerID, FullName: "Olivia Owner", Email: "owner@organizer.local"},
		{ID: staffID, FullName: "Sam Staff", Email: "staff@organizer.local"},
		{ID: guestID, FullName: "Gina Guest", Email: "guest@organizer.local"},
		{ID: viewerID, FullName: "Victor Viewer", Email: "viewer@organizer.local"},
	}
	for _, p := range profiles {
		if err := s.db.PostgreSQL.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to create profile %s: %w", p.Email, err)
		}
		fmt.Printf("    ✅ Created profile: %s (%s)\n", p.Email, p.ID)
	}
	return nil
}

// SeedOrganizations creates one external club with a fee override and the
// platform organization, and returns the club id.
func (s *Seeder) SeedOrganizations() (uint, error) {
	fmt.Println("  🏢 Seeding organizations...")

	includedMode := string(fees.FeeModeIncluded)
	clubBps := 300
	club := organizations.Organization{
		Name:           "Padel Club Lisboa",
		OrgType:        organizations.OrgTypeExternal,
		Status:         organizations.StatusActive,
		FeeMode:        &includedMode,
		PlatformFeeBps: &clubBps,
	}
	if err := s.db.PostgreSQL.Create(&club).Error; err != nil {
		return 0, err
	}

	platform := organizations.Organization{
		Name:    "Organizer",
		OrgType: organizations.OrgTypePlatform,
		Status:  organizations.StatusActive,
	}
	if err := s.db.PostgreSQL.Create(&platform).Error; err != nil {
		return 0, err
	}

	members := []organizations.OrganizationMember{
		{OrganizationID: club.ID, UserID: ownerID, Role: organizations.RoleOwner},
		{OrganizationID: club.ID, UserID: staffID, Role: organizations.RoleStaff},
		{OrganizationID: club.ID, UserID: viewerID, Role: organizations.RoleViewer},
		{OrganizationID: platform.ID, UserID: ownerID, Role: organizations.RoleOwner},
	}
	if err := s.db.PostgreSQL.Create(&members).Error; err != nil {
		return 0, err
	}

	fmt.Printf("    ✅ Created organizations: %s (#%d), %s (#%d)\n", club.Name, club.ID, platform.Name, platform.ID)
	return club.ID, nil
}

// SeedBookings creates bookings in several states, each with invites.
func (s *Seeder) SeedBookings(orgID uint) error {
	fmt.Println("  📅 Seeding bookings and invites...")

	now := time.Now().UTC()
	pendingUntil := now.Add(48 * time.Hour)

	seed := []struct {
		price   int64
		status  bookings.Status
		starts  time.Time
		pending *time.Time
		invites []string
	}{
		{10000, bookings.StatusPending, now.Add(72 * time.Hour), &pendingUntil, []string{"ana@example.com", "+351912345678"}},
		{24000, bookings.StatusConfirmed, now.Add(7 * 24 * time.Hour), nil, []string{"rui@example.com", "joana@example.com", "marta@example.com"}},
		{8000, bookings.StatusCancelledByOrg, now.Add(24 * time.Hour), nil, []string{"pedro@example.com"}},
		{0, bookings.StatusPending, now.Add(96 * time.Hour), nil, nil},
	}

	for _, b := range seed {
		booking := bookings.Booking{
			OrganizationID:   orgID,
			Price:            b.price,
			Currency:         "EUR",
			Status:           b.status,
			StartsAt:         b.starts,
			PendingExpiresAt: b.pending,
		}
		if err := s.db.PostgreSQL.Create(&booking).Error; err != nil {
			return err
		}

		for i, contact := range b.invites {
			contact := contact
			name := fmt.Sprintf("Guest %d", i+1)
			invite := bookings.BookingInvite{
				BookingID:     booking.ID,
				Token:         uuid.NewString(),
				TargetName:    &name,
				TargetContact: &contact,
				Status:        bookings.InviteStatusPending,
			}
			if err := s.db.PostgreSQL.Create(&invite).Error; err != nil {
				return err
			}
			fmt.Printf("    🔗 Invite #%d for booking #%d: token=%s\n", invite.ID, booking.ID, invite.Token)
		}

		fmt.Printf("    ✅ Created booking #%d (%s, %d cents)\n", booking.ID, booking.Status, booking.Price)
	}

	return nil
}
