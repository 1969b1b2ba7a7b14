package database

import (
	"fmt"

	"gorm.io/gorm"
)

type checkConstraint struct {
	table string
	name  string
	expr  string
}

var splitChecks = []checkConstraint{
	{"booking_splits", "chk_booking_splits_status", "status IN ('OPEN','COMPLETED','EXPIRED','CANCELLED')"},
	{"booking_splits", "chk_booking_splits_pricing_mode", "pricing_mode IN ('FIXED','DYNAMIC')"},
	{"booking_splits", "chk_booking_splits_total", "total_cents >= 0"},
	{"booking_split_participants", "chk_split_participants_status", "status IN ('PENDING','PAID','CANCELLED')"},
	{"booking_split_participants", "chk_split_participants_amounts", "base_share_cents >= 0 AND share_cents >= 0 AND platform_fee_cents >= 0"},
}

var splitIndexes = []string{
	// expiry sweep
	`CREATE INDEX IF NOT EXISTS idx_booking_splits_open_deadline
		ON booking_splits (deadline_at) WHERE status = 'OPEN' AND deadline_at IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_split_participants_unpaid
		ON booking_split_participants (split_id) WHERE status <> 'PAID'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_split_participants_payment_intent
		ON booking_split_participants (payment_intent_id) WHERE payment_intent_id IS NOT NULL`,
}

// MigrateConstraints adds check constraints and partial indexes for the split tables.
func MigrateConstraints(db *gorm.DB) error {
	for _, c := range splitChecks {
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s`, c.table, c.name)).Error; err != nil {
			return fmt.Errorf("drop constraint %s: %w", c.name, err)
		}
		if err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s)`, c.table, c.name, c.expr)).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}

	for _, stmt := range splitIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}
