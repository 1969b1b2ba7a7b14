package splits

import (
	"context"
	"errors"
	"time"

	"organizer/internal/bookings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// FindByBookingID returns nil, nil when the booking has no split.
	FindByBookingID(ctx context.Context, bookingID uint) (*BookingSplit, error)
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]BookingSplit, error)
	// MarkExpired flips the given splits from OPEN to EXPIRED and returns the
	// number of rows changed.
	MarkExpired(ctx context.Context, splitIDs []uint) (int64, error)

	// Transaction runs fn in a single database transaction.
	Transaction(ctx context.Context, fn func(tx TxRepository) error) error
}

// TxRepository is the write side used inside a transaction.
type TxRepository interface {
	// LockByBookingID loads the split with SELECT ... FOR UPDATE. Returns nil,
	// nil when it does not exist.
	LockByBookingID(ctx context.Context, bookingID uint) (*BookingSplit, error)
	SaveSplit(ctx context.Context, split *BookingSplit) error
	ReplaceParticipants(ctx context.Context, splitID uint, participants []BookingSplitParticipant) error
	UpdateParticipantQuote(ctx context.Context, participantID uint, shareCents, platformFeeCents int64) error
	MarkParticipantPaid(ctx context.Context, participantID uint, paymentIntentID string, paidAt time.Time) error
	CountUnpaid(ctx context.Context, splitID uint) (int64, error)
	UpdateSplitStatus(ctx context.Context, splitID uint, status Status) error

	// Bookings exposes the bookings repository bound to the same transaction.
	Bookings() bookings.Repository
}

type repository struct {
	db       *gorm.DB
	bookings bookings.Repository
}

func NewRepository(db *gorm.DB, bookingRepo bookings.Repository) Repository {
	return &repository{db: db, bookings: bookingRepo}
}

func orderedParticipants(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

func (r *repository) FindByBookingID(ctx context.Context, bookingID uint) (*BookingSplit, error) {
	var split BookingSplit
	err := r.db.WithContext(ctx).
		Preload("Participants", orderedParticipants).
		Where("booking_id = ?", bookingID).
		First(&split).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &split, nil
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]BookingSplit, error) {
	var splits []BookingSplit
	err := r.db.WithContext(ctx).
		Preload("Participants", orderedParticipants).
		Where("status = ? AND deadline_at IS NOT NULL AND deadline_at <= ?", StatusOpen, now).
		Order("deadline_at ASC").
		Limit(limit).
		Find(&splits).Error
	if err != nil {
		return nil, err
	}
	return splits, nil
}

func (r *repository) MarkExpired(ctx context.Context, splitIDs []uint) (int64, error) {
	if len(splitIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&BookingSplit{}).
		Where("id IN ? AND status = ?", splitIDs, StatusOpen).
		Updates(map[string]interface{}{
			"status":     StatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *repository) Transaction(ctx context.Context, fn func(tx TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{db: tx, bookings: r.bookings.WithTx(tx)})
	})
}

type txRepository struct {
	db       *gorm.DB
	bookings bookings.Repository
}

func (t *txRepository) Bookings() bookings.Repository {
	return t.bookings
}

func (t *txRepository) LockByBookingID(ctx context.Context, bookingID uint) (*BookingSplit, error) {
	var split BookingSplit
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&split).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err = orderedParticipants(t.db.WithContext(ctx)).
		Where("split_id = ?", split.ID).
		Find(&split.Participants).Error
	if err != nil {
		return nil, err
	}
	return &split, nil
}

func (t *txRepository) SaveSplit(ctx context.Context, split *BookingSplit) error {
	participants := split.Participants
	split.Participants = nil
	defer func() { split.Participants = participants }()

	if split.ID == 0 {
		return t.db.WithContext(ctx).Create(split).Error
	}
	return t.db.WithContext(ctx).Save(split).Error
}

func (t *txRepository) ReplaceParticipants(ctx context.Context, splitID uint, participants []BookingSplitParticipant) error {
	db := t.db.WithContext(ctx)
	if err := db.Where("split_id = ?", splitID).Delete(&BookingSplitParticipant{}).Error; err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}
	for i := range participants {
		participants[i].SplitID = splitID
	}
	return db.Create(&participants).Error
}

func (t *txRepository) UpdateParticipantQuote(ctx context.Context, participantID uint, shareCents, platformFeeCents int64) error {
	return t.db.WithContext(ctx).
		Model(&BookingSplitParticipant{}).
		Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"share_cents":        shareCents,
			"platform_fee_cents": platformFeeCents,
			"updated_at":         time.Now(),
		}).Error
}

func (t *txRepository) MarkParticipantPaid(ctx context.Context, participantID uint, paymentIntentID string, paidAt time.Time) error {
	return t.db.WithContext(ctx).
		Model(&BookingSplitParticipant{}).
		Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"status":            ParticipantStatusPaid,
			"payment_intent_id": paymentIntentID,
			"paid_at":           paidAt,
			"updated_at":        time.Now(),
		}).Error
}

func (t *txRepository) CountUnpaid(ctx context.Context, splitID uint) (int64, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&BookingSplitParticipant{}).
		Where("split_id = ? AND status <> ?", splitID, ParticipantStatusPaid).
		Count(&count).Error
	return count, err
}

func (t *txRepository) UpdateSplitStatus(ctx context.Context, splitID uint, status Status) error {
	return t.db.WithContext(ctx).
		Model(&BookingSplit{}).
		Where("id = ?", splitID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
