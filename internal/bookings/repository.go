package bookings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	// Lookups return nil, nil when the row does not exist.
	FindByID(ctx context.Context, id uint) (*Booking, error)
	FindByIDInOrganization(ctx context.Context, id, organizationID uint) (*Booking, error)
	FindInviteByToken(ctx context.Context, token string) (*BookingInvite, error)
	FindInvitesByIDs(ctx context.Context, bookingID uint, ids []uint) ([]BookingInvite, error)

	// EnsurePendingExpiry extends pending_expires_at to deadline when it is
	// unset or earlier. It never shortens an existing window.
	EnsurePendingExpiry(ctx context.Context, bookingID uint, deadline time.Time) error

	// MarkInviteAccepted moves a PENDING invite to ACCEPTED. Other states are left alone.
	MarkInviteAccepted(ctx context.Context, inviteID uint) error

	// WithTx returns a repository bound to tx.
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindByIDInOrganization(ctx context.Context, id, organizationID uint) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("id = ? AND organization_id = ?", id, organizationID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindInviteByToken(ctx context.Context, token string) (*BookingInvite, error) {
	var invite BookingInvite
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invite, nil
}

func (r *repository) FindInvitesByIDs(ctx context.Context, bookingID uint, ids []uint) ([]BookingInvite, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invites []BookingInvite
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND id IN ?", bookingID, ids).
		Find(&invites).Error
	if err != nil {
		return nil, err
	}
	return invites, nil
}

func (r *repository) EnsurePendingExpiry(ctx context.Context, bookingID uint, deadline time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND (pending_expires_at IS NULL OR pending_expires_at < ?)", bookingID, deadline).
		Updates(map[string]interface{}{
			"pending_expires_at": deadline,
			"updated_at":         time.Now(),
		}).Error
}

func (r *repository) MarkInviteAccepted(ctx context.Context, inviteID uint) error {
	return r.db.WithContext(ctx).
		Model(&BookingInvite{}).
		Where("id = ? AND status = ?", inviteID, InviteStatusPending).
		Updates(map[string]interface{}{
			"status":     InviteStatusAccepted,
			"updated_at": time.Now(),
		}).Error
}
