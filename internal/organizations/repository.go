package organizations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, id uint) (*Organization, error)
	// FindMembership returns the membership with its organization preloaded,
	// or nil, nil when the user is not a member.
	FindMembership(ctx context.Context, orgID uint, userID uuid.UUID) (*OrganizationMember, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uint) (*Organization, error) {
	var org Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) FindMembership(ctx context.Context, orgID uint, userID uuid.UUID) (*OrganizationMember, error) {
	var member OrganizationMember
	err := r.db.WithContext(ctx).
		Preload("Organization").
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}
