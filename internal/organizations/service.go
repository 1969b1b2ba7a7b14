package organizations

import (
	"context"
	"net/http"

	"organizer/internal/shared/apperror"

	"github.com/google/uuid"
)

type Service interface {
	// ResolveMembership checks that userID belongs to orgID with one of the
	// allowed roles and that the organization is active.
	ResolveMembership(ctx context.Context, orgID uint, userID uuid.UUID, allowed []Role) (*Organization, *OrganizationMember, error)
	GetOrganization(ctx context.Context, orgID uint) (*Organization, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func forbidden() *apperror.Error {
	return apperror.New(apperror.CodeForbidden, http.StatusForbidden, "You do not have access to this organization")
}

func (s *service) ResolveMembership(ctx context.Context, orgID uint, userID uuid.UUID, allowed []Role) (*Organization, *OrganizationMember, error) {
	member, err := s.repo.FindMembership(ctx, orgID, userID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil || !HasRole(member.Role, allowed) {
		return nil, nil, forbidden()
	}

	org := member.Organization
	if org == nil {
		org, err = s.repo.FindByID(ctx, orgID)
		if err != nil {
			return nil, nil, err
		}
	}
	if org == nil || org.Status != StatusActive {
		return nil, nil, forbidden()
	}

	return org, member, nil
}

func (s *service) GetOrganization(ctx context.Context, orgID uint) (*Organization, error) {
	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperror.NotFound("Organization not found")
	}
	return org, nil
}
