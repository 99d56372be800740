package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/nyumba-homes/marketplace/internal/repository"
)

// ProfileUpdate is an admin change to a profile. Nil fields are left alone.
type ProfileUpdate struct {
	Role       *models.Role
	IsVerified *bool
}

// AdminService defines profile administration.
type AdminService interface {
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	// UpdateProfile changes a profile's role or verification flag.
	// Returns ErrProfileNotFound if the profile does not exist.
	UpdateProfile(ctx context.Context, admin *models.Profile, id uuid.UUID, update ProfileUpdate) (*models.Profile, error)
}

type adminService struct {
	profiles repository.ProfileRepository
	log      *logger.Logger
}

// NewAdminService creates a new instance of AdminService.
func NewAdminService(profiles repository.ProfileRepository, log *logger.Logger) AdminService {
	return &adminService{profiles: profiles, log: log.Component("admin_service")}
}

func (s *adminService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (s *adminService) UpdateProfile(ctx context.Context, admin *models.Profile, id uuid.UUID, update ProfileUpdate) (*models.Profile, error) {
	if update.Role == nil && update.IsVerified == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if update.Role != nil && !update.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *update.Role)
	}
	if admin.ID == id && update.Role != nil && *update.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", ErrInvalidInput)
	}

	p, err := s.profiles.UpdateAdminFields(ctx, id, update.Role, update.IsVerified)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}

	fields := map[string]interface{}{
		"profile_id": id.String(),
		"admin_id":   admin.ID.String(),
		"role":       string(p.Role),
		"verified":   p.IsVerified,
	}
	s.log.Info("Profile updated by admin", fields)
	return p, nil
}
