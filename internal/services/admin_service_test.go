package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/nyumba-homes/marketplace/internal/logger"
	"github.com/nyumba-homes/marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdminUpdateProfile(t *testing.T) {
	ctx := context.Background()
	admin := &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}
	agentRole := models.RoleAgent
	verified := true

	t.Run("promotes and verifies", func(t *testing.T) {
		// Arrange
		profiles := new(MockProfileRepository)
		target := uuid.New()
		profiles.On("UpdateAdminFields", ctx, target, &agentRole, &verified).
			Return(&models.Profile{ID: target, Role: models.RoleAgent, IsVerified: true}, nil)
		svc := NewAdminService(profiles, logger.New("test"))

		// Act
		p, err := svc.UpdateProfile(ctx, admin, target, ProfileUpdate{Role: &agentRole, IsVerified: &verified})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.RoleAgent, p.Role)
		assert.True(t, p.IsVerified)
	})

	t.Run("verification only", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		target := uuid.New()
		profiles.On("UpdateAdminFields", ctx, target, (*models.Role)(nil), &verified).
			Return(&models.Profile{ID: target, Role: models.RoleOwner, IsVerified: true}, nil)
		svc := NewAdminService(profiles, logger.New("test"))

		_, err := svc.UpdateProfile(ctx, admin, target, ProfileUpdate{IsVerified: &verified})

		require.NoError(t, err)
	})

	rejected := []struct {
		name   string
		id     uuid.UUID
		update ProfileUpdate
	}{
		{"empty update", uuid.New(), ProfileUpdate{}},
		{"unknown role", uuid.New(), ProfileUpdate{Role: func() *models.Role { r := models.Role("superuser"); return &r }()}},
		{"self demotion", admin.ID, ProfileUpdate{Role: &agentRole}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			profiles := new(MockProfileRepository)
			svc := NewAdminService(profiles, logger.New("test"))

			_, err := svc.UpdateProfile(ctx, admin, tt.id, tt.update)

			assert.ErrorIs(t, err, ErrInvalidInput)
			profiles.AssertNotCalled(t, "UpdateAdminFields", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("missing profile", func(t *testing.T) {
		profiles := new(MockProfileRepository)
		target := uuid.New()
		profiles.On("UpdateAdminFields", ctx, target, mock.Anything, mock.Anything).Return(nil, nil)
		svc := NewAdminService(profiles, logger.New("test"))

		_, err := svc.UpdateProfile(ctx, admin, target, ProfileUpdate{IsVerified: &verified})

		assert.ErrorIs(t, err, ErrProfileNotFound)
	})
}

func TestAdminListProfiles(t *testing.T) {
	ctx := context.Background()
	profiles := new(MockProfileRepository)
	profiles.On("List", ctx).Return(nil, errors.New("timeout"))
	svc := NewAdminService(profiles, logger.New("test"))

	_, err := svc.ListProfiles(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list profiles")
}
