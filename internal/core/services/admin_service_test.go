package services_test

import (
	"context"
	"testing"
	"unicode"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/mocks"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
	"github.com/quickdesk/helpdesk-backend/internal/core/services"
)

func newAdminFixture(t *testing.T, actorRole domain.UserRole) (*mocks.MockUserRepository, uuid.UUID, ports.AdminService) {
	t.Helper()

	actorID := uuid.New()
	userRepo := mocks.NewMockUserRepository()
	userRepo.On("GetByID", context.Background(), actorID).
		Return(&domain.User{ID: actorID, Role: actorRole, IsActive: true}, nil)

	authzSvc := services.NewAuthorizationService(userRepo)
	svc := services.NewAdminService(userRepo, authzSvc)

	return userRepo, actorID, svc
}

func TestAdminService_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("admin gets the full list", func(t *testing.T) {
		userRepo, actorID, svc := newAdminFixture(t, domain.RoleAdmin)
		expected := []*domain.User{
			{ID: uuid.New(), FullName: "Active Tech", Role: domain.RoleTechnician, IsActive: true},
			{ID: uuid.New(), FullName: "Blocked Client", Role: domain.RoleClient, IsActive: false},
		}
		userRepo.On("List", ctx).Return(expected, nil)

		users, err := svc.ListUsers(ctx, actorID)

		require.NoError(t, err)
		assert.Equal(t, expected, users)
	})

	t.Run("technician is forbidden", func(t *testing.T) {
		_, actorID, svc := newAdminFixture(t, domain.RoleTechnician)

		_, err := svc.ListUsers(ctx, actorID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestAdminService_UpdateUserRole(t *testing.T) {
	ctx := context.Background()

	t.Run("promotes a client to technician", func(t *testing.T) {
		userRepo, actorID, svc := newAdminFixture(t, domain.RoleAdmin)
		targetID := uuid.New()
		userRepo.On("GetByID", ctx, targetID).
			Return(&domain.User{ID: targetID, Role: domain.RoleClient, IsActive: true}, nil)
		userRepo.On("SetRole", ctx, targetID, domain.RoleTechnician).Return(nil)

		err := svc.UpdateUserRole(ctx, actorID, targetID, domain.RoleTechnician)

		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, actorID, svc := newAdminFixture(t, domain.RoleAdmin)

		err := svc.UpdateUserRole(ctx, actorID, uuid.New(), domain.UserRole("superuser"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRole)
	})

	t.Run("admin cannot change own role", func(t *testing.T) {
		_, actorID, svc := newAdminFixture(t, domain.RoleAdmin)

		err := svc.UpdateUserRole(ctx, actorID, actorID, domain.RoleClient)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown target user", func(t *testing.T) {
		userRepo, actorID, svc := newAdminFixture(t, domain.RoleAdmin)
		targetID := uuid.New()
		userRepo.On("GetByID", ctx, targetID).Return(nil, apperrors.ErrUserNotFound)

		err := svc.UpdateUserRole(ctx, actorID, targetID, domain.RoleTechnician)

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestAdminService_UpdateUserStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates a user", func(t *testing.T) {
		userRepo, actorID, svc := newAdminFixture(t, domain.RoleAdmin)
		targetID := uuid.New()
		userRepo.On("GetByID", ctx, targetID).
			Return(&domain.User{ID: targetID, Role: domain.RoleClient, IsActive: true}, nil)
		userRepo.On("SetActive", ctx, targetID, false).Return(nil)

		err := svc.UpdateUserStatus(ctx, actorID, targetID, false)

		require.NoError(t, err)
		userRepo.AssertExpectations(t)
	})

	t.Run("admin cannot deactivate self", func(t *testing.T) {
		_, actorID, svc := newAdminFixture(t, domain.RoleAdmin)

		err := svc.UpdateUserStatus(ctx, actorID, actorID, false)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("reactivating self is a no-op but allowed", func(t *testing.T) {
		userRepo, actorID, svc := newAdminFixture(t, domain.RoleAdmin)
		userRepo.On("SetActive", ctx, actorID, true).Return(nil)

		err := svc.UpdateUserStatus(ctx, actorID, actorID, true)

		require.NoError(t, err)
	})

	t.Run("client is forbidden", func(t *testing.T) {
		_, actorID, svc := newAdminFixture(t, domain.RoleClient)

		err := svc.UpdateUserStatus(ctx, actorID, uuid.New(), false)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestAdminService_ResetUserPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("generates a valid temporary password", func(t *testing.T) {
		userRepo, actorID, svc := newAdminFixture(t, domain.RoleAdmin)
		targetID := uuid.New()
		userRepo.On("GetByID", ctx, targetID).
			Return(&domain.User{ID: targetID, Role: domain.RoleClient, IsActive: true}, nil)
		userRepo.On("UpdatePassword", ctx, targetID, mock.AnythingOfType("string")).Return(nil)

		password, err := svc.ResetUserPassword(ctx, actorID, targetID)

		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(password), domain.MinPasswordLength)

		var hasUpper, hasLower, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		assert.True(t, hasUpper, "expected an uppercase letter")
		assert.True(t, hasLower, "expected a lowercase letter")
		assert.True(t, hasDigit, "expected a digit")
	})

	t.Run("technician is forbidden", func(t *testing.T) {
		_, actorID, svc := newAdminFixture(t, domain.RoleTechnician)

		_, err := svc.ResetUserPassword(ctx, actorID, uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
