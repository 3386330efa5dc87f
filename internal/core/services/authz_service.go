package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// Permission names used across the services. Permissions attach to roles,
// never directly to users.
const (
	PermTicketsCreate         = "tickets:create"
	PermTicketsRead           = "tickets:read"
	PermTicketsReadAll        = "tickets:read:all"
	PermTicketsListAll        = "tickets:list:all"
	PermTicketsUpdateStatus   = "tickets:update:status"
	PermTicketsUpdatePriority = "tickets:update:priority"
	PermTicketsAssign         = "tickets:assign"
	PermCommentsCreate        = "comments:create"
	PermCommentsRead          = "comments:read"
	PermDashboardViewAll      = "dashboard:view:all"
	PermUsersManage           = "users:manage"
)

// rolePermissions is the static RBAC table. Clients only ever see their own
// tickets; technicians see everything but cannot manage users.
var rolePermissions = map[domain.UserRole][]string{
	domain.RoleClient: {
		PermTicketsCreate,
		PermTicketsRead,
		PermCommentsCreate,
		PermCommentsRead,
	},
	domain.RoleTechnician: {
		PermTicketsRead,
		PermTicketsReadAll,
		PermTicketsListAll,
		PermTicketsUpdateStatus,
		PermTicketsUpdatePriority,
		PermTicketsAssign,
		PermCommentsCreate,
		PermCommentsRead,
	},
	domain.RoleAdmin: {
		PermTicketsCreate,
		PermTicketsRead,
		PermTicketsReadAll,
		PermTicketsListAll,
		PermTicketsUpdateStatus,
		PermTicketsUpdatePriority,
		PermTicketsAssign,
		PermCommentsCreate,
		PermCommentsRead,
		PermDashboardViewAll,
		PermUsersManage,
	},
}

// AuthorizationService implements role-based permission checks. The role is
// resolved through the user repository on every check, so a role change takes
// effect on the next request without invalidating sessions.
type AuthorizationService struct {
	userRepo ports.UserRepository
}

// Ensure implementation matches the interface.
var _ ports.AuthorizationService = (*AuthorizationService)(nil)

// NewAuthorizationService creates a new service for authorization logic.
func NewAuthorizationService(userRepo ports.UserRepository) ports.AuthorizationService {
	return &AuthorizationService{
		userRepo: userRepo,
	}
}

// Can checks if a user has a specific permission.
func (s *AuthorizationService) Can(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	permissions, err := s.GetPermissions(ctx, userID)
	if err != nil {
		// If permissions cannot be resolved (e.g. db down), deny access.
		return false, err
	}

	for _, p := range permissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// GetPermissions returns all permissions for a user based on their role.
// Deactivated users hold no permissions at all.
func (s *AuthorizationService) GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return []string{}, nil
	}

	permissions, ok := rolePermissions[user.Role]
	if !ok {
		return nil, apperrors.ErrInvalidRole
	}
	return permissions, nil
}
