package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// AssigneeService implements business logic for listing assignable users.
type AssigneeService struct {
	userRepo ports.UserRepository
	authzSvc ports.AuthorizationService
}

var _ ports.AssigneeService = (*AssigneeService)(nil)

// NewAssigneeService creates a new assignee service.
func NewAssigneeService(userRepo ports.UserRepository, authzSvc ports.AuthorizationService) ports.AssigneeService {
	return &AssigneeService{
		userRepo: userRepo,
		authzSvc: authzSvc,
	}
}

// ListAssignableUsers returns the technicians a ticket can be routed to.
func (s *AssigneeService) ListAssignableUsers(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error) {
	canAssign, err := s.authzSvc.Can(ctx, actorID, PermTicketsAssign)
	if err != nil {
		return nil, err
	}
	if !canAssign {
		return nil, apperrors.ErrForbidden
	}

	return s.userRepo.ListByRole(ctx, domain.RoleTechnician)
}
