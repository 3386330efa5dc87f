package services

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// AdminService implements user administration. All operations are gated on
// the users:manage permission, which only the admin role carries.
type AdminService struct {
	userRepo ports.UserRepository
	authzSvc ports.AuthorizationService
}

var _ ports.AdminService = (*AdminService)(nil)

// NewAdminService creates a new service for user administration.
func NewAdminService(
	userRepo ports.UserRepository,
	authzSvc ports.AuthorizationService,
) ports.AdminService {
	return &AdminService{
		userRepo: userRepo,
		authzSvc: authzSvc,
	}
}

// ListUsers returns every account, active or not.
func (s *AdminService) ListUsers(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error) {
	if err := s.requireManage(ctx, actorID); err != nil {
		return nil, err
	}

	return s.userRepo.List(ctx)
}

// UpdateUserRole changes a user's role. The change takes effect on the
// user's next request; outstanding tokens are not revoked.
func (s *AdminService) UpdateUserRole(ctx context.Context, actorID, userID uuid.UUID, role domain.UserRole) error {
	if err := s.requireManage(ctx, actorID); err != nil {
		return err
	}

	if !domain.IsValidRole(role) {
		return apperrors.ErrInvalidRole
	}

	// Admins cannot demote themselves; another admin has to do it.
	if userID == actorID {
		return apperrors.ErrForbidden
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.SetRole(ctx, userID, role)
}

// UpdateUserStatus activates or deactivates an account. Deactivated users
// fail authorization checks but their tickets and comments remain.
func (s *AdminService) UpdateUserStatus(ctx context.Context, actorID, userID uuid.UUID, isActive bool) error {
	if err := s.requireManage(ctx, actorID); err != nil {
		return err
	}

	if userID == actorID && !isActive {
		return apperrors.ErrForbidden
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	return s.userRepo.SetActive(ctx, userID, isActive)
}

// ResetUserPassword replaces the user's password with a generated temporary
// one and returns it in plain text, once, to the caller.
func (s *AdminService) ResetUserPassword(ctx context.Context, actorID, userID uuid.UUID) (string, error) {
	if err := s.requireManage(ctx, actorID); err != nil {
		return "", err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	temporaryPassword, err := generateTemporaryPassword(12)
	if err != nil {
		return "", err
	}

	hashedPassword, err := domain.HashPassword(temporaryPassword)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return "", err
	}

	return temporaryPassword, nil
}

func (s *AdminService) requireManage(ctx context.Context, actorID uuid.UUID) error {
	allowed, err := s.authzSvc.Can(ctx, actorID, PermUsersManage)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// generateTemporaryPassword builds a random password that satisfies the
// domain password rules: at least one upper, one lower, one digit.
func generateTemporaryPassword(length int) (string, error) {
	const upper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const lower = "abcdefghijklmnopqrstuvwxyz"
	const digits = "0123456789"
	const all = upper + lower + digits

	if length < domain.MinPasswordLength {
		length = domain.MinPasswordLength
	}

	password := make([]byte, length)

	sets := []string{upper, lower, digits}
	for i := 0; i < len(sets); i++ {
		char, err := randomChar(sets[i])
		if err != nil {
			return "", err
		}
		password[i] = char
	}

	for i := len(sets); i < length; i++ {
		char, err := randomChar(all)
		if err != nil {
			return "", err
		}
		password[i] = char
	}

	// Shuffle so the guaranteed characters do not sit at fixed positions.
	for i := len(password) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(jBig.Int64())
		password[i], password[j] = password[j], password[i]
	}

	return string(password), nil
}

func randomChar(source string) (byte, error) {
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(source))))
	if err != nil {
		return 0, err
	}
	return source[idx.Int64()], nil
}
