package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// UserLookupService provides lightweight user details for display.
type UserLookupService struct {
	userRepo ports.UserRepository
}

var _ ports.UserLookupService = (*UserLookupService)(nil)

// NewUserLookupService creates a new UserLookupService.
func NewUserLookupService(userRepo ports.UserRepository) ports.UserLookupService {
	return &UserLookupService{
		userRepo: userRepo,
	}
}

// GetUserInfo returns the display projection for a single user.
func (s *UserLookupService) GetUserInfo(ctx context.Context, userID uuid.UUID) (*domain.UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.UserInfo{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

// GetUserInfos returns display projections for the provided ids. Unknown ids
// are skipped rather than failing the whole lookup.
func (s *UserLookupService) GetUserInfos(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.UserInfo, error) {
	uniqueIDs := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == uuid.Nil {
			continue
		}
		uniqueIDs[id] = struct{}{}
	}

	results := make(map[uuid.UUID]*domain.UserInfo, len(uniqueIDs))
	for id := range uniqueIDs {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				continue
			}
			return nil, err
		}

		results[id] = &domain.UserInfo{
			ID:       user.ID,
			FullName: user.FullName,
			Email:    user.Email,
			Role:     user.Role,
		}
	}

	return results, nil
}
