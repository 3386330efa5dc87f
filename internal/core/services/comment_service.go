package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	"github.com/quickdesk/helpdesk-backend/internal/core/editor"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// CommentService implements the business logic for comments.
type CommentService struct {
	commentRepo ports.CommentRepository
	eventRepo   ports.TicketEventRepository
	ticketSvc   ports.TicketService
	authzSvc    ports.AuthorizationService
	notifier    ports.Notifier
	publisher   ports.EventPublisher
	txManager   ports.TransactionManager
	sanitizer   *editor.Sanitizer
}

// Ensure implementation matches the interface.
var _ ports.CommentService = (*CommentService)(nil)

// NewCommentService creates a new service for comment logic.
func NewCommentService(
	commentRepo ports.CommentRepository,
	eventRepo ports.TicketEventRepository,
	ticketSvc ports.TicketService,
	authzSvc ports.AuthorizationService,
	notifier ports.Notifier,
	publisher ports.EventPublisher,
	txManager ports.TransactionManager,
) ports.CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		eventRepo:   eventRepo,
		ticketSvc:   ticketSvc,
		authzSvc:    authzSvc,
		notifier:    notifier,
		publisher:   publisher,
		txManager:   txManager,
		sanitizer:   editor.NewSanitizer(),
	}
}

// canUserAccessTicket is a helper to check if a user can view a ticket,
// which is a prerequisite for viewing or making comments.
func (s *CommentService) canUserAccessTicket(ctx context.Context, ticketID int64, actorID uuid.UUID) (bool, error) {
	// We re-use the GetTicket service method, as it already contains
	// the necessary ownership and RBAC logic.
	_, err := s.ticketSvc.GetTicket(ctx, ticketID, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrForbidden) || errors.Is(err, apperrors.ErrTicketNotFound) {
			return false, apperrors.ErrForbidden // Return a generic Forbidden
		}
		return false, err // Other system error
	}
	return true, nil
}

// CreateComment adds a new comment to a ticket. Whitespace-only bodies are
// rejected by the domain before anything touches the repository.
func (s *CommentService) CreateComment(ctx context.Context, params ports.CreateCommentParams) (*domain.Comment, error) {
	// 1. Check permission to create comments.
	canCreate, err := s.authzSvc.Can(ctx, params.ActorID, PermCommentsCreate)
	if err != nil {
		return nil, err
	}
	if !canCreate {
		return nil, apperrors.ErrForbidden
	}

	// 2. Check if the user can access the ticket they're trying to comment on.
	// We use GetTicket directly here to fetch the ticket object for the notification.
	ticket, err := s.ticketSvc.GetTicket(ctx, params.TicketID, params.ActorID)
	if err != nil {
		// GetTicket already returns ErrForbidden if access is denied
		return nil, err
	}

	// 3. Validate, then strip markup the editor never produces.
	comment, err := domain.NewComment(params.TicketID, params.ActorID, params.Body)
	if err != nil {
		return nil, err
	}
	comment.Body = s.sanitizer.Sanitize(comment.Body)

	// 4. Persist the comment and its timeline entry together. A comment
	// that exists but never appeared in the timeline is a reconciliation
	// headache, so creation is the one comment write done transactionally.
	var newComment *domain.Comment
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created, err := s.commentRepo.Create(ctx, comment)
		if err != nil {
			return err
		}
		newComment = created

		raw, err := marshalEventPayload(domain.NewCommentSnapshot(created))
		if err != nil {
			return err
		}
		_, err = s.eventRepo.Create(ctx, &domain.TicketEvent{
			TicketID: created.TicketID,
			Type:     domain.EventCommentAdded,
			Payload:  raw,
			ActorID:  params.ActorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	// 5. Notify the ticket owner *unless* they wrote the comment themselves.
	if ticket.ClientID != params.ActorID {
		go s.notifier.Notify(context.Background(), ports.NotificationParams{
			RecipientUserID: ticket.ClientID,
			Subject:         fmt.Sprintf("A new comment was added to your ticket: %s", ticket.Number),
			Message:         fmt.Sprintf("A new comment has been added to your ticket '%s'.", ticket.Title),
			TicketID:        ticket.ID,
		})
	}

	// 6. Broadcast real-time event (asynchronously)
	go s.publisher.Publish(domain.Event{
		Type:     domain.EventCommentAdded,
		Payload:  domain.NewCommentSnapshot(newComment),
		TicketID: newComment.TicketID,
	})

	return newComment, nil
}

// UpdateComment edits a comment's body. Only the author may edit.
func (s *CommentService) UpdateComment(ctx context.Context, params ports.UpdateCommentParams) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, params.CommentID)
	if err != nil {
		return nil, err
	}

	if !comment.IsAuthoredBy(params.ActorID) {
		return nil, apperrors.ErrNotCommentAuthor
	}

	if err := comment.UpdateBody(params.Body); err != nil {
		return nil, err
	}
	comment.Body = s.sanitizer.Sanitize(comment.Body)

	updated, err := s.commentRepo.Update(ctx, comment)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, domain.EventCommentUpdated, updated, params.ActorID)

	go s.publisher.Publish(domain.Event{
		Type:     domain.EventCommentUpdated,
		Payload:  domain.NewCommentSnapshot(updated),
		TicketID: updated.TicketID,
	})

	return updated, nil
}

// DeleteComment removes a comment. Only the author may delete.
func (s *CommentService) DeleteComment(ctx context.Context, params ports.DeleteCommentParams) error {
	comment, err := s.commentRepo.GetByID(ctx, params.CommentID)
	if err != nil {
		return err
	}

	if !comment.IsAuthoredBy(params.ActorID) {
		return apperrors.ErrNotCommentAuthor
	}

	if err := s.commentRepo.Delete(ctx, params.CommentID); err != nil {
		return err
	}

	s.recordEvent(ctx, domain.EventCommentDeleted, comment, params.ActorID)

	go s.publisher.Publish(domain.Event{
		Type:     domain.EventCommentDeleted,
		Payload:  domain.NewCommentSnapshot(comment),
		TicketID: comment.TicketID,
	})

	return nil
}

// GetCommentsForTicket retrieves comments for a specific ticket, oldest
// first, after the given cursor.
func (s *CommentService) GetCommentsForTicket(ctx context.Context, params ports.GetCommentsParams) ([]*domain.Comment, error) {
	// 1. Check permission to read comments.
	canRead, err := s.authzSvc.Can(ctx, params.ActorID, PermCommentsRead)
	if err != nil {
		return nil, err
	}
	if !canRead {
		return nil, apperrors.ErrForbidden
	}

	// 2. Check if the user can access the ticket to read its comments.
	canAccess, err := s.canUserAccessTicket(ctx, params.TicketID, params.ActorID)
	if err != nil {
		return nil, err
	}
	if !canAccess {
		return nil, apperrors.ErrForbidden
	}

	// 3. Retrieve the comments.
	return s.commentRepo.ListByTicketID(ctx, params.TicketID, params.AfterID, params.Limit)
}

// recordEvent appends the comment change to the ticket timeline. Failures are
// swallowed: the timeline is best-effort, the comment write already happened.
func (s *CommentService) recordEvent(ctx context.Context, eventType domain.EventType, comment *domain.Comment, actorID uuid.UUID) {
	raw, err := marshalEventPayload(domain.NewCommentSnapshot(comment))
	if err != nil {
		return
	}
	_, _ = s.eventRepo.Create(ctx, &domain.TicketEvent{
		TicketID: comment.TicketID,
		Type:     eventType,
		Payload:  raw,
		ActorID:  actorID,
	})
}
