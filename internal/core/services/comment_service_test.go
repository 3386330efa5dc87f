package services_test

import (
	"context"
	"strings"
	"testing"

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

type commentServiceFixture struct {
	commentRepo *mocks.MockCommentRepository
	eventRepo   *mocks.MockTicketEventRepository
	ticketSvc   *mocks.MockTicketService
	authzSvc    *mocks.MockAuthorizationService
	notifier    *mocks.MockNotifier
	publisher   *mocks.MockEventPublisher
	svc         ports.CommentService
}

func newCommentServiceFixture() *commentServiceFixture {
	f := &commentServiceFixture{
		commentRepo: mocks.NewMockCommentRepository(),
		eventRepo:   mocks.NewMockTicketEventRepository(),
		ticketSvc:   mocks.NewMockTicketService(),
		authzSvc:    mocks.NewMockAuthorizationService(),
		notifier:    mocks.NewMockNotifier(),
		publisher:   mocks.NewMockEventPublisher(),
	}
	f.svc = services.NewCommentService(
		f.commentRepo, f.eventRepo, f.ticketSvc, f.authzSvc, f.notifier, f.publisher,
		mocks.NewMockTransactionManager())
	return f
}

func TestCommentService_CreateComment(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	ticket := &domain.Ticket{ID: 1, Number: "HD-000001", Title: "VPN down", Status: domain.StatusOpen, ClientID: authorID}

	t.Run("creates and sanitizes a comment", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.authzSvc.On("Can", ctx, authorID, "comments:create").Return(true, nil)
		f.ticketSvc.On("GetTicket", ctx, int64(1), authorID).Return(ticket, nil)
		f.commentRepo.On("Create", ctx, mock.MatchedBy(func(c *domain.Comment) bool {
			// The script tag must be gone before persistence.
			return c.Body != "" && !strings.Contains(c.Body, "<script>")
		})).Return(&domain.Comment{ID: 10, TicketID: 1, AuthorID: authorID, Body: "<p>hello</p>"}, nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(&domain.TicketEvent{ID: 1}, nil)
		f.publisher.On("Publish", mock.Anything).Maybe()

		comment, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			TicketID: 1,
			ActorID:  authorID,
			Body:     `<p>hello</p><script>alert(1)</script>`,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(10), comment.ID)
		f.commentRepo.AssertExpectations(t)
	})

	t.Run("whitespace-only body is rejected before any repository call", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.authzSvc.On("Can", ctx, authorID, "comments:create").Return(true, nil)
		f.ticketSvc.On("GetTicket", ctx, int64(1), authorID).Return(ticket, nil)

		_, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			TicketID: 1,
			ActorID:  authorID,
			Body:     "   \n\t ",
		})

		assert.ErrorIs(t, err, apperrors.ErrCommentBodyRequired)
		f.commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("timeline write failure fails the creation", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.authzSvc.On("Can", ctx, authorID, "comments:create").Return(true, nil)
		f.ticketSvc.On("GetTicket", ctx, int64(1), authorID).Return(ticket, nil)
		f.commentRepo.On("Create", ctx, mock.AnythingOfType("*domain.Comment")).
			Return(&domain.Comment{ID: 10, TicketID: 1, AuthorID: authorID, Body: "<p>hello</p>"}, nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(nil, assert.AnError)

		_, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			TicketID: 1,
			ActorID:  authorID,
			Body:     "<p>hello</p>",
		})

		assert.Error(t, err)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("no ticket access means no comment", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.authzSvc.On("Can", ctx, authorID, "comments:create").Return(true, nil)
		f.ticketSvc.On("GetTicket", ctx, int64(1), authorID).Return(nil, apperrors.ErrForbidden)

		_, err := f.svc.CreateComment(ctx, ports.CreateCommentParams{
			TicketID: 1,
			ActorID:  authorID,
			Body:     "<p>hi</p>",
		})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.commentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCommentService_UpdateComment(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	comment := &domain.Comment{ID: 10, TicketID: 1, AuthorID: authorID, Body: "<p>original</p>"}

	t.Run("author can edit", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.commentRepo.On("GetByID", ctx, int64(10)).Return(comment, nil)
		f.commentRepo.On("Update", ctx, comment).Return(comment, nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(&domain.TicketEvent{ID: 2}, nil)
		f.publisher.On("Publish", mock.Anything).Maybe()

		updated, err := f.svc.UpdateComment(ctx, ports.UpdateCommentParams{
			CommentID: 10,
			ActorID:   authorID,
			Body:      "<p>edited</p>",
		})

		require.NoError(t, err)
		assert.Equal(t, "<p>edited</p>", updated.Body)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.commentRepo.On("GetByID", ctx, int64(10)).Return(comment, nil)

		_, err := f.svc.UpdateComment(ctx, ports.UpdateCommentParams{
			CommentID: 10,
			ActorID:   uuid.New(),
			Body:      "<p>hijacked</p>",
		})

		assert.ErrorIs(t, err, apperrors.ErrNotCommentAuthor)
		f.commentRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	comment := &domain.Comment{ID: 11, TicketID: 1, AuthorID: authorID, Body: "<p>bye</p>"}

	t.Run("author can delete", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.commentRepo.On("GetByID", ctx, int64(11)).Return(comment, nil)
		f.commentRepo.On("Delete", ctx, int64(11)).Return(nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(&domain.TicketEvent{ID: 3}, nil)
		f.publisher.On("Publish", mock.Anything).Maybe()

		err := f.svc.DeleteComment(ctx, ports.DeleteCommentParams{CommentID: 11, ActorID: authorID})

		require.NoError(t, err)
		f.commentRepo.AssertExpectations(t)
	})

	t.Run("non-author is rejected", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.commentRepo.On("GetByID", ctx, int64(11)).Return(comment, nil)

		err := f.svc.DeleteComment(ctx, ports.DeleteCommentParams{CommentID: 11, ActorID: uuid.New()})

		assert.ErrorIs(t, err, apperrors.ErrNotCommentAuthor)
		f.commentRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestCommentService_GetCommentsForTicket(t *testing.T) {
	ctx := context.Background()
	viewerID := uuid.New()
	ticket := &domain.Ticket{ID: 1, Status: domain.StatusOpen, ClientID: viewerID}

	t.Run("returns comments after the cursor", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.authzSvc.On("Can", ctx, viewerID, "comments:read").Return(true, nil)
		f.ticketSvc.On("GetTicket", ctx, int64(1), viewerID).Return(ticket, nil)
		f.commentRepo.On("ListByTicketID", ctx, int64(1), int64(5), 50).
			Return([]*domain.Comment{{ID: 6}}, nil)

		comments, err := f.svc.GetCommentsForTicket(ctx, ports.GetCommentsParams{
			TicketID: 1,
			ActorID:  viewerID,
			AfterID:  5,
			Limit:    50,
		})

		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, int64(6), comments[0].ID)
	})

	t.Run("inaccessible ticket is forbidden", func(t *testing.T) {
		f := newCommentServiceFixture()
		f.authzSvc.On("Can", ctx, viewerID, "comments:read").Return(true, nil)
		f.ticketSvc.On("GetTicket", ctx, int64(1), viewerID).Return(nil, apperrors.ErrTicketNotFound)

		_, err := f.svc.GetCommentsForTicket(ctx, ports.GetCommentsParams{
			TicketID: 1,
			ActorID:  viewerID,
		})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
