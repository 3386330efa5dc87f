package services_test

import (
	"context"
	"io"
	"log/slog"
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

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ticketServiceFixture struct {
	ticketRepo *mocks.MockTicketRepository
	eventRepo  *mocks.MockTicketEventRepository
	authzSvc   *mocks.MockAuthorizationService
	notifier   *mocks.MockNotifier
	publisher  *mocks.MockEventPublisher
	svc        ports.TicketService
}

func newTicketServiceFixture() *ticketServiceFixture {
	f := &ticketServiceFixture{
		ticketRepo: mocks.NewMockTicketRepository(),
		eventRepo:  mocks.NewMockTicketEventRepository(),
		authzSvc:   mocks.NewMockAuthorizationService(),
		notifier:   mocks.NewMockNotifier(),
		publisher:  mocks.NewMockEventPublisher(),
	}
	f.svc = services.NewTicketService(
		f.ticketRepo, f.eventRepo, f.authzSvc, f.notifier, f.publisher, newTestLogger())
	return f
}

func TestTicketService_CreateTicket(t *testing.T) {
	ctx := context.Background()
	clientID := uuid.New()

	t.Run("creates a valid ticket", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, clientID, "tickets:create").Return(true, nil)
		f.ticketRepo.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).
			Return(&domain.Ticket{ID: 1, Number: "HD-000001", Title: "Printer broken", Status: domain.StatusOpen}, nil)

		ticket, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			Title:    "Printer broken",
			Priority: domain.PriorityHigh,
			ClientID: clientID,
		})

		require.NoError(t, err)
		assert.Equal(t, "HD-000001", ticket.Number)
		f.ticketRepo.AssertExpectations(t)
	})

	t.Run("denies without permission", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, clientID, "tickets:create").Return(false, nil)

		_, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			Title:    "Printer broken",
			ClientID: clientID,
		})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.ticketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation failure never reaches the repository", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, clientID, "tickets:create").Return(true, nil)

		_, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			Title:    "",
			ClientID: clientID,
		})

		require.Error(t, err)
		f.ticketRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTicketService_GetTicket(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	strangerID := uuid.New()
	ticket := &domain.Ticket{ID: 7, Title: "VPN down", Status: domain.StatusOpen, ClientID: ownerID}

	t.Run("owner can view", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, ownerID, "tickets:read").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(7)).Return(ticket, nil)

		got, err := f.svc.GetTicket(ctx, 7, ownerID)

		require.NoError(t, err)
		assert.Equal(t, ticket, got)
	})

	t.Run("stranger without read:all is denied", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, strangerID, "tickets:read").Return(true, nil)
		f.authzSvc.On("Can", ctx, strangerID, "tickets:read:all").Return(false, nil)
		f.ticketRepo.On("GetByID", ctx, int64(7)).Return(ticket, nil)

		_, err := f.svc.GetTicket(ctx, 7, strangerID)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("technician with read:all can view", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, strangerID, "tickets:read").Return(true, nil)
		f.authzSvc.On("Can", ctx, strangerID, "tickets:read:all").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(7)).Return(ticket, nil)

		got, err := f.svc.GetTicket(ctx, 7, strangerID)

		require.NoError(t, err)
		assert.Equal(t, ticket, got)
	})
}

func TestTicketService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	clientID := uuid.New()

	t.Run("valid transition persists, records an event and closes with a timestamp", func(t *testing.T) {
		f := newTicketServiceFixture()
		ticket := &domain.Ticket{ID: 3, Number: "HD-000003", Title: "Slow laptop", Status: domain.StatusInProgress, ClientID: clientID}

		f.authzSvc.On("Can", ctx, actorID, "tickets:update:status").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(3)).Return(ticket, nil)
		f.ticketRepo.On("Update", ctx, ticket).Return(ticket, nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(&domain.TicketEvent{ID: 1}, nil)
		f.notifier.On("Notify", mock.Anything, mock.Anything).Maybe()
		f.publisher.On("Publish", mock.Anything).Maybe()

		updated, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: 3,
			Status:   domain.StatusClosed,
			ActorID:  actorID,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusClosed, updated.Status)
		require.NotNil(t, updated.ClosedAt)
		f.eventRepo.AssertExpectations(t)
		f.svc.Shutdown()
	})

	t.Run("closed tickets reject further transitions", func(t *testing.T) {
		f := newTicketServiceFixture()
		ticket := &domain.Ticket{ID: 4, Status: domain.StatusClosed, ClientID: clientID}

		f.authzSvc.On("Can", ctx, actorID, "tickets:update:status").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(4)).Return(ticket, nil)

		_, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{
			TicketID: 4,
			Status:   domain.StatusOpen,
			ActorID:  actorID,
		})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatusTransition)
		f.ticketRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTicketService_AssignTicket(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	techID := uuid.New()

	t.Run("assigns to technician", func(t *testing.T) {
		f := newTicketServiceFixture()
		ticket := &domain.Ticket{ID: 5, Status: domain.StatusOpen, ClientID: uuid.New()}

		f.authzSvc.On("Can", ctx, actorID, "tickets:assign").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(5)).Return(ticket, nil)
		f.ticketRepo.On("Update", ctx, ticket).Return(ticket, nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(&domain.TicketEvent{ID: 2}, nil)
		f.publisher.On("Publish", mock.Anything).Maybe()

		updated, err := f.svc.AssignTicket(ctx, ports.AssignTicketParams{
			TicketID:   5,
			AssigneeID: &techID,
			ActorID:    actorID,
		})

		require.NoError(t, err)
		require.NotNil(t, updated.AssigneeID)
		assert.Equal(t, techID, *updated.AssigneeID)
	})

	t.Run("nil assignee unassigns", func(t *testing.T) {
		f := newTicketServiceFixture()
		ticket := &domain.Ticket{ID: 6, Status: domain.StatusInProgress, ClientID: uuid.New(), AssigneeID: &techID}

		f.authzSvc.On("Can", ctx, actorID, "tickets:assign").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(6)).Return(ticket, nil)
		f.ticketRepo.On("Update", ctx, ticket).Return(ticket, nil)
		f.eventRepo.On("Create", ctx, mock.AnythingOfType("*domain.TicketEvent")).
			Return(&domain.TicketEvent{ID: 3}, nil)
		f.publisher.On("Publish", mock.Anything).Maybe()

		updated, err := f.svc.AssignTicket(ctx, ports.AssignTicketParams{
			TicketID: 6,
			ActorID:  actorID,
		})

		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)
	})

	t.Run("closed tickets cannot be assigned", func(t *testing.T) {
		f := newTicketServiceFixture()
		ticket := &domain.Ticket{ID: 8, Status: domain.StatusClosed, ClientID: uuid.New()}

		f.authzSvc.On("Can", ctx, actorID, "tickets:assign").Return(true, nil)
		f.ticketRepo.On("GetByID", ctx, int64(8)).Return(ticket, nil)

		_, err := f.svc.AssignTicket(ctx, ports.AssignTicketParams{
			TicketID:   8,
			AssigneeID: &techID,
			ActorID:    actorID,
		})

		assert.ErrorIs(t, err, apperrors.ErrCannotAssignClosed)
	})
}

func TestTicketService_ListTickets(t *testing.T) {
	ctx := context.Background()
	viewerID := uuid.New()

	t.Run("privileged viewer lists unscoped", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, viewerID, "tickets:list:all").Return(true, nil)
		f.ticketRepo.On("List", ctx, mock.MatchedBy(func(filter ports.TicketFilter) bool {
			return filter.ClientID == nil
		})).Return([]*domain.Ticket{}, nil)

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{ViewerID: viewerID, Limit: 20})

		require.NoError(t, err)
		f.ticketRepo.AssertExpectations(t)
	})

	t.Run("client listing is scoped to their own tickets", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, viewerID, "tickets:list:all").Return(false, nil)
		f.ticketRepo.On("List", ctx, mock.MatchedBy(func(filter ports.TicketFilter) bool {
			return filter.ClientID != nil && *filter.ClientID == viewerID
		})).Return([]*domain.Ticket{}, nil)

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{ViewerID: viewerID, Limit: 20})

		require.NoError(t, err)
		f.ticketRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		f := newTicketServiceFixture()
		f.authzSvc.On("Can", ctx, viewerID, "tickets:list:all").Return(true, nil)
		bogus := "ON_FIRE"

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{ViewerID: viewerID, Status: &bogus})

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})
}
