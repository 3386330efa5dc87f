package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// TicketService implements business logic for ticket management
type TicketService struct {
	ticketRepo ports.TicketRepository
	eventRepo  ports.TicketEventRepository
	authzSvc   ports.AuthorizationService
	notifier   ports.Notifier
	publisher  ports.EventPublisher
	logger     *slog.Logger
	wg         sync.WaitGroup
}

var _ ports.TicketService = (*TicketService)(nil)

// NewTicketService creates a new ticket service
func NewTicketService(
	ticketRepo ports.TicketRepository,
	eventRepo ports.TicketEventRepository,
	authzSvc ports.AuthorizationService,
	notifier ports.Notifier,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) ports.TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		authzSvc:   authzSvc,
		notifier:   notifier,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateTicket handles the use case for submitting a new ticket
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	// 1. Authorization Check
	canCreate, err := s.authzSvc.Can(ctx, params.ClientID, PermTicketsCreate)
	if err != nil {
		return nil, err
	}
	if !canCreate {
		return nil, apperrors.ErrForbidden
	}

	// 2. Create domain entity with validation
	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
		ClientID:    params.ClientID,
	})
	if err != nil {
		return nil, err // Validation errors are returned here
	}

	// 3. Persist; the repository allocates the id and ticket number.
	return s.ticketRepo.Create(ctx, ticket)
}

// GetTicket retrieves a specific ticket with authorization
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64, viewerID uuid.UUID) (*domain.Ticket, error) {
	// 1. Basic Authorization Check
	canRead, err := s.authzSvc.Can(ctx, viewerID, PermTicketsRead)
	if err != nil {
		return nil, err
	}
	if !canRead {
		return nil, apperrors.ErrForbidden
	}

	// 2. Fetch the ticket
	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	// 3. Check ownership or elevated permissions
	if !ticket.IsOwnedBy(viewerID) && !ticket.IsAssignedTo(viewerID) {
		canReadAll, _ := s.authzSvc.Can(ctx, viewerID, PermTicketsReadAll)
		if !canReadAll {
			return nil, apperrors.ErrForbidden
		}
	}

	return ticket, nil
}

// UpdateStatus changes a ticket's status with business rule enforcement
func (s *TicketService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Ticket, error) {
	// 1. Authorization Check
	canUpdate, err := s.authzSvc.Can(ctx, params.ActorID, PermTicketsUpdateStatus)
	if err != nil {
		return nil, err
	}
	if !canUpdate {
		return nil, apperrors.ErrForbidden
	}

	// 2. Fetch and update domain entity
	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	// 3. Apply status change (domain validates the transition)
	if err := ticket.UpdateStatus(params.Status); err != nil {
		return nil, err
	}

	// 4. Persist changes
	updatedTicket, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	// 5. Record the timeline event
	s.recordEvent(ctx, domain.EventStatusUpdated, updatedTicket.ID, params.ActorID,
		domain.NewTicketSnapshot(updatedTicket))

	// 6. Notify the client (async, in background context)
	if updatedTicket.ClientID != params.ActorID {
		s.notifyStatusUpdate(updatedTicket)
	}

	// 7. Broadcast real-time event (async)
	go s.publisher.Publish(domain.Event{
		Type:     domain.EventStatusUpdated,
		Payload:  domain.NewTicketSnapshot(updatedTicket),
		TicketID: updatedTicket.ID,
	})

	return updatedTicket, nil
}

// UpdatePriority changes a ticket's priority
func (s *TicketService) UpdatePriority(ctx context.Context, params ports.UpdatePriorityParams) (*domain.Ticket, error) {
	canUpdate, err := s.authzSvc.Can(ctx, params.ActorID, PermTicketsUpdatePriority)
	if err != nil {
		return nil, err
	}
	if !canUpdate {
		return nil, apperrors.ErrForbidden
	}

	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	if err := ticket.UpdatePriority(params.Priority); err != nil {
		return nil, err
	}

	return s.ticketRepo.Update(ctx, ticket)
}

// AssignTicket assigns a ticket to a technician, or unassigns it when the
// params carry a nil assignee.
func (s *TicketService) AssignTicket(ctx context.Context, params ports.AssignTicketParams) (*domain.Ticket, error) {
	// 1. Authorization Check
	canAssign, err := s.authzSvc.Can(ctx, params.ActorID, PermTicketsAssign)
	if err != nil {
		return nil, err
	}
	if !canAssign {
		return nil, apperrors.ErrForbidden
	}

	// 2. Fetch and update domain entity
	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return nil, err
	}

	// 3. Apply assignment (domain validates business rules)
	if params.AssigneeID == nil {
		err = ticket.Unassign()
	} else {
		err = ticket.Assign(*params.AssigneeID)
	}
	if err != nil {
		return nil, err
	}

	// 4. Persist changes
	updatedTicket, err := s.ticketRepo.Update(ctx, ticket)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, domain.EventTicketAssigned, updatedTicket.ID, params.ActorID,
		domain.NewTicketSnapshot(updatedTicket))

	go s.publisher.Publish(domain.Event{
		Type:     domain.EventTicketAssigned,
		Payload:  domain.NewTicketSnapshot(updatedTicket),
		TicketID: updatedTicket.ID,
	})

	return updatedTicket, nil
}

// ListTickets retrieves tickets based on user permissions
func (s *TicketService) ListTickets(ctx context.Context, params ports.ListTicketsParams) ([]*domain.Ticket, error) {
	canListAll, err := s.authzSvc.Can(ctx, params.ViewerID, PermTicketsListAll)
	if err != nil {
		return nil, err
	}

	filter := ports.TicketFilter{
		Limit:       params.Limit,
		Offset:      params.Offset,
		AssigneeID:  params.AssigneeID,
		Unassigned:  params.Unassigned,
		CreatedFrom: params.CreatedFrom,
		CreatedTo:   params.CreatedTo,
	}
	if params.Status != nil {
		status := domain.TicketStatus(*params.Status)
		if !status.IsValid() {
			return nil, apperrors.ErrInvalidStatus
		}
		filter.Status = &status
	}
	if params.Priority != nil {
		priority := domain.TicketPriority(*params.Priority)
		if !priority.IsValid() {
			return nil, apperrors.ErrInvalidPriority
		}
		filter.Priority = &priority
	}

	// Clients only ever see their own tickets.
	if !canListAll {
		viewerID := params.ViewerID
		filter.ClientID = &viewerID
	}

	return s.ticketRepo.List(ctx, filter)
}

// recordEvent appends to the ticket's persisted timeline. A failure here is
// logged but never fails the operation that triggered it.
func (s *TicketService) recordEvent(ctx context.Context, eventType domain.EventType, ticketID int64, actorID uuid.UUID, payload any) {
	raw, err := marshalEventPayload(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to marshal ticket event payload",
			"ticketId", ticketID, "type", eventType, "error", err)
		return
	}

	if _, err := s.eventRepo.Create(ctx, &domain.TicketEvent{
		TicketID: ticketID,
		Type:     eventType,
		Payload:  raw,
		ActorID:  actorID,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to record ticket event",
			"ticketId", ticketID, "type", eventType, "error", err)
	}
}

// notifyStatusUpdate sends email notification for status changes
func (s *TicketService) notifyStatusUpdate(ticket *domain.Ticket) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		ctx := context.Background()

		s.notifier.Notify(ctx, ports.NotificationParams{
			RecipientUserID: ticket.ClientID,
			Subject:         fmt.Sprintf("Your ticket status has been updated: %s", ticket.Number),
			Message:         fmt.Sprintf("The status of your ticket '%s' was changed to %s.", ticket.Title, ticket.Status),
			TicketID:        ticket.ID,
		})
	}()
}

// Shutdown waits for in-flight background notifications to drain.
func (s *TicketService) Shutdown() {
	s.wg.Wait()
}
