package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
)

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusOpen            TicketStatus = "OPEN"
	StatusInProgress      TicketStatus = "IN_PROGRESS"
	StatusPendingApproval TicketStatus = "PENDING_APPROVAL"
	StatusClosed          TicketStatus = "CLOSED"
)

// IsValid reports whether s is a known ticket status.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusPendingApproval, StatusClosed:
		return true
	}
	return false
}

// TicketPriority represents the urgency of a ticket.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "LOW"
	PriorityMedium TicketPriority = "MEDIUM"
	PriorityHigh   TicketPriority = "HIGH"
	PriorityUrgent TicketPriority = "URGENT"
)

// IsValid reports whether p is a known ticket priority.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
)

// Ticket is the core domain entity.
type Ticket struct {
	ID          int64
	Number      string // Human-readable reference, e.g. "HD-000042"
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	ClientID    uuid.UUID
	AssigneeID  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	ClosedAt    *time.Time
}

// FormatTicketNumber renders a sequence value as a ticket reference.
func FormatTicketNumber(seq int64) string {
	return fmt.Sprintf("HD-%06d", seq)
}

// TicketParams holds parameters for ticket creation.
type TicketParams struct {
	Title       string
	Description string
	Priority    TicketPriority
	ClientID    uuid.UUID
}

// Validate checks ticket creation parameters.
func (p *TicketParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Title == "" {
		errs.Add("title", "Title is required")
	} else if len(p.Title) > MaxTitleLength {
		errs.Add("title", "Title must be 255 characters or less")
	}
	if len(p.Description) > MaxDescriptionLength {
		errs.Add("description", "Description is too long")
	}
	if p.Priority != "" && !p.Priority.IsValid() {
		errs.Add("priority", "Priority must be one of LOW, MEDIUM, HIGH, URGENT")
	}
	if p.ClientID == uuid.Nil {
		errs.Add("clientId", "Client ID is required")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewTicket is a factory function to create a valid new ticket.
func NewTicket(params TicketParams) (*Ticket, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return &Ticket{
		Title:       params.Title,
		Description: params.Description,
		Status:      StatusOpen,
		Priority:    priority,
		ClientID:    params.ClientID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// validTransitions defines which status changes are allowed.
// Closed is terminal: an archived ticket never reopens.
var validTransitions = map[TicketStatus][]TicketStatus{
	StatusOpen:            {StatusInProgress, StatusPendingApproval, StatusClosed},
	StatusInProgress:      {StatusOpen, StatusPendingApproval, StatusClosed},
	StatusPendingApproval: {StatusInProgress, StatusClosed},
	StatusClosed:          {},
}

// UpdateStatus changes the ticket's status, enforcing business rules.
// Moving into CLOSED stamps ClosedAt.
func (t *Ticket) UpdateStatus(newStatus TicketStatus) error {
	if !newStatus.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	allowed, ok := validTransitions[t.Status]
	if !ok {
		return apperrors.ErrInvalidStatusTransition
	}

	for _, s := range allowed {
		if s == newStatus {
			now := time.Now().UTC()
			t.Status = newStatus
			t.UpdatedAt = &now
			if newStatus == StatusClosed {
				t.ClosedAt = &now
			}
			return nil
		}
	}

	return apperrors.ErrInvalidStatusTransition
}

// UpdatePriority changes the ticket's priority.
func (t *Ticket) UpdatePriority(newPriority TicketPriority) error {
	if t.Status == StatusClosed {
		return apperrors.ErrTicketClosed
	}
	if !newPriority.IsValid() {
		return apperrors.ErrInvalidPriority
	}
	t.Priority = newPriority
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return nil
}

// Assign sets or changes the assignee of the ticket.
func (t *Ticket) Assign(assigneeID uuid.UUID) error {
	if t.Status == StatusClosed {
		return apperrors.ErrCannotAssignClosed
	}
	t.AssigneeID = &assigneeID
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return nil
}

// Unassign clears the ticket's assignee.
func (t *Ticket) Unassign() error {
	if t.Status == StatusClosed {
		return apperrors.ErrCannotAssignClosed
	}
	t.AssigneeID = nil
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return nil
}

// IsOwnedBy reports whether the given user opened this ticket.
func (t *Ticket) IsOwnedBy(userID uuid.UUID) bool {
	return t.ClientID == userID
}

// IsAssignedTo reports whether the ticket is assigned to the given user.
func (t *Ticket) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// IsResolved reports whether the ticket has a close timestamp.
func (t *Ticket) IsResolved() bool {
	return t.ClosedAt != nil
}

// ResolutionTime returns the elapsed duration between creation and closing,
// and false when the ticket has no close timestamp or the timestamps are
// unusable (missing creation time, or closed before created).
func (t *Ticket) ResolutionTime() (time.Duration, bool) {
	if t.ClosedAt == nil || t.CreatedAt.IsZero() {
		return 0, false
	}
	d := t.ClosedAt.Sub(t.CreatedAt)
	if d < 0 {
		return 0, false
	}
	return d, true
}
