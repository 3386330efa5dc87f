package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/analytics"
	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, params domain.UserRegistrationParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// AuthorizationService defines the port for checking user permissions.
type AuthorizationService interface {
	Can(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
	GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// AdminService defines the port for user administration. Every operation
// requires the acting user to hold the users:manage permission.
type AdminService interface {
	ListUsers(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error)
	UpdateUserRole(ctx context.Context, actorID, userID uuid.UUID, role domain.UserRole) error
	UpdateUserStatus(ctx context.Context, actorID, userID uuid.UUID, isActive bool) error
	ResetUserPassword(ctx context.Context, actorID, userID uuid.UUID) (string, error)
}

// AssigneeService defines the port for listing assignable technicians.
type AssigneeService interface {
	ListAssignableUsers(ctx context.Context, actorID uuid.UUID) ([]*domain.User, error)
}

// UserLookupService resolves user ids into display projections.
type UserLookupService interface {
	GetUserInfo(ctx context.Context, userID uuid.UUID) (*domain.UserInfo, error)
	GetUserInfos(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*domain.UserInfo, error)
}

// CreateTicketParams defines the required input for creating a new ticket.
type CreateTicketParams struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	ClientID    uuid.UUID
}

// UpdateStatusParams defines the input for changing a ticket's status.
type UpdateStatusParams struct {
	TicketID int64
	Status   domain.TicketStatus
	ActorID  uuid.UUID
}

// UpdatePriorityParams defines the input for changing a ticket's priority.
type UpdatePriorityParams struct {
	TicketID int64
	Priority domain.TicketPriority
	ActorID  uuid.UUID
}

// AssignTicketParams defines the input for assigning a ticket.
// A nil AssigneeID unassigns the ticket.
type AssignTicketParams struct {
	TicketID   int64
	AssigneeID *uuid.UUID
	ActorID    uuid.UUID
}

// ListTicketsParams defines the input for listing tickets.
type ListTicketsParams struct {
	ViewerID    uuid.UUID
	Limit       int
	Offset      int
	Status      *string
	Priority    *string
	AssigneeID  *uuid.UUID
	Unassigned  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, ticketID int64, viewerID uuid.UUID) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (*domain.Ticket, error)
	UpdatePriority(ctx context.Context, params UpdatePriorityParams) (*domain.Ticket, error)
	AssignTicket(ctx context.Context, params AssignTicketParams) (*domain.Ticket, error)
	ListTickets(ctx context.Context, params ListTicketsParams) ([]*domain.Ticket, error)
	Shutdown()
}

// CreateCommentParams defines the input for creating a comment.
type CreateCommentParams struct {
	TicketID int64
	ActorID  uuid.UUID
	Body     string
}

// UpdateCommentParams defines the input for editing a comment.
type UpdateCommentParams struct {
	CommentID int64
	ActorID   uuid.UUID
	Body      string
}

// DeleteCommentParams defines the input for deleting a comment.
type DeleteCommentParams struct {
	CommentID int64
	ActorID   uuid.UUID
}

// GetCommentsParams defines the input for retrieving comments.
type GetCommentsParams struct {
	TicketID int64
	ActorID  uuid.UUID
	AfterID  int64
	Limit    int
}

// CommentService defines the port for comment-related business logic.
type CommentService interface {
	CreateComment(ctx context.Context, params CreateCommentParams) (*domain.Comment, error)
	UpdateComment(ctx context.Context, params UpdateCommentParams) (*domain.Comment, error)
	DeleteComment(ctx context.Context, params DeleteCommentParams) error
	GetCommentsForTicket(ctx context.Context, params GetCommentsParams) ([]*domain.Comment, error)
}

// DashboardParams scopes a dashboard load. The service further narrows the
// filter by the viewer's role: clients only ever see their own tickets,
// technicians their own queue.
type DashboardParams struct {
	ViewerID    uuid.UUID
	Period      analytics.Period
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DashboardService composes the analytics widgets for a dashboard load.
type DashboardService interface {
	GetDashboard(ctx context.Context, params DashboardParams) (*analytics.Dashboard, error)
}

// ListTicketEventsParams defines the input for listing ticket events.
type ListTicketEventsParams struct {
	TicketID int64
	ViewerID uuid.UUID
	AfterID  int64
	Limit    int
}

// EventService defines the port for ticket timeline queries.
type EventService interface {
	ListTicketEvents(ctx context.Context, params ListTicketEventsParams) ([]*domain.TicketEvent, error)
}

// EventPublisher pushes realtime events to subscribed clients.
type EventPublisher interface {
	Publish(event domain.Event)
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	Subject         string
	Message         string
	TicketID        int64
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}
