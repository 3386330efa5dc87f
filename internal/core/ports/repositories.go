package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
)

// TicketFilter narrows ticket listings. Nil pointer fields are ignored.
type TicketFilter struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	ClientID    *uuid.UUID
	AssigneeID  *uuid.UUID
	Unassigned  bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// AnalyticsFilter narrows the ticket rows fed into the aggregator.
// Aggregation itself happens in memory; the filter only bounds the fetch.
type AnalyticsFilter struct {
	ClientID    *uuid.UUID
	AssigneeID  *uuid.UUID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// TicketRepository defines the persistence port for tickets.
type TicketRepository interface {
	// Create persists the ticket, allocating its ID and ticket number.
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]*domain.Ticket, error)
	// ListForAnalytics returns every ticket matching the filter, with no
	// pagination: the aggregator always works over the full row set.
	ListForAnalytics(ctx context.Context, filter AnalyticsFilter) ([]*domain.Ticket, error)
}

// CommentRepository defines the persistence port for ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
	// ListByTicketID returns comments after the given cursor, oldest first.
	ListByTicketID(ctx context.Context, ticketID int64, afterID int64, limit int) ([]*domain.Comment, error)
}

// UserRepository defines the persistence port for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole) ([]*domain.User, error)
	// List returns every account, active or not, ordered by name.
	List(ctx context.Context) ([]*domain.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role domain.UserRole) error
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	UpdateLastActive(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TicketEventRepository defines the persistence port for the ticket timeline.
type TicketEventRepository interface {
	Create(ctx context.Context, event *domain.TicketEvent) (*domain.TicketEvent, error)
	ListByTicketID(ctx context.Context, ticketID int64, afterID int64, limit int) ([]*domain.TicketEvent, error)
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
