package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
	"github.com/quickdesk/helpdesk-backend/internal/core/utils"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, number, title, description, status, priority, client_id, assignee_id, created_at, updated_at, closed_at`

// Create inserts the ticket and allocates its ID and human-readable number.
// The number comes from a dedicated sequence so it survives rolled-back
// inserts without reuse.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	db := GetDBTX(ctx, r.pool)

	var seq int64
	if err := db.QueryRow(ctx, `SELECT nextval('ticket_numbers')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to allocate ticket number: %w", err)
	}

	const query = `
INSERT INTO tickets (number, title, description, status, priority, client_id, assignee_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + ticketColumns

	row := db.QueryRow(ctx, query,
		domain.FormatTicketNumber(seq),
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		utils.ToUUID(ticket.ClientID),
		utils.ToNullUUID(ticket.AssigneeID),
		ticket.CreatedAt,
	)
	return scanTicket(row)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
UPDATE tickets
SET title = $2,
    description = $3,
    status = $4,
    priority = $5,
    assignee_id = $6,
    updated_at = now(),
    closed_at = $7
WHERE id = $1
RETURNING ` + ticketColumns

	updated, err := scanTicket(db.QueryRow(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		string(ticket.Status),
		string(ticket.Priority),
		utils.ToNullUUID(ticket.AssigneeID),
		utils.ToNullTime(ticket.ClosedAt),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r *TicketRepository) List(ctx context.Context, filter ports.TicketFilter) ([]*domain.Ticket, error) {
	db := GetDBTX(ctx, r.pool)

	query, args := buildTicketQuery(filter)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// ListForAnalytics fetches every matching row. Aggregation happens in memory,
// so no LIMIT is applied here.
func (r *TicketRepository) ListForAnalytics(ctx context.Context, filter ports.AnalyticsFilter) ([]*domain.Ticket, error) {
	db := GetDBTX(ctx, r.pool)

	query, args := buildTicketQuery(ports.TicketFilter{
		ClientID:    filter.ClientID,
		AssigneeID:  filter.AssigneeID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	})
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets for analytics: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// buildTicketQuery assembles the filtered SELECT. Conditions are appended in
// a fixed order so the placeholder numbering stays aligned with args.
func buildTicketQuery(filter ports.TicketFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + ticketColumns + ` FROM tickets`)

	var conditions []string
	var args []interface{}

	addCondition := func(expr string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.Status != nil {
		addCondition("status = $%d", string(*filter.Status))
	}
	if filter.Priority != nil {
		addCondition("priority = $%d", string(*filter.Priority))
	}
	if filter.ClientID != nil {
		addCondition("client_id = $%d", utils.ToUUID(*filter.ClientID))
	}
	if filter.AssigneeID != nil {
		addCondition("assignee_id = $%d", utils.ToUUID(*filter.AssigneeID))
	}
	if filter.Unassigned {
		conditions = append(conditions, "assignee_id IS NULL")
	}
	if filter.CreatedFrom != nil {
		addCondition("created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		addCondition("created_at <= $%d", *filter.CreatedTo)
	}

	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	return sb.String(), args
}

func scanTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ticket rows: %w", err)
	}
	return tickets, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t          domain.Ticket
		status     string
		priority   string
		clientID   pgtype.UUID
		assigneeID pgtype.UUID
		updatedAt  pgtype.Timestamptz
		closedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID,
		&t.Number,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&clientID,
		&assigneeID,
		&t.CreatedAt,
		&updatedAt,
		&closedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TicketStatus(status)
	t.Priority = domain.TicketPriority(priority)
	t.ClientID = uuid.UUID(clientID.Bytes)
	t.AssigneeID = utils.FromNullUUID(assigneeID)
	t.UpdatedAt = utils.FromNullTime(updatedAt)
	t.ClosedAt = utils.FromNullTime(closedAt)

	return &t, nil
}
