package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
	"github.com/quickdesk/helpdesk-backend/internal/core/utils"
)

// defaultEventPageSize bounds timeline pages when the caller passes no limit.
const defaultEventPageSize = 100

type TicketEventRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketEventRepository = (*TicketEventRepository)(nil)

func NewTicketEventRepository(pool *pgxpool.Pool) ports.TicketEventRepository {
	return &TicketEventRepository{pool: pool}
}

const eventColumns = `id, ticket_id, type, payload, actor_id, created_at`

func (r *TicketEventRepository) Create(ctx context.Context, event *domain.TicketEvent) (*domain.TicketEvent, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
INSERT INTO ticket_events (ticket_id, type, payload, actor_id, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + eventColumns

	created, err := scanEvent(db.QueryRow(ctx, query,
		event.TicketID,
		string(event.Type),
		[]byte(event.Payload),
		utils.ToUUID(event.ActorID),
		event.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket event: %w", err)
	}
	return created, nil
}

// ListByTicketID pages through a ticket's timeline oldest first, using the
// same strictly-greater-than cursor as comment listing.
func (r *TicketEventRepository) ListByTicketID(ctx context.Context, ticketID int64, afterID int64, limit int) ([]*domain.TicketEvent, error) {
	db := GetDBTX(ctx, r.pool)

	if limit <= 0 {
		limit = defaultEventPageSize
	}

	const query = `
SELECT ` + eventColumns + `
FROM ticket_events
WHERE ticket_id = $1 AND id > $2
ORDER BY id ASC
LIMIT $3`

	rows, err := db.Query(ctx, query, ticketID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticket events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.TicketEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ticket event rows: %w", err)
	}
	return events, nil
}

func scanEvent(row pgx.Row) (*domain.TicketEvent, error) {
	var (
		e         domain.TicketEvent
		eventType string
		payload   []byte
		actorID   pgtype.UUID
	)

	err := row.Scan(
		&e.ID,
		&e.TicketID,
		&eventType,
		&payload,
		&actorID,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Type = domain.EventType(eventType)
	e.Payload = payload
	e.ActorID = uuid.UUID(actorID.Bytes)

	return &e, nil
}
