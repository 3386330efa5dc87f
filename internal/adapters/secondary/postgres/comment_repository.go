package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
	"github.com/quickdesk/helpdesk-backend/internal/core/utils"
)

// defaultCommentPageSize bounds comment pages when the caller passes no limit.
const defaultCommentPageSize = 50

type CommentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.CommentRepository = (*CommentRepository)(nil)

func NewCommentRepository(pool *pgxpool.Pool) ports.CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentColumns = `id, ticket_id, author_id, body, created_at, updated_at`

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
INSERT INTO comments (ticket_id, author_id, body, created_at)
VALUES ($1, $2, $3, $4)
RETURNING ` + commentColumns

	created, err := scanComment(db.QueryRow(ctx, query,
		comment.TicketID,
		utils.ToUUID(comment.AuthorID),
		comment.Body,
		comment.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return created, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	db := GetDBTX(ctx, r.pool)

	const query = `
UPDATE comments
SET body = $2, updated_at = now()
WHERE id = $1
RETURNING ` + commentColumns

	updated, err := scanComment(db.QueryRow(ctx, query, comment.ID, comment.Body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommentNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	db := GetDBTX(ctx, r.pool)

	tag, err := db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// ListByTicketID pages through a ticket's comments oldest first. afterID is a
// cursor: only comments with a strictly greater ID are returned.
func (r *CommentRepository) ListByTicketID(ctx context.Context, ticketID int64, afterID int64, limit int) ([]*domain.Comment, error) {
	db := GetDBTX(ctx, r.pool)

	if limit <= 0 {
		limit = defaultCommentPageSize
	}

	const query = `
SELECT ` + commentColumns + `
FROM comments
WHERE ticket_id = $1 AND id > $2
ORDER BY id ASC
LIMIT $3`

	rows, err := db.Query(ctx, query, ticketID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comment rows: %w", err)
	}
	return comments, nil
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var (
		c         domain.Comment
		authorID  pgtype.UUID
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&c.ID,
		&c.TicketID,
		&authorID,
		&c.Body,
		&c.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.AuthorID = uuid.UUID(authorID.Bytes)
	c.UpdatedAt = utils.FromNullTime(updatedAt)

	return &c, nil
}
