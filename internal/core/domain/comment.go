package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
)

const MaxCommentBodyLength = 50000

// Comment is a rich-text message attached to a ticket. Body holds the
// sanitized HTML produced by the editor content model.
type Comment struct {
	ID        int64
	TicketID  int64
	AuthorID  uuid.UUID
	Body      string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// NewComment creates a valid comment. A body that is empty or whitespace-only
// is rejected here, before any storage round-trip happens.
func NewComment(ticketID int64, authorID uuid.UUID, body string) (*Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.ErrCommentBodyRequired
	}
	if len(body) > MaxCommentBodyLength {
		return nil, apperrors.ErrCommentBodyTooLong
	}
	if ticketID <= 0 {
		return nil, apperrors.ErrTicketIDRequired
	}
	if authorID == uuid.Nil {
		return nil, apperrors.ErrAuthorIDRequired
	}

	return &Comment{
		TicketID:  ticketID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UpdateBody replaces the comment body, keeping the same validation rules
// as creation.
func (c *Comment) UpdateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return apperrors.ErrCommentBodyRequired
	}
	if len(body) > MaxCommentBodyLength {
		return apperrors.ErrCommentBodyTooLong
	}
	c.Body = body
	now := time.Now().UTC()
	c.UpdatedAt = &now
	return nil
}

// IsAuthoredBy reports whether the given user wrote this comment.
// Only the author may edit or delete a comment.
func (c *Comment) IsAuthoredBy(userID uuid.UUID) bool {
	return c.AuthorID == userID
}
