package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
)

func TestNewComment(t *testing.T) {
	authorID := uuid.New()

	tests := []struct {
		name      string
		ticketID  int64
		authorID  uuid.UUID
		body      string
		expectErr error
	}{
		{"valid comment", 1, authorID, "<p>Looking into it.</p>", nil},
		{"empty body", 1, authorID, "", apperrors.ErrCommentBodyRequired},
		{"whitespace only body", 1, authorID, "   \n\t  ", apperrors.ErrCommentBodyRequired},
		{"body too long", 1, authorID, strings.Repeat("a", domain.MaxCommentBodyLength+1), apperrors.ErrCommentBodyTooLong},
		{"missing ticket", 0, authorID, "<p>hi</p>", apperrors.ErrTicketIDRequired},
		{"missing author", 1, uuid.Nil, "<p>hi</p>", apperrors.ErrAuthorIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment, err := domain.NewComment(tt.ticketID, tt.authorID, tt.body)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, comment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, comment.Body)
			assert.Equal(t, tt.ticketID, comment.TicketID)
			assert.False(t, comment.CreatedAt.IsZero())
		})
	}
}

func TestComment_UpdateBody(t *testing.T) {
	comment, err := domain.NewComment(1, uuid.New(), "<p>original</p>")
	require.NoError(t, err)

	t.Run("replaces body and stamps UpdatedAt", func(t *testing.T) {
		require.NoError(t, comment.UpdateBody("<p>edited</p>"))
		assert.Equal(t, "<p>edited</p>", comment.Body)
		assert.NotNil(t, comment.UpdatedAt)
	})

	t.Run("rejects whitespace body", func(t *testing.T) {
		err := comment.UpdateBody("  ")
		assert.ErrorIs(t, err, apperrors.ErrCommentBodyRequired)
		assert.Equal(t, "<p>edited</p>", comment.Body)
	})
}

func TestComment_IsAuthoredBy(t *testing.T) {
	authorID := uuid.New()
	comment, err := domain.NewComment(1, authorID, "<p>mine</p>")
	require.NoError(t, err)

	assert.True(t, comment.IsAuthoredBy(authorID))
	assert.False(t, comment.IsAuthoredBy(uuid.New()))
}
