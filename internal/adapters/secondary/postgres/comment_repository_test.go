package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
)

func TestCommentRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	client := createTestUser(t, ctx, domain.RoleClient)
	ticket := createTestTicket(t, ctx, NewTicketRepository(testPool), domain.TicketParams{
		Title: "Needs comments", Description: "d", ClientID: client.ID,
	})

	comment, err := domain.NewComment(ticket.ID, client.ID, "<p>Still broken after the restart.</p>")
	require.NoError(t, err)

	created, err := repo.Create(ctx, comment)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, found.TicketID)
	assert.Equal(t, client.ID, found.AuthorID)
	assert.Equal(t, "<p>Still broken after the restart.</p>", found.Body)
	assert.Nil(t, found.UpdatedAt)
}

func TestCommentRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	client := createTestUser(t, ctx, domain.RoleClient)
	ticket := createTestTicket(t, ctx, NewTicketRepository(testPool), domain.TicketParams{
		Title: "Editable", Description: "d", ClientID: client.ID,
	})

	comment, err := domain.NewComment(ticket.ID, client.ID, "first draft")
	require.NoError(t, err)
	created, err := repo.Create(ctx, comment)
	require.NoError(t, err)

	created.Body = "second draft"
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "second draft", updated.Body)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestCommentRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	client := createTestUser(t, ctx, domain.RoleClient)
	ticket := createTestTicket(t, ctx, NewTicketRepository(testPool), domain.TicketParams{
		Title: "Deletable", Description: "d", ClientID: client.ID,
	})

	comment, err := domain.NewComment(ticket.ID, client.ID, "going away")
	require.NoError(t, err)
	created, err := repo.Create(ctx, comment)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	// Deleting again reports not found
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), apperrors.ErrCommentNotFound)
}

func TestCommentRepository_CursorPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewCommentRepository(testPool)
	client := createTestUser(t, ctx, domain.RoleClient)
	ticket := createTestTicket(t, ctx, NewTicketRepository(testPool), domain.TicketParams{
		Title: "Chatty", Description: "d", ClientID: client.ID,
	})

	bodies := []string{"one", "two", "three", "four"}
	ids := make([]int64, 0, len(bodies))
	for _, body := range bodies {
		comment, err := domain.NewComment(ticket.ID, client.ID, body)
		require.NoError(t, err)
		created, err := repo.Create(ctx, comment)
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	// First page, oldest first
	page1, err := repo.ListByTicketID(ctx, ticket.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "one", page1[0].Body)
	assert.Equal(t, "two", page1[1].Body)

	// Second page resumes strictly after the cursor
	page2, err := repo.ListByTicketID(ctx, ticket.ID, page1[1].ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "three", page2[0].Body)
	assert.Equal(t, "four", page2[1].Body)

	// Cursor past the end yields an empty page, not an error
	empty, err := repo.ListByTicketID(ctx, ticket.ID, ids[len(ids)-1], 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
