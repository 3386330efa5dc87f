package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
)

func TestTicketPriority_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		priority domain.TicketPriority
		want     bool
	}{
		{"LOW is valid", domain.PriorityLow, true},
		{"MEDIUM is valid", domain.PriorityMedium, true},
		{"HIGH is valid", domain.PriorityHigh, true},
		{"URGENT is valid", domain.PriorityUrgent, true},
		{"empty is invalid", domain.TicketPriority(""), false},
		{"lowercase is invalid", domain.TicketPriority("low"), false},
		{"unknown is invalid", domain.TicketPriority("CRITICAL"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.priority.IsValid())
		})
	}
}

func TestTicketStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status domain.TicketStatus
		want   bool
	}{
		{"OPEN is valid", domain.StatusOpen, true},
		{"IN_PROGRESS is valid", domain.StatusInProgress, true},
		{"PENDING_APPROVAL is valid", domain.StatusPendingApproval, true},
		{"CLOSED is valid", domain.StatusClosed, true},
		{"empty is invalid", domain.TicketStatus(""), false},
		{"RESOLVED is invalid", domain.TicketStatus("RESOLVED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsValid())
		})
	}
}

func TestNewTicket(t *testing.T) {
	validClientID := uuid.New()

	tests := []struct {
		name        string
		params      domain.TicketParams
		expectError bool
	}{
		{
			name: "valid ticket",
			params: domain.TicketParams{
				Title:       "Printer broken",
				Description: "The 3rd floor printer jams on every job",
				Priority:    domain.PriorityMedium,
				ClientID:    validClientID,
			},
		},
		{
			name: "missing title",
			params: domain.TicketParams{
				Description: "No title",
				Priority:    domain.PriorityLow,
				ClientID:    validClientID,
			},
			expectError: true,
		},
		{
			name: "title too long",
			params: domain.TicketParams{
				Title:    strings.Repeat("x", 256),
				ClientID: validClientID,
			},
			expectError: true,
		},
		{
			name: "invalid priority",
			params: domain.TicketParams{
				Title:    "Valid title",
				Priority: domain.TicketPriority("SEVERE"),
				ClientID: validClientID,
			},
			expectError: true,
		},
		{
			name: "missing client",
			params: domain.TicketParams{
				Title:    "Valid title",
				Priority: domain.PriorityHigh,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := domain.NewTicket(tt.params)
			if tt.expectError {
				require.Error(t, err)
				var verrs *apperrors.ValidationErrors
				assert.ErrorAs(t, err, &verrs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusOpen, ticket.Status)
			assert.Equal(t, tt.params.Priority, ticket.Priority)
			assert.Nil(t, ticket.ClosedAt)
			assert.False(t, ticket.CreatedAt.IsZero())
		})
	}
}

func TestNewTicket_DefaultsPriorityToMedium(t *testing.T) {
	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:    "No priority given",
		ClientID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, ticket.Priority)
}

func TestTicket_UpdateStatus(t *testing.T) {
	tests := []struct {
		name      string
		from      domain.TicketStatus
		to        domain.TicketStatus
		expectErr error
	}{
		{"open to in progress", domain.StatusOpen, domain.StatusInProgress, nil},
		{"open to closed", domain.StatusOpen, domain.StatusClosed, nil},
		{"in progress to pending approval", domain.StatusInProgress, domain.StatusPendingApproval, nil},
		{"pending approval to closed", domain.StatusPendingApproval, domain.StatusClosed, nil},
		{"pending approval back to in progress", domain.StatusPendingApproval, domain.StatusInProgress, nil},
		{"pending approval to open is invalid", domain.StatusPendingApproval, domain.StatusOpen, apperrors.ErrInvalidStatusTransition},
		{"closed is terminal", domain.StatusClosed, domain.StatusOpen, apperrors.ErrInvalidStatusTransition},
		{"closed cannot re-close", domain.StatusClosed, domain.StatusClosed, apperrors.ErrInvalidStatusTransition},
		{"unknown target status", domain.StatusOpen, domain.TicketStatus("ARCHIVED"), apperrors.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &domain.Ticket{
				Status:    tt.from,
				CreatedAt: time.Now().UTC(),
			}
			err := ticket.UpdateStatus(tt.to)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Equal(t, tt.from, ticket.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, ticket.Status)
			require.NotNil(t, ticket.UpdatedAt)
		})
	}
}

func TestTicket_UpdateStatus_ClosingStampsClosedAt(t *testing.T) {
	ticket := &domain.Ticket{Status: domain.StatusInProgress, CreatedAt: time.Now().UTC()}

	require.NoError(t, ticket.UpdateStatus(domain.StatusClosed))

	require.NotNil(t, ticket.ClosedAt)
	assert.True(t, ticket.IsResolved())
	assert.False(t, ticket.ClosedAt.Before(ticket.CreatedAt))
}

func TestTicket_Assign(t *testing.T) {
	t.Run("assigns an open ticket", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.StatusOpen}
		techID := uuid.New()

		require.NoError(t, ticket.Assign(techID))

		require.NotNil(t, ticket.AssigneeID)
		assert.Equal(t, techID, *ticket.AssigneeID)
	})

	t.Run("rejects assigning a closed ticket", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.StatusClosed}

		err := ticket.Assign(uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrCannotAssignClosed)
		assert.Nil(t, ticket.AssigneeID)
	})

	t.Run("unassign clears the assignee", func(t *testing.T) {
		techID := uuid.New()
		ticket := &domain.Ticket{Status: domain.StatusInProgress, AssigneeID: &techID}

		require.NoError(t, ticket.Unassign())

		assert.Nil(t, ticket.AssigneeID)
	})
}

func TestTicket_UpdatePriority(t *testing.T) {
	t.Run("updates priority on an active ticket", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.StatusOpen, Priority: domain.PriorityLow}

		require.NoError(t, ticket.UpdatePriority(domain.PriorityUrgent))

		assert.Equal(t, domain.PriorityUrgent, ticket.Priority)
	})

	t.Run("rejects closed ticket", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.StatusClosed, Priority: domain.PriorityLow}

		err := ticket.UpdatePriority(domain.PriorityHigh)

		assert.ErrorIs(t, err, apperrors.ErrTicketClosed)
	})

	t.Run("rejects unknown priority", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.StatusOpen, Priority: domain.PriorityLow}

		err := ticket.UpdatePriority(domain.TicketPriority("EXTREME"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidPriority)
	})
}

func TestTicket_ResolutionTime(t *testing.T) {
	created := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("resolved ticket", func(t *testing.T) {
		closed := created.Add(10 * time.Hour)
		ticket := &domain.Ticket{CreatedAt: created, ClosedAt: &closed}

		d, ok := ticket.ResolutionTime()

		require.True(t, ok)
		assert.Equal(t, 10*time.Hour, d)
	})

	t.Run("open ticket has no resolution time", func(t *testing.T) {
		ticket := &domain.Ticket{CreatedAt: created}

		_, ok := ticket.ResolutionTime()

		assert.False(t, ok)
	})

	t.Run("closed before created is excluded", func(t *testing.T) {
		closed := created.Add(-time.Hour)
		ticket := &domain.Ticket{CreatedAt: created, ClosedAt: &closed}

		_, ok := ticket.ResolutionTime()

		assert.False(t, ok)
	})

	t.Run("missing creation time is excluded", func(t *testing.T) {
		closed := created
		ticket := &domain.Ticket{ClosedAt: &closed}

		_, ok := ticket.ResolutionTime()

		assert.False(t, ok)
	})
}

func TestFormatTicketNumber(t *testing.T) {
	assert.Equal(t, "HD-000042", domain.FormatTicketNumber(42))
	assert.Equal(t, "HD-000001", domain.FormatTicketNumber(1))
	assert.Equal(t, "HD-1000000", domain.FormatTicketNumber(1000000))
}
