package analytics_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk-backend/internal/core/analytics"
	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
)

func makeTicket(status domain.TicketStatus, priority domain.TicketPriority, createdAt time.Time, resolution time.Duration) *domain.Ticket {
	t := &domain.Ticket{
		ID:        1,
		Title:     "test",
		Status:    status,
		Priority:  priority,
		ClientID:  uuid.New(),
		CreatedAt: createdAt,
	}
	if resolution > 0 {
		closed := createdAt.Add(resolution)
		t.ClosedAt = &closed
	}
	return t
}

func TestComputeKPIs(t *testing.T) {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("empty input yields zeroes, not NaN", func(t *testing.T) {
		kpis := analytics.ComputeKPIs(nil)

		assert.Equal(t, int64(0), kpis.Total)
		assert.Equal(t, int64(0), kpis.Open)
		assert.Equal(t, int64(0), kpis.Closed)
		assert.Equal(t, float64(0), kpis.AvgResolutionHours)
	})

	t.Run("open and closed partition the input", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusOpen, domain.PriorityLow, base, 0),
			makeTicket(domain.StatusInProgress, domain.PriorityMedium, base, 0),
			makeTicket(domain.StatusPendingApproval, domain.PriorityHigh, base, 0),
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityUrgent, base, 2*time.Hour),
		}

		kpis := analytics.ComputeKPIs(tickets)

		assert.Equal(t, int64(5), kpis.Total)
		assert.Equal(t, int64(3), kpis.Open)
		assert.Equal(t, int64(2), kpis.Closed)
		assert.Equal(t, kpis.Total, kpis.Open+kpis.Closed)
		assert.Equal(t, int64(1), kpis.Urgent)
	})

	t.Run("three at 10h and two at 20h average to 14", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, 10*time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, 10*time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityMedium, base, 10*time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityHigh, base, 20*time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityHigh, base, 20*time.Hour),
		}

		kpis := analytics.ComputeKPIs(tickets)

		assert.InDelta(t, 14.0, kpis.AvgResolutionHours, 1e-9)
	})

	t.Run("no resolved tickets gives average of exactly zero", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusOpen, domain.PriorityLow, base, 0),
			makeTicket(domain.StatusInProgress, domain.PriorityHigh, base, 0),
		}

		kpis := analytics.ComputeKPIs(tickets)

		assert.Equal(t, float64(0), kpis.AvgResolutionHours)
	})

	t.Run("inconsistent close timestamps are excluded from the average", func(t *testing.T) {
		bad := makeTicket(domain.StatusClosed, domain.PriorityLow, base, 0)
		closedBefore := base.Add(-5 * time.Hour)
		bad.ClosedAt = &closedBefore

		good := makeTicket(domain.StatusClosed, domain.PriorityLow, base, 8*time.Hour)

		kpis := analytics.ComputeKPIs([]*domain.Ticket{bad, good})

		assert.InDelta(t, 8.0, kpis.AvgResolutionHours, 1e-9)
	})
}

func TestAggregateByField(t *testing.T) {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("statuses come back in canonical order with labels", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, time.Hour),
			makeTicket(domain.StatusOpen, domain.PriorityLow, base, 0),
			makeTicket(domain.StatusOpen, domain.PriorityLow, base, 0),
			makeTicket(domain.StatusInProgress, domain.PriorityLow, base, 0),
		}

		result := analytics.AggregateByField(tickets, analytics.FieldStatus)

		require.Len(t, result, 3)
		assert.Equal(t, analytics.FieldCount{Name: "OPEN", Value: 2, Label: "Open"}, result[0])
		assert.Equal(t, analytics.FieldCount{Name: "IN_PROGRESS", Value: 1, Label: "In Progress"}, result[1])
		assert.Equal(t, analytics.FieldCount{Name: "CLOSED", Value: 1, Label: "Closed"}, result[2])
	})

	t.Run("unknown values pass through with the raw value as label", func(t *testing.T) {
		odd := makeTicket(domain.TicketStatus("LIMBO"), domain.PriorityLow, base, 0)

		result := analytics.AggregateByField([]*domain.Ticket{odd}, analytics.FieldStatus)

		require.Len(t, result, 1)
		assert.Equal(t, "LIMBO", result[0].Name)
		assert.Equal(t, "LIMBO", result[0].Label)
	})

	t.Run("groups by client id", func(t *testing.T) {
		clientA := uuid.New()
		clientB := uuid.New()
		tickets := []*domain.Ticket{
			{Status: domain.StatusOpen, ClientID: clientA, CreatedAt: base},
			{Status: domain.StatusOpen, ClientID: clientA, CreatedAt: base},
			{Status: domain.StatusOpen, ClientID: clientB, CreatedAt: base},
		}

		result := analytics.AggregateByField(tickets, analytics.FieldClient)

		require.Len(t, result, 2)
		assert.Equal(t, clientA.String(), result[0].Name)
		assert.Equal(t, int64(2), result[0].Value)
	})

	t.Run("unassigned tickets group under the empty key", func(t *testing.T) {
		assignee := uuid.New()
		assigned := &domain.Ticket{Status: domain.StatusOpen, ClientID: uuid.New(), AssigneeID: &assignee, CreatedAt: base}
		unassigned := &domain.Ticket{Status: domain.StatusOpen, ClientID: uuid.New(), CreatedAt: base}

		result := analytics.AggregateByField([]*domain.Ticket{assigned, unassigned}, analytics.FieldAssignee)

		require.Len(t, result, 2)
		names := []string{result[0].Name, result[1].Name}
		assert.Contains(t, names, assignee.String())
		assert.Contains(t, names, "")
	})
}

func TestTopNByField(t *testing.T) {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	clients := make([]uuid.UUID, 15)
	var tickets []*domain.Ticket
	for i := range clients {
		clients[i] = uuid.New()
		// client i files i+1 tickets
		for j := 0; j <= i; j++ {
			tickets = append(tickets, &domain.Ticket{
				Status:    domain.StatusOpen,
				ClientID:  clients[i],
				CreatedAt: base,
			})
		}
	}

	result := analytics.TopNByField(tickets, analytics.FieldClient, 10)

	assert.LessOrEqual(t, len(result), 10)
	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i-1].Value, result[i].Value,
			"counts must be non-increasing")
	}
	assert.Equal(t, int64(15), result[0].Value)

	t.Run("n larger than distinct values returns everything", func(t *testing.T) {
		all := analytics.TopNByField(tickets, analytics.FieldClient, 100)
		assert.Len(t, all, 15)
	})

	t.Run("n zero returns empty", func(t *testing.T) {
		none := analytics.TopNByField(tickets, analytics.FieldClient, 0)
		assert.Empty(t, none)
	})
}

func TestGroupByPeriod(t *testing.T) {
	t.Run("week buckets are Sunday-aligned", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 0), // Monday
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), 0), // Wednesday
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC), 0), // next Monday
		}

		result, err := analytics.GroupByPeriod(tickets, analytics.PeriodWeek)
		require.NoError(t, err)

		require.Len(t, result, 2)
		assert.Equal(t, analytics.PeriodCount{Name: "2023-12-31", Value: 2}, result[0])
		assert.Equal(t, analytics.PeriodCount{Name: "2024-01-07", Value: 1}, result[1])
	})

	t.Run("day buckets use ISO dates", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC), 0),
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 3, 5, 0, 1, 0, 0, time.UTC), 0),
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), 0),
		}

		result, err := analytics.GroupByPeriod(tickets, analytics.PeriodDay)
		require.NoError(t, err)

		require.Len(t, result, 2)
		assert.Equal(t, analytics.PeriodCount{Name: "2024-03-05", Value: 2}, result[0])
		assert.Equal(t, analytics.PeriodCount{Name: "2024-03-06", Value: 1}, result[1])
	})

	t.Run("month buckets use YYYY-MM", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC), 0),
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), 0),
		}

		result, err := analytics.GroupByPeriod(tickets, analytics.PeriodMonth)
		require.NoError(t, err)

		require.Len(t, result, 2)
		assert.Equal(t, "2023-12", result[0].Name)
		assert.Equal(t, "2024-01", result[1].Name)
	})

	t.Run("output is sorted and totals match the input", func(t *testing.T) {
		var tickets []*domain.Ticket
		for day := 28; day >= 1; day -= 3 {
			tickets = append(tickets, makeTicket(domain.StatusOpen, domain.PriorityLow,
				time.Date(2024, 2, day, 9, 0, 0, 0, time.UTC), 0))
		}

		for _, period := range []analytics.Period{analytics.PeriodDay, analytics.PeriodWeek, analytics.PeriodMonth} {
			result, err := analytics.GroupByPeriod(tickets, period)
			require.NoError(t, err)

			var total int64
			for i, bucket := range result {
				total += bucket.Value
				if i > 0 {
					assert.Less(t, result[i-1].Name, bucket.Name)
				}
			}
			assert.Equal(t, int64(len(tickets)), total)
		}
	})

	t.Run("zero creation timestamps are excluded", func(t *testing.T) {
		tickets := []*domain.Ticket{
			{Status: domain.StatusOpen, ClientID: uuid.New()}, // zero CreatedAt
			makeTicket(domain.StatusOpen, domain.PriorityLow, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), 0),
		}

		result, err := analytics.GroupByPeriod(tickets, analytics.PeriodDay)
		require.NoError(t, err)

		require.Len(t, result, 1)
		assert.Equal(t, int64(1), result[0].Value)
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		_, err := analytics.GroupByPeriod(nil, analytics.Period("quarter"))
		assert.Error(t, err)
	})
}

func TestResolutionStats(t *testing.T) {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("per-priority averages", func(t *testing.T) {
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, 10*time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, 20*time.Hour),
			makeTicket(domain.StatusClosed, domain.PriorityUrgent, base, 2*time.Hour),
			makeTicket(domain.StatusOpen, domain.PriorityHigh, base, 0), // unresolved
		}

		stats := analytics.ResolutionStats(tickets)

		assert.Equal(t, int64(3), stats.TotalResolved)
		assert.InDelta(t, (10.0+20.0+2.0)/3.0, stats.AvgResolutionHours, 1e-9)

		low := stats.ByPriority[domain.PriorityLow]
		assert.Equal(t, int64(2), low.Count)
		assert.InDelta(t, 15.0, low.AvgHours, 1e-9)

		urgent := stats.ByPriority[domain.PriorityUrgent]
		assert.Equal(t, int64(1), urgent.Count)
		assert.InDelta(t, 2.0, urgent.AvgHours, 1e-9)
	})

	t.Run("priorities with no resolved tickets report zero", func(t *testing.T) {
		stats := analytics.ResolutionStats([]*domain.Ticket{
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, time.Hour),
		})

		high := stats.ByPriority[domain.PriorityHigh]
		assert.Equal(t, int64(0), high.Count)
		assert.Equal(t, float64(0), high.AvgHours)
	})

	t.Run("empty input reports zero overall", func(t *testing.T) {
		stats := analytics.ResolutionStats(nil)

		assert.Equal(t, int64(0), stats.TotalResolved)
		assert.Equal(t, float64(0), stats.AvgResolutionHours)
	})

	t.Run("malformed rows are excluded", func(t *testing.T) {
		closedBeforeCreated := makeTicket(domain.StatusClosed, domain.PriorityLow, base, 0)
		earlier := base.Add(-time.Hour)
		closedBeforeCreated.ClosedAt = &earlier

		// A close timestamp without a creation timestamp would otherwise
		// contribute a multi-century duration.
		zeroCreated := makeTicket(domain.StatusClosed, domain.PriorityLow, time.Time{}, 0)
		closed := base
		zeroCreated.ClosedAt = &closed

		stats := analytics.ResolutionStats([]*domain.Ticket{
			closedBeforeCreated,
			zeroCreated,
			makeTicket(domain.StatusClosed, domain.PriorityLow, base, 4*time.Hour),
		})

		assert.Equal(t, int64(1), stats.TotalResolved)
		assert.InDelta(t, 4.0, stats.AvgResolutionHours, 1e-9)
	})
}

func TestPerformanceRating(t *testing.T) {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	thresholds := analytics.DefaultRatingThresholds()

	t.Run("high rate and fast resolution rates excellent", func(t *testing.T) {
		var tickets []*domain.Ticket
		for i := 0; i < 9; i++ {
			tickets = append(tickets, makeTicket(domain.StatusClosed, domain.PriorityMedium, base, 10*time.Hour))
		}
		tickets = append(tickets, makeTicket(domain.StatusOpen, domain.PriorityMedium, base, 0))

		assert.Equal(t, analytics.RatingExcellent, analytics.PerformanceRating(tickets, thresholds))
	})

	t.Run("slow resolutions drop the tier", func(t *testing.T) {
		var tickets []*domain.Ticket
		for i := 0; i < 10; i++ {
			tickets = append(tickets, makeTicket(domain.StatusClosed, domain.PriorityMedium, base, 40*time.Hour))
		}

		assert.Equal(t, analytics.RatingGood, analytics.PerformanceRating(tickets, thresholds))
	})

	t.Run("mostly unresolved rates poor", func(t *testing.T) {
		var tickets []*domain.Ticket
		for i := 0; i < 10; i++ {
			tickets = append(tickets, makeTicket(domain.StatusOpen, domain.PriorityMedium, base, 0))
		}

		assert.Equal(t, analytics.RatingPoor, analytics.PerformanceRating(tickets, thresholds))
	})

	t.Run("no tickets rates fair", func(t *testing.T) {
		assert.Equal(t, analytics.RatingFair, analytics.PerformanceRating(nil, thresholds))
	})

	t.Run("custom thresholds are honored", func(t *testing.T) {
		strict := analytics.RatingThresholds{
			ExcellentMinRate:  1.0,
			ExcellentMaxHours: 1,
			GoodMinRate:       0.9,
			GoodMaxHours:      12,
			FairMinRate:       0.5,
			FairMaxHours:      48,
		}
		tickets := []*domain.Ticket{
			makeTicket(domain.StatusClosed, domain.PriorityMedium, base, 10*time.Hour),
		}

		assert.Equal(t, analytics.RatingGood, analytics.PerformanceRating(tickets, strict))
	})
}
