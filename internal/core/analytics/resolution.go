package analytics

import (
	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
)

// PriorityResolution summarizes resolution performance for one priority.
type PriorityResolution struct {
	Count    int64   `json:"count"`
	AvgHours float64 `json:"avgHours"`
}

// ResolutionSummary breaks down how long tickets took to close.
type ResolutionSummary struct {
	AvgResolutionHours float64                                   `json:"avgResolutionHours"`
	ByPriority         map[domain.TicketPriority]PriorityResolution `json:"byPriority"`
	TotalResolved      int64                                     `json:"totalResolved"`
}

// ResolutionStats computes resolution-time statistics over the tickets that
// actually carry a close timestamp. Priorities with zero resolved tickets
// report an average of 0; an input with no resolved tickets reports 0
// overall, never NaN.
func ResolutionStats(tickets []*domain.Ticket) ResolutionSummary {
	summary := ResolutionSummary{
		ByPriority: make(map[domain.TicketPriority]PriorityResolution, 4),
	}
	for _, p := range []domain.TicketPriority{
		domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent,
	} {
		summary.ByPriority[p] = PriorityResolution{}
	}

	var totalHours float64
	hoursByPriority := make(map[domain.TicketPriority]float64)

	for _, t := range tickets {
		d, ok := t.ResolutionTime()
		if !ok {
			continue
		}
		hours := d.Hours()
		totalHours += hours
		summary.TotalResolved++

		entry := summary.ByPriority[t.Priority]
		entry.Count++
		summary.ByPriority[t.Priority] = entry
		hoursByPriority[t.Priority] += hours
	}

	for priority, entry := range summary.ByPriority {
		if entry.Count > 0 {
			entry.AvgHours = hoursByPriority[priority] / float64(entry.Count)
			summary.ByPriority[priority] = entry
		}
	}

	if summary.TotalResolved > 0 {
		summary.AvgResolutionHours = totalHours / float64(summary.TotalResolved)
	}
	return summary
}
