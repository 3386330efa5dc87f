// Package analytics turns flat collections of ticket rows into
// dashboard-ready summaries. Every function is pure: the output depends
// only on the tickets passed in, and nothing is cached between calls.
package analytics

import (
	"sort"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
)

// Field selects which ticket attribute an aggregation groups by.
type Field string

const (
	FieldStatus   Field = "status"
	FieldPriority Field = "priority"
	FieldAssignee Field = "assignee"
	FieldClient   Field = "client"
)

// FieldCount is one aggregation bucket: the raw grouping value, the number
// of tickets in it, and a display label.
type FieldCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// KPISummary is the set of headline numbers shown on every dashboard.
// It is recomputed from scratch on each load, never stored.
type KPISummary struct {
	Total              int64        `json:"total"`
	Open               int64        `json:"open"`
	Closed             int64        `json:"closed"`
	Urgent             int64        `json:"urgent"`
	AvgResolutionHours float64      `json:"avgResolutionHours"`
	ByStatus           []FieldCount `json:"byStatus"`
	ByPriority         []FieldCount `json:"byPriority"`
}

// statusLabels and priorityLabels translate enum values into display text.
// Values outside the known enumeration fall back to the raw string.
var statusLabels = map[string]string{
	string(domain.StatusOpen):            "Open",
	string(domain.StatusInProgress):      "In Progress",
	string(domain.StatusPendingApproval): "Pending Approval",
	string(domain.StatusClosed):          "Closed",
}

var priorityLabels = map[string]string{
	string(domain.PriorityLow):    "Low",
	string(domain.PriorityMedium): "Medium",
	string(domain.PriorityHigh):   "High",
	string(domain.PriorityUrgent): "Urgent",
}

// labelFor resolves a display label for a grouping value.
func labelFor(field Field, value string) string {
	var label string
	var ok bool
	switch field {
	case FieldStatus:
		label, ok = statusLabels[value]
	case FieldPriority:
		label, ok = priorityLabels[value]
	}
	if !ok {
		return value
	}
	return label
}

// fieldValue extracts the grouping key for a ticket. Unassigned tickets
// group under the empty key for the assignee field.
func fieldValue(t *domain.Ticket, field Field) string {
	switch field {
	case FieldStatus:
		return string(t.Status)
	case FieldPriority:
		return string(t.Priority)
	case FieldAssignee:
		if t.AssigneeID == nil {
			return ""
		}
		return t.AssigneeID.String()
	case FieldClient:
		return t.ClientID.String()
	}
	return ""
}

// canonicalOrder fixes the display order for enum-valued fields so chart
// segments do not jump around between loads. Unknown values sort after the
// known ones, alphabetically.
var canonicalOrder = map[Field][]string{
	FieldStatus: {
		string(domain.StatusOpen),
		string(domain.StatusInProgress),
		string(domain.StatusPendingApproval),
		string(domain.StatusClosed),
	},
	FieldPriority: {
		string(domain.PriorityLow),
		string(domain.PriorityMedium),
		string(domain.PriorityHigh),
		string(domain.PriorityUrgent),
	},
}

// ComputeKPIs derives the headline counters from a ticket collection.
// Open counts every ticket whose status is not CLOSED, so open+closed always
// covers the whole input. The average resolution time only considers tickets
// carrying a close timestamp and is 0 when there are none.
func ComputeKPIs(tickets []*domain.Ticket) KPISummary {
	summary := KPISummary{
		Total:      int64(len(tickets)),
		ByStatus:   AggregateByField(tickets, FieldStatus),
		ByPriority: AggregateByField(tickets, FieldPriority),
	}

	var totalHours float64
	var resolved int64
	for _, t := range tickets {
		if t.Status == domain.StatusClosed {
			summary.Closed++
		} else {
			summary.Open++
		}
		if t.Priority == domain.PriorityUrgent {
			summary.Urgent++
		}
		if d, ok := t.ResolutionTime(); ok {
			totalHours += d.Hours()
			resolved++
		}
	}

	if resolved > 0 {
		summary.AvgResolutionHours = totalHours / float64(resolved)
	}
	return summary
}

// AggregateByField groups tickets by the exact value of the given field.
// Enum-valued fields come back in their canonical display order; id-valued
// fields (assignee, client) come back sorted by count descending.
func AggregateByField(tickets []*domain.Ticket, field Field) []FieldCount {
	counts := make(map[string]int64)
	for _, t := range tickets {
		counts[fieldValue(t, field)]++
	}

	result := make([]FieldCount, 0, len(counts))
	for value, count := range counts {
		result = append(result, FieldCount{
			Name:  value,
			Value: count,
			Label: labelFor(field, value),
		})
	}

	if order, ok := canonicalOrder[field]; ok {
		rank := make(map[string]int, len(order))
		for i, v := range order {
			rank[v] = i
		}
		sort.Slice(result, func(i, j int) bool {
			ri, iKnown := rank[result[i].Name]
			rj, jKnown := rank[result[j].Name]
			switch {
			case iKnown && jKnown:
				return ri < rj
			case iKnown:
				return true
			case jKnown:
				return false
			default:
				return result[i].Name < result[j].Name
			}
		})
	} else {
		sort.Slice(result, func(i, j int) bool {
			if result[i].Value != result[j].Value {
				return result[i].Value > result[j].Value
			}
			return result[i].Name < result[j].Name
		})
	}

	return result
}

// TopNByField aggregates by the given field, sorts by count descending and
// truncates to n entries. Used for the "top 10 clients" widget.
func TopNByField(tickets []*domain.Ticket, field Field, n int) []FieldCount {
	result := AggregateByField(tickets, field)

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Value != result[j].Value {
			return result[i].Value > result[j].Value
		}
		return result[i].Name < result[j].Name
	})

	if n >= 0 && len(result) > n {
		result = result[:n]
	}
	return result
}
