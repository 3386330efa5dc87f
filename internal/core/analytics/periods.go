package analytics

import (
	"sort"
	"time"

	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
)

// Period selects the bucket width for evolution series.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// IsValid reports whether p is a known aggregation period.
func (p Period) IsValid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return true
	}
	return false
}

// PeriodCount is one point of an evolution series.
type PeriodCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// bucketKey renders a creation timestamp into its period bucket. Week buckets
// are keyed by the Sunday that starts the week, day buckets by the ISO date
// and month buckets by YYYY-MM. All keys sort lexicographically in
// chronological order.
func bucketKey(t time.Time, period Period) string {
	t = t.UTC()
	switch period {
	case PeriodDay:
		return t.Format("2006-01-02")
	case PeriodWeek:
		weekStart := t.AddDate(0, 0, -int(t.Weekday()))
		return weekStart.Format("2006-01-02")
	case PeriodMonth:
		return t.Format("2006-01")
	}
	return ""
}

// GroupByPeriod buckets tickets by creation time into day, week or month
// buckets and returns the series sorted ascending by bucket key. Tickets with
// a zero creation timestamp are excluded rather than producing a garbage
// bucket.
func GroupByPeriod(tickets []*domain.Ticket, period Period) ([]PeriodCount, error) {
	if !period.IsValid() {
		return nil, apperrors.ErrInvalidPeriod
	}

	counts := make(map[string]int64)
	for _, t := range tickets {
		if t.CreatedAt.IsZero() {
			continue
		}
		counts[bucketKey(t.CreatedAt, period)]++
	}

	result := make([]PeriodCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, PeriodCount{Name: name, Value: count})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}
