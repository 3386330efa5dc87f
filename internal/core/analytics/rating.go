package analytics

import (
	"github.com/quickdesk/helpdesk-backend/internal/core/domain"
)

// Rating is a qualitative tier for resolution performance.
type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
)

// RatingThresholds holds the cutoffs that map resolution rate and speed to a
// qualitative tier. They are plain heuristics with no fixed business meaning,
// so they are injected from configuration rather than hardcoded.
type RatingThresholds struct {
	ExcellentMinRate  float64
	ExcellentMaxHours float64
	GoodMinRate       float64
	GoodMaxHours      float64
	FairMinRate       float64
	FairMaxHours      float64
}

// DefaultRatingThresholds mirrors the tiers the dashboards shipped with.
func DefaultRatingThresholds() RatingThresholds {
	return RatingThresholds{
		ExcellentMinRate:  0.9,
		ExcellentMaxHours: 24,
		GoodMinRate:       0.7,
		GoodMaxHours:      48,
		FairMinRate:       0.5,
		FairMaxHours:      96,
	}
}

// PerformanceRating grades a ticket collection: a tier is reached when both
// the resolution rate (closed/total) and the average resolution time clear
// its cutoffs. An empty collection rates as fair since there is nothing to
// judge either way.
func PerformanceRating(tickets []*domain.Ticket, thresholds RatingThresholds) Rating {
	kpis := ComputeKPIs(tickets)
	if kpis.Total == 0 {
		return RatingFair
	}

	rate := float64(kpis.Closed) / float64(kpis.Total)
	hours := kpis.AvgResolutionHours

	switch {
	case rate >= thresholds.ExcellentMinRate && hours <= thresholds.ExcellentMaxHours:
		return RatingExcellent
	case rate >= thresholds.GoodMinRate && hours <= thresholds.GoodMaxHours:
		return RatingGood
	case rate >= thresholds.FairMinRate && hours <= thresholds.FairMaxHours:
		return RatingFair
	default:
		return RatingPoor
	}
}
