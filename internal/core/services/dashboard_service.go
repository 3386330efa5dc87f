package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quickdesk/helpdesk-backend/internal/core/analytics"
	apperrors "github.com/quickdesk/helpdesk-backend/internal/core/errors"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// TopClientsLimit caps the "top clients" dashboard widget.
const TopClientsLimit = 10

// DashboardService composes the analytics widgets for a dashboard load.
// Every widget issues its own ticket fetch so the loads run independently,
// mirroring how the dashboards fire their requests. A failure in the primary
// KPI load aborts the whole view; a failure in any secondary widget degrades
// that widget to an empty result and is only logged.
type DashboardService struct {
	ticketRepo ports.TicketRepository
	authzSvc   ports.AuthorizationService
	thresholds analytics.RatingThresholds
	logger     *slog.Logger
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	ticketRepo ports.TicketRepository,
	authzSvc ports.AuthorizationService,
	thresholds analytics.RatingThresholds,
	logger *slog.Logger,
) ports.DashboardService {
	return &DashboardService{
		ticketRepo: ticketRepo,
		authzSvc:   authzSvc,
		thresholds: thresholds,
		logger:     logger,
	}
}

// scopeFilter narrows the analytics fetch to what the viewer may see:
// admins get the full ticket set, technicians their own queue, clients the
// tickets they opened.
func (s *DashboardService) scopeFilter(ctx context.Context, params ports.DashboardParams) (ports.AnalyticsFilter, error) {
	filter := ports.AnalyticsFilter{
		CreatedFrom: params.CreatedFrom,
		CreatedTo:   params.CreatedTo,
	}

	canViewAll, err := s.authzSvc.Can(ctx, params.ViewerID, PermDashboardViewAll)
	if err != nil {
		return filter, err
	}
	if canViewAll {
		return filter, nil
	}

	canListAll, err := s.authzSvc.Can(ctx, params.ViewerID, PermTicketsListAll)
	if err != nil {
		return filter, err
	}

	viewerID := params.ViewerID
	if canListAll {
		filter.AssigneeID = &viewerID
	} else {
		filter.ClientID = &viewerID
	}
	return filter, nil
}

// GetDashboard loads every widget concurrently and joins on all of them
// before returning the composed view.
func (s *DashboardService) GetDashboard(ctx context.Context, params ports.DashboardParams) (*analytics.Dashboard, error) {
	period := params.Period
	if period == "" {
		period = analytics.PeriodWeek
	}
	if !period.IsValid() {
		return nil, apperrors.ErrInvalidPeriod
	}

	filter, err := s.scopeFilter(ctx, params)
	if err != nil {
		return nil, err
	}

	var (
		dashboard  analytics.Dashboard
		primaryErr error
		wg         sync.WaitGroup
	)

	// Primary load: KPI block plus the performance rating derived from it.
	wg.Add(1)
	go func() {
		defer wg.Done()
		tickets, err := s.ticketRepo.ListForAnalytics(ctx, filter)
		if err != nil {
			primaryErr = err
			return
		}
		dashboard.KPIs = analytics.ComputeKPIs(tickets)
		dashboard.Rating = analytics.PerformanceRating(tickets, s.thresholds)
	}()

	// Secondary loads: each degrades to an empty widget on failure.
	secondary := []struct {
		name string
		load func() error
	}{
		{"technicianLoad", func() error {
			tickets, err := s.ticketRepo.ListForAnalytics(ctx, filter)
			if err != nil {
				return err
			}
			dashboard.TechnicianLoad = analytics.AggregateByField(tickets, analytics.FieldAssignee)
			return nil
		}},
		{"topClients", func() error {
			tickets, err := s.ticketRepo.ListForAnalytics(ctx, filter)
			if err != nil {
				return err
			}
			dashboard.TopClients = analytics.TopNByField(tickets, analytics.FieldClient, TopClientsLimit)
			return nil
		}},
		{"evolution", func() error {
			tickets, err := s.ticketRepo.ListForAnalytics(ctx, filter)
			if err != nil {
				return err
			}
			series, err := analytics.GroupByPeriod(tickets, period)
			if err != nil {
				return err
			}
			dashboard.Evolution = series
			return nil
		}},
		{"resolution", func() error {
			tickets, err := s.ticketRepo.ListForAnalytics(ctx, filter)
			if err != nil {
				return err
			}
			dashboard.Resolution = analytics.ResolutionStats(tickets)
			return nil
		}},
	}

	for _, widget := range secondary {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := widget.load(); err != nil {
				s.logger.WarnContext(ctx, "dashboard widget load failed, degrading to empty",
					"widget", widget.name, "error", err)
			}
		}()
	}

	wg.Wait()

	if primaryErr != nil {
		return nil, primaryErr
	}
	return &dashboard, nil
}
