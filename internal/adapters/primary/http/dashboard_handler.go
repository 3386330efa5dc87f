package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/quickdesk/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/quickdesk/helpdesk-backend/internal/adapters/primary/validation"
	"github.com/quickdesk/helpdesk-backend/internal/auth"
	"github.com/quickdesk/helpdesk-backend/internal/core/analytics"
	"github.com/quickdesk/helpdesk-backend/internal/core/ports"
)

// DashboardHandler handles HTTP requests for the role dashboard.
type DashboardHandler struct {
	dashboardService ports.DashboardService
	userLookup       ports.UserLookupService
	errorHandler     *ErrorHandler
	logger           *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	dashboardService ports.DashboardService,
	userLookup ports.UserLookupService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		userLookup:       userLookup,
		errorHandler:     errorHandler,
		logger:           logger.With("handler", "dashboard"),
	}
}

// RegisterRoutes registers the /dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetDashboard)
}

// HandleGetDashboard handles GET /dashboard.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	v := validation.NewValidator()

	period := analytics.PeriodWeek
	if periodStr := r.URL.Query().Get("period"); periodStr != "" {
		period = analytics.Period(periodStr)
		v.OneOf("period", periodStr, []string{"day", "week", "month"})
	}

	createdFrom, err := validation.ParseTimeQueryParam(r, "createdFrom")
	if err != nil {
		v.Custom("createdFrom", false, "Must be a valid date or timestamp")
	}

	createdTo, err := validation.ParseTimeQueryParam(r, "createdTo")
	if err != nil {
		v.Custom("createdTo", false, "Must be a valid date or timestamp")
	}

	if v.HasErrors() {
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	var createdFromTime *time.Time
	if createdFrom != nil {
		createdFromTime = &createdFrom.Time
	}

	var createdToTime *time.Time
	if createdTo != nil {
		adjusted := createdTo.Time
		if createdTo.DateOnly {
			adjusted = adjusted.Add(24 * time.Hour)
		}
		createdToTime = &adjusted
	}

	params := ports.DashboardParams{
		ViewerID:    claims.UserID,
		Period:      period,
		CreatedFrom: createdFromTime,
		CreatedTo:   createdToTime,
	}

	dashboard, err := h.dashboardService.GetDashboard(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	// Replace raw user ids with display names where we can resolve them.
	// Lookup failures leave the raw labels in place rather than failing
	// the whole dashboard.
	h.labelUserBuckets(r, dashboard)

	WriteJSON(w, http.StatusOK, dashboard)
}

// labelUserBuckets resolves the user-keyed widget buckets into display names.
func (h *DashboardHandler) labelUserBuckets(r *http.Request, dashboard *analytics.Dashboard) {
	ids := make([]uuid.UUID, 0, len(dashboard.TechnicianLoad)+len(dashboard.TopClients))
	for _, bucket := range dashboard.TechnicianLoad {
		if id, err := uuid.Parse(bucket.Name); err == nil {
			ids = append(ids, id)
		}
	}
	for _, bucket := range dashboard.TopClients {
		if id, err := uuid.Parse(bucket.Name); err == nil {
			ids = append(ids, id)
		}
	}

	infos, err := buildUserInfoDTOMap(r.Context(), h.userLookup, ids)
	if err != nil {
		h.logger.WarnContext(r.Context(), "failed to resolve dashboard user labels",
			"error", err,
		)
		return
	}

	label := func(buckets []analytics.FieldCount) {
		for i, bucket := range buckets {
			id, err := uuid.Parse(bucket.Name)
			if err != nil {
				continue
			}
			if info, ok := infos[id]; ok {
				buckets[i].Label = info.FullName
			}
		}
	}
	label(dashboard.TechnicianLoad)
	label(dashboard.TopClients)
}

// getClaims extracts and validates user claims from the request context.
func (h *DashboardHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}
