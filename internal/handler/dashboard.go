package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/middleware"
	"mgacha-dashboard/internal/service"
	"mgacha-dashboard/pkg/apierror"
	"mgacha-dashboard/pkg/response"
)

const maxLeaderboardLimit = 100

// DashboardHandler serves the data behind the dashboard page.
type DashboardHandler struct {
	dashboard   *service.DashboardService
	leaderboard *service.LeaderboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard *service.DashboardService, leaderboard *service.LeaderboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboard:   dashboard,
		leaderboard: leaderboard,
	}
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *DashboardHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardLimit {
			response.Error(w, apierror.ValidationError("invalid query",
				apierror.FieldError{Field: "limit", Message: "must be between 1 and 100"}))
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, entries, limit, int64(len(entries)))
}

// Users handles GET /api/v1/users
func (h *DashboardHandler) Users(w http.ResponseWriter, r *http.Request) {
	names, err := h.dashboard.UserNames(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response.JSONWithMeta(w, http.StatusOK, names, 0, int64(len(names)))
}

// SelectRequest is the body of a selection change.
type SelectRequest struct {
	User string `json:"user"`
}

// Select handles POST /api/v1/session/select
func (h *DashboardHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	req.User = strings.TrimSpace(req.User)
	if req.User == "" {
		response.Error(w, apierror.ValidationError("invalid request",
			apierror.FieldError{Field: "user", Message: "is required"}))
		return
	}

	if _, err := sess.Select(r.Context(), req.User); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.render(w, r, sess)
}

// ViewRequest changes presentation parameters. Omitted fields keep their value.
type ViewRequest struct {
	Mode    *string `json:"mode"`
	Sort    *string `json:"sort"`
	Reverse *bool   `json:"reverse"`
	Filter  *string `json:"filter"`
}

func (req ViewRequest) toUpdate() (service.ViewUpdate, []apierror.FieldError) {
	var (
		u       service.ViewUpdate
		details []apierror.FieldError
	)

	if req.Mode != nil {
		mode, err := service.ParseMode(*req.Mode)
		if err != nil {
			details = append(details, apierror.FieldError{Field: "mode", Message: "must be owned or all"})
		}
		u.Mode = &mode
	}
	if req.Sort != nil {
		key, err := service.ParseSortKey(*req.Sort)
		if err != nil {
			details = append(details, apierror.FieldError{Field: "sort", Message: "must be number, name, rarity or quantity"})
		}
		u.Key = &key
	}
	if req.Filter != nil {
		filter, err := service.ParseFilter(*req.Filter)
		if err != nil {
			details = append(details, apierror.FieldError{Field: "filter", Message: "must be all, owned or unowned"})
		}
		u.Filter = &filter
	}
	u.Descending = req.Reverse

	return u, details
}

// UpdateView handles PUT /api/v1/session/view
func (h *DashboardHandler) UpdateView(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	update, details := req.toUpdate()
	if len(details) > 0 {
		response.Error(w, apierror.ValidationError("invalid view parameters", details...))
		return
	}

	settings := sess.Update(update)
	if status, _ := sess.Status(); status != service.Loaded {
		response.OK(w, map[string]interface{}{"settings": settings})
		return
	}

	h.render(w, r, sess)
}

// Refresh handles POST /api/v1/session/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	if err := sess.Refresh(r.Context()); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.render(w, r, sess)
}

// View handles GET /api/v1/session/view
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, middleware.GetSession(r.Context()))
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, sess *service.Session) {
	view, err := sess.Render()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	response.OK(w, view)
}

// writeServiceError maps service and store failures onto API errors.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, apierror.NotFound(service.NoticeUserNotFound))
	case errors.Is(err, service.ErrUnknownRarity):
		response.Error(w, apierror.Unprocessable(err.Error()))
	case errors.Is(err, service.ErrNoSelection):
		response.Error(w, apierror.Conflict("no user selected"))
	case errors.Is(err, service.ErrInvalidParam):
		response.Error(w, apierror.BadRequest(err.Error()))
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
	default:
		logger.Log.Errorw("[DashboardHandler] store failure",
			"path", r.URL.Path,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err)
		response.Error(w, apierror.ServiceUnavailable("store unavailable"))
	}
}
