// internal/app/features/activity/list.go
package activity

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dalemusser/distrohub/internal/app/store/audit"
	"github.com/dalemusser/distrohub/internal/app/system/auth"
	"github.com/dalemusser/distrohub/internal/app/system/authz"
	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	pageSize     = 25
	sideListSize = 10
	failedWindow = 24 * time.Hour
)

// ServeList handles GET /dashboard/activity?event=&page=. Distributors see
// every auth event; retailers are sent to their own dashboard.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.CurrentSession(r)
	if !ok {
		auth.Redirect(w, r, authz.SignInPage)
		return
	}
	if authz.SessionIsRetailer(s) {
		auth.Redirect(w, r, authz.RetailerHome)
		return
	}

	event := query.Get(r, "event")
	if !knownEvent(event) {
		event = ""
	}
	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  audit.CategoryAuth,
		EventType: event,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "activity list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.serverError(w, "query audit events", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.serverError(w, "count audit events", err)
		return
	}

	// Side panels are best effort.
	mine, err := h.Events.GetByUser(ctx, s.User.ID.String(), sideListSize)
	if err != nil {
		h.Log.Warn("activity: own events unavailable", zap.Error(err))
	}
	failed, err := h.Events.GetFailedSignIns(ctx, time.Now().Add(-failedWindow), sideListSize)
	if err != nil {
		h.Log.Warn("activity: failed sign-ins unavailable", zap.Error(err))
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	data := listData{
		EventTypes:    eventOptions,
		Event:         event,
		Items:         toItems(events),
		Total:         total,
		Page:          page,
		TotalPages:    totalPages,
		Mine:          toItems(mine),
		FailedSignIns: toItems(failed),
	}
	if page > 1 {
		data.PrevURL = pageURL(event, page-1)
	}
	if page < totalPages {
		data.NextURL = pageURL(event, page+1)
	}

	if auth.WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(data)
		return
	}

	data.BaseVM = viewdata.NewBaseVM(r, "Account Activity", "/dashboard")
	templates.Render(w, r, "activity_list", data)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.Log.Error("activity: "+op, zap.Error(err))
	http.Error(w, "A database error occurred.", http.StatusInternalServerError)
}

func pageURL(event string, page int) string {
	q := url.Values{"page": {strconv.Itoa(page)}}
	if event != "" {
		q.Set("event", event)
	}
	return "/dashboard/activity?" + q.Encode()
}
