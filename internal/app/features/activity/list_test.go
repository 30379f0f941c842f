package activity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/features/activity"
	"github.com/dalemusser/distrohub/internal/app/store/audit"
	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEvents struct {
	events    []audit.Event
	queryErr  error
	lastQuery audit.QueryFilter
	byUser    string
	failedAt  time.Time
}

func (f *fakeEvents) Query(_ context.Context, filter audit.QueryFilter) ([]audit.Event, error) {
	f.lastQuery = filter
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []audit.Event
	for _, e := range f.events {
		if filter.EventType == "" || e.EventType == filter.EventType {
			out = append(out, e)
		}
	}
	if int(filter.Offset) >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeEvents) CountByFilter(_ context.Context, filter audit.QueryFilter) (int64, error) {
	var n int64
	for _, e := range f.events {
		if filter.EventType == "" || e.EventType == filter.EventType {
			n++
		}
	}
	return n, nil
}

func (f *fakeEvents) GetByUser(_ context.Context, userID string, _ int64) ([]audit.Event, error) {
	f.byUser = userID
	var out []audit.Event
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) GetFailedSignIns(_ context.Context, since time.Time, _ int64) ([]audit.Event, error) {
	f.failedAt = since
	var out []audit.Event
	for _, e := range f.events {
		if e.EventType == audit.EventSignInFailed && !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

type listJSON struct {
	Event      string `json:"event"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Items      []struct {
		EventType string `json:"event_type"`
		Label     string `json:"label"`
		Email     string `json:"email"`
	} `json:"items"`
	Mine          []json.RawMessage `json:"mine"`
	FailedSignIns []json.RawMessage `json:"failed_sign_ins"`
}

func sessionFor(role string) *identity.Session {
	return &identity.Session{User: identity.User{
		ID:           uuid.New(),
		Email:        role + "@example.com",
		UserMetadata: map[string]any{"role": role},
	}}
}

func jsonRequest(target string, s *identity.Session) *http.Request {
	req := testutil.NewRequest(http.MethodGet, target)
	req.Header.Set("Accept", "application/json")
	if s != nil {
		req = testutil.WithSession(req, s)
	}
	return req
}

func TestServeList_FilterAndSidePanels(t *testing.T) {
	dist := sessionFor("distributor")
	now := time.Now()
	ev := &fakeEvents{events: []audit.Event{
		{EventType: audit.EventSignInFailed, Email: "x@example.com", Timestamp: now},
		{EventType: audit.EventSignInSuccess, Email: dist.User.Email, UserID: dist.User.ID.String(), Timestamp: now, Success: true},
		{EventType: audit.EventSignInFailed, Email: "old@example.com", Timestamp: now.Add(-48 * time.Hour)},
	}}
	h := activity.NewHandler(ev, zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeList(rec, jsonRequest("/dashboard/activity?event=sign_in_failed", dist))

	rec.AssertStatus(t, http.StatusOK)
	var got listJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "sign_in_failed", got.Event)
	assert.EqualValues(t, 2, got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Sign-in failed", got.Items[0].Label)
	assert.Equal(t, audit.CategoryAuth, ev.lastQuery.Category)

	assert.Equal(t, dist.User.ID.String(), ev.byUser)
	assert.Len(t, got.Mine, 1)
	assert.Len(t, got.FailedSignIns, 1, "only the last 24 hours")
	assert.WithinDuration(t, now.Add(-24*time.Hour), ev.failedAt, time.Minute)
}

func TestServeList_UnknownEventIgnoredAndPaging(t *testing.T) {
	ev := &fakeEvents{}
	for i := 0; i < 30; i++ {
		ev.events = append(ev.events, audit.Event{EventType: audit.EventSignOut})
	}
	h := activity.NewHandler(ev, zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeList(rec, jsonRequest("/dashboard/activity?event=drop_tables&page=2", sessionFor("distributor")))

	var got listJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "", got.Event)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 2, got.TotalPages)
	assert.Len(t, got.Items, 5)
	assert.EqualValues(t, 25, ev.lastQuery.Offset)
}

func TestServeList_RetailerSentHome(t *testing.T) {
	h := activity.NewHandler(&fakeEvents{}, zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.WithSession(testutil.NewRequest(http.MethodGet, "/dashboard/activity"), sessionFor("retailer")))
	rec.AssertRedirect(t, "/retailers-dashboard")
}

func TestServeList_NoSession(t *testing.T) {
	h := activity.NewHandler(&fakeEvents{}, zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewRequest(http.MethodGet, "/dashboard/activity"))
	rec.AssertRedirect(t, "/auth")
}

func TestServeList_StoreFailure(t *testing.T) {
	h := activity.NewHandler(&fakeEvents{queryErr: errors.New("no primary")}, zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeList(rec, jsonRequest("/dashboard/activity", sessionFor("distributor")))
	rec.AssertStatus(t, http.StatusInternalServerError)
}

func TestServeList_HTML(t *testing.T) {
	h := activity.NewHandler(&fakeEvents{}, zap.NewNop())
	rec := testutil.NewRecorder()
	func() {
		// Templates are not booted in unit tests.
		defer func() { _ = recover() }()
		h.ServeList(rec, testutil.WithSession(testutil.NewRequest(http.MethodGet, "/dashboard/activity"), sessionFor("distributor")))
	}()
	assert.NotEqual(t, http.StatusSeeOther, rec.Code)
}
