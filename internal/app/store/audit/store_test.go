package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/distrohub/internal/app/store/audit"
	"github.com/dalemusser/distrohub/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LogAndGetByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, store.EnsureIndexes(ctx))

	userID := uuid.NewString()
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignInSuccess,
		UserID:    userID,
		Email:     "shop@example.com",
		IP:        "192.168.1.1",
		Success:   true,
	}))

	events, err := store.GetByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].ID.IsZero(), "ID should be generated")
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, time.Minute)
}

func TestStore_GetFailedSignIns(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	since := time.Now().Add(-time.Minute)
	require.NoError(t, store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventSignInFailed, Email: "a@example.com"}))
	require.NoError(t, store.Log(ctx, audit.Event{Category: audit.CategoryAuth, EventType: audit.EventSignInSuccess, Email: "a@example.com", Success: true}))
	require.NoError(t, store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignInFailed,
		Email:     "old@example.com",
		Timestamp: time.Now().Add(-time.Hour),
	}))

	events, err := store.GetFailedSignIns(ctx, since, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a@example.com", events[0].Email)

	page, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, audit.EventSignInSuccess, page[0].EventType, "newest first, second entry")

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Email: "a@example.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
