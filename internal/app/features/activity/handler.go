// internal/app/features/activity/handler.go
package activity

import (
	"context"
	"time"

	"github.com/dalemusser/distrohub/internal/app/store/audit"
	"go.uber.org/zap"
)

// EventReader is the read side of the audit store.
type EventReader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
	CountByFilter(ctx context.Context, filter audit.QueryFilter) (int64, error)
	GetByUser(ctx context.Context, userID string, limit int64) ([]audit.Event, error)
	GetFailedSignIns(ctx context.Context, since time.Time, limit int64) ([]audit.Event, error)
}

type Handler struct {
	Events EventReader
	Log    *zap.Logger
}

// NewHandler constructs the account activity handler over the audit store.
func NewHandler(events EventReader, logger *zap.Logger) *Handler {
	return &Handler{
		Events: events,
		Log:    logger,
	}
}
