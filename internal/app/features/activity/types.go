// internal/app/features/activity/types.go
package activity

import (
	"time"

	"github.com/dalemusser/distrohub/internal/app/store/audit"
	"github.com/dalemusser/distrohub/internal/app/system/viewdata"
)

type eventOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// eventOptions lists the auth event types the filter offers, in display order.
var eventOptions = []eventOption{
	{audit.EventSignInSuccess, "Signed in"},
	{audit.EventSignInFailed, "Sign-in failed"},
	{audit.EventSignUpSuccess, "Signed up"},
	{audit.EventSignUpFailed, "Sign-up failed"},
	{audit.EventSignOut, "Signed out"},
	{audit.EventSignOutFailed, "Sign-out failed"},
	{audit.EventPasswordChanged, "Password changed"},
	{audit.EventPasswordChangeFailed, "Password change failed"},
}

func eventLabel(eventType string) string {
	for _, o := range eventOptions {
		if o.Value == eventType {
			return o.Label
		}
	}
	return eventType
}

func knownEvent(eventType string) bool {
	for _, o := range eventOptions {
		if o.Value == eventType {
			return true
		}
	}
	return false
}

type listItem struct {
	Timestamp time.Time `json:"timestamp"`
	When      string    `json:"-"`
	EventType string    `json:"event_type"`
	Label     string    `json:"label"`
	Email     string    `json:"email,omitempty"`
	IP        string    `json:"ip"`
	Success   bool      `json:"success"`
	Reason    string    `json:"reason,omitempty"`
}

type listData struct {
	viewdata.BaseVM `json:"-"`

	EventTypes []eventOption `json:"-"`
	Event      string        `json:"event"`

	Items      []listItem `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	PrevURL    string     `json:"-"`
	NextURL    string     `json:"-"`

	Mine          []listItem `json:"mine"`
	FailedSignIns []listItem `json:"failed_sign_ins"`
}

func toItems(events []audit.Event) []listItem {
	items := make([]listItem, 0, len(events))
	for _, e := range events {
		items = append(items, listItem{
			Timestamp: e.Timestamp,
			When:      e.Timestamp.UTC().Format("2006-01-02 15:04 UTC"),
			EventType: e.EventType,
			Label:     eventLabel(e.EventType),
			Email:     e.Email,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
		})
	}
	return items
}
