// Package prefs holds per-user UI preferences (theme and sidebar state).
//
// Values live behind a small key-value interface so the page layer never
// touches storage directly; viewdata loads them once per page render.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Preference keys.
const (
	KeyTheme   = "theme"
	KeySidebar = "sidebar"
)

// Allowed values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	SidebarExpanded  = "expanded"
	SidebarCollapsed = "collapsed"
)

var (
	// ErrUnknownKey is returned for keys other than theme and sidebar.
	ErrUnknownKey = errors.New("unknown preference key")
	// ErrNoOwner is returned when persisting without a signed-in user.
	ErrNoOwner = errors.New("preferences need a signed-in user")
)

// KV stores string values per owner and key. Get reports ok=false when the
// value was never set.
type KV interface {
	Get(ctx context.Context, owner, key string) (value string, ok bool, err error)
	Set(ctx context.Context, owner, key, value string) error
}

// Preferences is what pages render with.
type Preferences struct {
	Theme   string
	Sidebar string
}

// Dark reports whether the dark theme is active.
func (p Preferences) Dark() bool { return p.Theme == ThemeDark }

// Collapsed reports whether the sidebar is collapsed.
func (p Preferences) Collapsed() bool { return p.Sidebar == SidebarCollapsed }

// Defaults returns light theme with an expanded sidebar.
func Defaults() Preferences {
	return Preferences{Theme: ThemeLight, Sidebar: SidebarExpanded}
}

// Service reads and toggles preferences.
type Service struct {
	kv  KV
	log *zap.Logger
}

// NewService wraps kv.
func NewService(kv KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{kv: kv, log: logger}
}

// Load returns owner's preferences. Anonymous owners, unset keys, invalid
// stored values and storage errors all fall back to the defaults; a page
// never fails to render over a preference.
func (s *Service) Load(ctx context.Context, owner string) Preferences {
	p := Defaults()
	if s == nil || s.kv == nil || owner == "" {
		return p
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	if v := s.get(ctx, owner, KeyTheme); v == ThemeLight || v == ThemeDark {
		p.Theme = v
	}
	if v := s.get(ctx, owner, KeySidebar); v == SidebarExpanded || v == SidebarCollapsed {
		p.Sidebar = v
	}
	return p
}

// Toggle flips key for owner, persists it and returns the new value.
func (s *Service) Toggle(ctx context.Context, owner, key string) (string, error) {
	if owner == "" {
		return "", ErrNoOwner
	}
	cur := s.Load(ctx, owner)

	var next string
	switch key {
	case KeyTheme:
		next = ThemeDark
		if cur.Dark() {
			next = ThemeLight
		}
	case KeySidebar:
		next = SidebarCollapsed
		if cur.Collapsed() {
			next = SidebarExpanded
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := s.kv.Set(ctx, owner, key, next); err != nil {
		return "", fmt.Errorf("save %s preference: %w", key, err)
	}
	return next, nil
}

func (s *Service) get(ctx context.Context, owner, key string) string {
	v, ok, err := s.kv.Get(ctx, owner, key)
	if err != nil {
		s.log.Warn("preference lookup failed; using default",
			zap.String("owner", owner),
			zap.String("key", key),
			zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
