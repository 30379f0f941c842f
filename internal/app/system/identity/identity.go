// Package identity is the boundary to the external identity provider.
//
// The provider owns credentials, password hashing and token issuance.
// This package only describes the operations the app consumes and the
// session/user shapes it reads back.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// ErrUnavailable marks failures where the provider could not be reached or
// answered with a server error. Callers show a generic "service unavailable"
// message for these.
var ErrUnavailable = errors.New("identity provider unavailable")

// ErrNoSession is returned by operations that need an access token when
// none is present.
var ErrNoSession = errors.New("no active session")

// User is the subset of the provider's user record this app reads.
type User struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Role returns user_metadata.role, or "" when absent or not a string.
func (u User) Role() string {
	if u.UserMetadata == nil {
		return ""
	}
	role, _ := u.UserMetadata["role"].(string)
	return role
}

// Session is an authenticated provider session: the token pair plus the
// user decoded from the access token.
type Session struct {
	Token *oauth2.Token
	User  User
}

// AuthResponse is what sign-in, sign-up and refresh return. Session is nil
// when the provider created a user but did not log them in (e.g. email
// confirmation pending).
type AuthResponse struct {
	Session *Session
	User    *User
}

// SignUpOptions carries user metadata and the confirmation redirect.
type SignUpOptions struct {
	Data       map[string]any
	RedirectTo string
}

// UserAttributes are the updatable fields of the current user.
type UserAttributes struct {
	Password string `json:"password,omitempty"`
}

// Provider is the set of provider operations the app depends on.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error)
	SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*User, error)
	UpdateUser(ctx context.Context, accessToken string, attrs UserAttributes) (*User, error)
	RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error)
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity provider returned %d", e.Status)
}

// Unwrap makes 5xx answers match ErrUnavailable.
func (e *APIError) Unwrap() error {
	if e.Status >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	return nil
}

// MessageContains reports whether err carries a provider message containing
// substr. Provider messages are matched case-sensitively, as issued.
func MessageContains(err error, substr string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.Message, substr)
}

// StatusOf returns the HTTP status of a provider API error, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
