package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// TestJWTSecret signs the access tokens FakeProvider issues.
const TestJWTSecret = "test-jwt-secret-for-distrohub-tests"

// Provider messages, as the hosted auth API words them.
const (
	MsgInvalidCredentials = "Invalid login credentials"
	MsgEmailNotConfirmed  = "Email not confirmed"
	MsgAlreadyRegistered  = "User already registered"
	MsgWeakPassword       = "Password should be at least 6 characters."
	MsgRefreshNotFound    = "Invalid Refresh Token: Refresh Token Not Found"
)

type fakeUser struct {
	user      identity.User
	password  string
	confirmed bool
}

// FakeProvider is an in-memory identity.Provider. Users are keyed by email;
// sessions carry real HS256 tokens signed with TestJWTSecret so they
// round-trip through auth.SessionManager.
//
// Set one of the *Err fields to force the matching call to fail.
type FakeProvider struct {
	mu sync.Mutex

	TTL time.Duration

	// RequireConfirmation makes sign-up return a user without a session;
	// sign-in then fails with "Email not confirmed" until ConfirmUser.
	RequireConfirmation bool
	// SignInWithoutSession makes a successful sign-in return no session.
	SignInWithoutSession bool

	SignInErr  error
	SignUpErr  error
	SignOutErr error
	GetUserErr error
	UpdateErr  error
	RefreshErr error

	users    map[string]*fakeUser
	refresh  map[string]uuid.UUID
	revoked  map[string]bool
	calls    map[string]int
	lastOpts identity.SignUpOptions
}

var _ identity.Provider = (*FakeProvider)(nil)

// NewFakeProvider returns an empty FakeProvider issuing one-hour tokens.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		TTL:     time.Hour,
		users:   make(map[string]*fakeUser),
		refresh: make(map[string]uuid.UUID),
		revoked: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

// AddUser registers a confirmed user. An empty role leaves user_metadata.role unset.
func (f *FakeProvider) AddUser(email, password, role string) identity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta := map[string]any{}
	if role != "" {
		meta["role"] = role
	}
	u := identity.User{ID: uuid.New(), Email: email, UserMetadata: meta}
	f.users[email] = &fakeUser{user: u, password: password, confirmed: true}
	return u
}

// ConfirmUser marks a pending sign-up as confirmed.
func (f *FakeProvider) ConfirmUser(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		u.confirmed = true
	}
}

// User returns the stored user for email.
func (f *FakeProvider) User(email string) (identity.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return identity.User{}, false
	}
	return u.user, true
}

// Password returns the stored password for email.
func (f *FakeProvider) Password(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		return u.password
	}
	return ""
}

// Issue mints a session for an existing user with the given lifetime.
// A negative ttl yields an already-expired session.
func (f *FakeProvider) Issue(email string, ttl time.Duration) *identity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil
	}
	return f.issueLocked(u.user, ttl)
}

// Calls returns how many times op (e.g. "SignInWithPassword") was invoked.
func (f *FakeProvider) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// LastSignUpOptions returns the options of the most recent SignUp call.
func (f *FakeProvider) LastSignUpOptions() identity.SignUpOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

// Revoked reports whether SignOut was called for accessToken.
func (f *FakeProvider) Revoked(accessToken string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[accessToken]
}

func (f *FakeProvider) SignInWithPassword(_ context.Context, email, password string) (*identity.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SignInWithPassword"]++
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	u, ok := f.users[email]
	if !ok || u.password != password {
		return nil, &identity.APIError{Status: 400, Code: "invalid_credentials", Message: MsgInvalidCredentials}
	}
	if !u.confirmed {
		return nil, &identity.APIError{Status: 400, Code: "email_not_confirmed", Message: MsgEmailNotConfirmed}
	}
	user := u.user
	if f.SignInWithoutSession {
		return &identity.AuthResponse{User: &user}, nil
	}
	return &identity.AuthResponse{Session: f.issueLocked(user, f.TTL), User: &user}, nil
}

func (f *FakeProvider) SignUp(_ context.Context, email, password string, opts identity.SignUpOptions) (*identity.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SignUp"]++
	f.lastOpts = opts
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	if _, exists := f.users[email]; exists {
		return nil, &identity.APIError{Status: 422, Code: "user_already_exists", Message: MsgAlreadyRegistered}
	}
	if len(password) < 6 {
		return nil, &identity.APIError{Status: 422, Code: "weak_password", Message: MsgWeakPassword}
	}

	meta := make(map[string]any, len(opts.Data))
	for k, v := range opts.Data {
		meta[k] = v
	}
	u := identity.User{ID: uuid.New(), Email: email, UserMetadata: meta}
	f.users[email] = &fakeUser{user: u, password: password, confirmed: !f.RequireConfirmation}

	if f.RequireConfirmation {
		return &identity.AuthResponse{User: &u}, nil
	}
	return &identity.AuthResponse{Session: f.issueLocked(u, f.TTL), User: &u}, nil
}

func (f *FakeProvider) SignOut(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["SignOut"]++
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.revoked[accessToken] = true
	return nil
}

func (f *FakeProvider) GetUser(_ context.Context, accessToken string) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["GetUser"]++
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	u, err := f.userForTokenLocked(accessToken)
	if err != nil {
		return nil, err
	}
	user := u.user
	return &user, nil
}

func (f *FakeProvider) UpdateUser(_ context.Context, accessToken string, attrs identity.UserAttributes) (*identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateUser"]++
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	u, err := f.userForTokenLocked(accessToken)
	if err != nil {
		return nil, err
	}
	if attrs.Password != "" {
		if len(attrs.Password) < 6 {
			return nil, &identity.APIError{Status: 422, Code: "weak_password", Message: MsgWeakPassword}
		}
		u.password = attrs.Password
	}
	user := u.user
	return &user, nil
}

func (f *FakeProvider) RefreshSession(_ context.Context, refreshToken string) (*identity.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["RefreshSession"]++
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	id, ok := f.refresh[refreshToken]
	if !ok {
		return nil, &identity.APIError{Status: 400, Code: "refresh_token_not_found", Message: MsgRefreshNotFound}
	}
	delete(f.refresh, refreshToken)
	for _, u := range f.users {
		if u.user.ID == id {
			user := u.user
			return &identity.AuthResponse{Session: f.issueLocked(user, f.TTL), User: &user}, nil
		}
	}
	return nil, &identity.APIError{Status: 404, Message: "User not found"}
}

func (f *FakeProvider) userForTokenLocked(accessToken string) (*fakeUser, error) {
	unauthorized := &identity.APIError{Status: 401, Code: "bad_jwt", Message: "invalid JWT"}
	if accessToken == "" || f.revoked[accessToken] {
		return nil, unauthorized
	}
	info, err := identity.ParseAccessToken(accessToken, []byte(TestJWTSecret))
	if err != nil {
		return nil, unauthorized
	}
	for _, u := range f.users {
		if u.user.ID == info.User.ID {
			return u, nil
		}
	}
	return nil, &identity.APIError{Status: 404, Message: "User not found"}
}

func (f *FakeProvider) issueLocked(u identity.User, ttl time.Duration) *identity.Session {
	expiry := time.Now().Add(ttl).Truncate(time.Second)
	refresh := uuid.NewString()
	f.refresh[refresh] = u.ID
	return &identity.Session{
		Token: &oauth2.Token{
			AccessToken:  MintAccessToken(u, expiry),
			TokenType:    "bearer",
			RefreshToken: refresh,
			Expiry:       expiry,
		},
		User: u,
	}
}

// MintAccessToken signs an access token for u with TestJWTSecret.
func MintAccessToken(u identity.User, expiry time.Time) string {
	claims := jwt.MapClaims{
		"sub":           u.ID.String(),
		"email":         u.Email,
		"user_metadata": u.UserMetadata,
		"aud":           "authenticated",
		"session_id":    uuid.NewString(),
		"iat":           time.Now().Unix(),
		"exp":           expiry.Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		panic(err)
	}
	return tok
}
