// Package auth keeps the identity provider's session in a signed cookie and
// gates pages on it.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/distrohub/internal/app/system/identity"
	"github.com/dalemusser/distrohub/internal/app/system/timeouts"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "distrohub-session"

	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	tokenTypeKey    = "token_type"
	expiresAtKey    = "expires_at"
)

// ErrBadCookie wraps failures to decode the session cookie.
var ErrBadCookie = errors.New("unreadable session cookie")

// Config configures the session cookie.
type Config struct {
	Key    string        // HMAC key for the cookie, 32+ chars recommended
	Name   string        // cookie name
	Domain string        // cookie domain, empty for host-only
	MaxAge time.Duration // cookie lifetime
	Secure bool          // Secure flag; SameSite=None when set, Lax otherwise

	// JWTSecret verifies access-token signatures when set.
	JWTSecret string
}

// SessionManager reads and writes the provider session cookie. The cookie
// holds only the provider token pair; the user is decoded from the access
// token on every read.
type SessionManager struct {
	store     *sessions.CookieStore
	name      string
	provider  identity.Provider
	jwtSecret []byte
	log       *zap.Logger
}

// NewSessionManager builds a SessionManager over a gorilla cookie store.
func NewSessionManager(cfg Config, provider identity.Provider, logger *zap.Logger) (*SessionManager, error) {
	if cfg.Key == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if provider == nil {
		return nil, errors.New("session manager needs an identity provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(cfg.Key)))
	}

	name := cfg.Name
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(cfg.Key))
	opts := &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge / time.Second),
		Secure:   cfg.Secure,
		HttpOnly: true,
	}
	if cfg.Secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", cfg.Secure),
		zap.String("domain", cfg.Domain),
		zap.Bool("verify_jwt", cfg.JWTSecret != ""))

	return &SessionManager{
		store:     store,
		name:      name,
		provider:  provider,
		jwtSecret: []byte(cfg.JWTSecret),
		log:       logger,
	}, nil
}

// Name returns the session cookie name.
func (m *SessionManager) Name() string { return m.name }

// Provider returns the identity provider the manager refreshes against.
func (m *SessionManager) Provider() identity.Provider { return m.provider }

/*─────────────────────────────────────────────────────────────────────────────*
| Reading                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// GetSession returns the current provider session, or nil when the request
// carries none. An expired access token is refreshed through the provider
// and the new tokens are written to w; later calls within the same request
// see the refreshed session.
//
// A cookie that cannot be decoded, or whose refresh token the provider
// rejects, is cleared and reported as an error.
func (m *SessionManager) GetSession(w http.ResponseWriter, r *http.Request) (*identity.Session, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.expire(w, r, sess)
		return nil, fmt.Errorf("%w: %w", ErrBadCookie, err)
	}

	access := stringValue(sess, accessTokenKey)
	if access == "" {
		return nil, nil
	}

	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: stringValue(sess, refreshTokenKey),
		TokenType:    stringValue(sess, tokenTypeKey),
	}
	if exp, ok := sess.Values[expiresAtKey].(int64); ok && exp > 0 {
		tok.Expiry = time.Unix(exp, 0)
	}

	if !tok.Valid() {
		return m.refresh(w, r, sess, tok.RefreshToken)
	}

	info, err := identity.ParseAccessToken(access, m.jwtSecret)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return m.refresh(w, r, sess, tok.RefreshToken)
	}
	if err != nil {
		m.expire(w, r, sess)
		return nil, err
	}
	if tok.Expiry.IsZero() {
		tok.Expiry = info.ExpiresAt
	}

	return &identity.Session{Token: tok, User: info.User}, nil
}

func (m *SessionManager) refresh(w http.ResponseWriter, r *http.Request, sess *sessions.Session, refreshToken string) (*identity.Session, error) {
	if refreshToken == "" {
		m.expire(w, r, sess)
		return nil, nil
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Provider(), m.log, "refresh session")
	defer cancel()

	res, err := m.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		// An unreachable provider says nothing about the refresh token, so
		// keep the cookie for the next request.
		if !errors.Is(err, identity.ErrUnavailable) {
			m.expire(w, r, sess)
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	if res == nil || res.Session == nil {
		m.expire(w, r, sess)
		return nil, nil
	}

	s, err := m.complete(res.Session)
	if err != nil {
		m.expire(w, r, sess)
		return nil, err
	}
	if err := m.write(w, r, sess, s); err != nil {
		return nil, err
	}
	m.log.Debug("session refreshed", zap.String("user_id", s.User.ID.String()))
	return s, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Writing                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// SaveSession stores a freshly issued provider session in the cookie and
// returns it with its user filled in from the access token when the
// provider response omitted it.
func (m *SessionManager) SaveSession(w http.ResponseWriter, r *http.Request, s *identity.Session) (*identity.Session, error) {
	if s == nil || s.Token == nil || s.Token.AccessToken == "" {
		return nil, identity.ErrNoSession
	}
	s, err := m.complete(s)
	if err != nil {
		return nil, err
	}
	// A decode error yields a fresh session, which is what we want here.
	sess, _ := m.store.Get(r, m.name)
	if err := m.write(w, r, sess, s); err != nil {
		return nil, err
	}
	return s, nil
}

// ClearSession expires the session cookie.
func (m *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	return m.expire(w, r, sess)
}

func (m *SessionManager) write(w http.ResponseWriter, r *http.Request, sess *sessions.Session, s *identity.Session) error {
	// The same request may have expired this session already.
	if sess.Options.MaxAge < 0 {
		sess.Options.MaxAge = m.store.Options.MaxAge
	}
	sess.Values[accessTokenKey] = s.Token.AccessToken
	sess.Values[refreshTokenKey] = s.Token.RefreshToken
	sess.Values[tokenTypeKey] = s.Token.TokenType
	if s.Token.Expiry.IsZero() {
		delete(sess.Values, expiresAtKey)
	} else {
		sess.Values[expiresAtKey] = s.Token.Expiry.Unix()
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

func (m *SessionManager) expire(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	if sess == nil {
		sess = sessions.NewSession(m.store, m.name)
		opts := *m.store.Options
		sess.Options = &opts
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("failed to clear session cookie", zap.Error(err))
		return fmt.Errorf("clear session cookie: %w", err)
	}
	return nil
}

// complete fills the user from the access token when the provider did not
// return one, and the expiry from the token's exp claim.
func (m *SessionManager) complete(s *identity.Session) (*identity.Session, error) {
	if s.User.ID != uuid.Nil && !s.Token.Expiry.IsZero() {
		return s, nil
	}
	info, err := identity.ParseAccessToken(s.Token.AccessToken, m.jwtSecret)
	if err != nil {
		return nil, err
	}
	out := *s
	tok := *s.Token
	if tok.Expiry.IsZero() {
		tok.Expiry = info.ExpiresAt
	}
	out.Token = &tok
	if out.User.ID == uuid.Nil {
		out.User = info.User
	}
	return &out, nil
}

func stringValue(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
