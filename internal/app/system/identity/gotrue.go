package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxResponseBytes caps how much of a provider response body we read.
const maxResponseBytes = 1 << 20

// Config configures the GoTrue client.
type Config struct {
	URL        string // project URL, e.g. https://xyz.supabase.co
	AnonKey    string // public API key sent as the apikey header
	HTTPClient *http.Client
}

// Client talks to a GoTrue-compatible auth API (the API Supabase hosts
// under /auth/v1). It is safe for concurrent use.
type Client struct {
	base    *url.URL
	anonKey string
	http    *http.Client
	log     *zap.Logger
}

var _ Provider = (*Client)(nil)

// NewClient validates cfg and builds a Client. A missing URL or key is an
// error here so that a misconfigured deployment fails at startup instead
// of at the first login.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	rawURL := strings.TrimSpace(cfg.URL)
	if rawURL == "" {
		return nil, errors.New("identity: provider URL is empty; set provider_url")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		return nil, errors.New("identity: provider API key is empty; set provider_anon_key")
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("identity: parse provider URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("identity: provider URL %q must be absolute", rawURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:    base,
		anonKey: strings.TrimSpace(cfg.AnonKey),
		http:    hc,
		log:     logger,
	}, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Wire shapes                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type errorResponse struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrant struct {
	RefreshToken string `json:"refresh_token"`
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| Provider operations                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// SignInWithPassword exchanges email/password for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp sessionResponse
	q := url.Values{"grant_type": {"password"}}
	if err := c.do(ctx, http.MethodPost, "token", q, "", passwordGrant{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return resp.toAuthResponse(), nil
}

// SignUp registers a user. Depending on the project's confirmation setting
// the provider answers with a session or with the bare user.
func (c *Client) SignUp(ctx context.Context, email, password string, opts SignUpOptions) (*AuthResponse, error) {
	var q url.Values
	if opts.RedirectTo != "" {
		q = url.Values{"redirect_to": {opts.RedirectTo}}
	}

	var raw json.RawMessage
	body := signUpRequest{Email: email, Password: password, Data: opts.Data}
	if err := c.do(ctx, http.MethodPost, "signup", q, "", body, &raw); err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("identity: decode signup response: %w", err)
	}
	if resp.AccessToken != "" || resp.User != nil {
		return resp.toAuthResponse(), nil
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("identity: decode signup user: %w", err)
	}
	if u.ID == uuid.Nil {
		return &AuthResponse{}, nil
	}
	return &AuthResponse{User: &u}, nil
}

// SignOut revokes the session the access token belongs to.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrNoSession
	}
	q := url.Values{"scope": {"global"}}
	return c.do(ctx, http.MethodPost, "logout", q, accessToken, nil, nil)
}

// GetUser fetches the user the access token belongs to.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}
	var u User
	if err := c.do(ctx, http.MethodGet, "user", nil, accessToken, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser changes attributes (currently the password) of the current user.
func (c *Client) UpdateUser(ctx context.Context, accessToken string, attrs UserAttributes) (*User, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}
	var u User
	if err := c.do(ctx, http.MethodPut, "user", nil, accessToken, attrs, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RefreshSession trades a refresh token for a new session.
func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrNoSession
	}
	var resp sessionResponse
	q := url.Values{"grant_type": {"refresh_token"}}
	if err := c.do(ctx, http.MethodPost, "token", q, "", refreshGrant{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return resp.toAuthResponse(), nil
}

// Health checks that the provider is reachable and answering.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "health", nil, "", nil, nil)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (c *Client) do(ctx context.Context, method, path string, q url.Values, bearer string, in, out any) error {
	endpoint := c.base.JoinPath("auth", "v1", path)
	if len(q) > 0 {
		endpoint.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("identity: encode %s request: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("identity: build %s request: %w", path, err)
	}
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("identity request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrUnavailable, path, err)
	}

	c.log.Debug("identity request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("took", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("identity: decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(status int, payload []byte) error {
	apiErr := &APIError{Status: status}

	var er errorResponse
	if err := json.Unmarshal(payload, &er); err != nil {
		apiErr.Message = strings.TrimSpace(string(payload))
		return apiErr
	}

	switch {
	case er.Msg != "":
		apiErr.Message = er.Msg
	case er.ErrorDescription != "":
		apiErr.Message = er.ErrorDescription
	case er.Message != "":
		apiErr.Message = er.Message
	default:
		apiErr.Message = er.Error
	}

	apiErr.Code = er.ErrorCode
	if apiErr.Code == "" && er.ErrorDescription != "" {
		// OAuth-style body: "error" holds the code.
		apiErr.Code = er.Error
	}
	return apiErr
}

func (r sessionResponse) toAuthResponse() *AuthResponse {
	out := &AuthResponse{User: r.User}
	if r.AccessToken == "" {
		return out
	}

	tok := &oauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
	}
	switch {
	case r.ExpiresAt > 0:
		tok.Expiry = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		tok.Expiry = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}

	sess := &Session{Token: tok}
	if r.User != nil {
		sess.User = *r.User
	}
	out.Session = sess
	return out
}
