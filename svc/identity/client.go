package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// User is the account record returned by the auth backend.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Session is an issued access token pair.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// SignUpResult holds the created user. Session is nil when the backend
// requires email confirmation before the first sign-in.
type SignUpResult struct {
	User    User     `json:"user"`
	Session *Session `json:"session"`
}

// Client calls the GoTrue REST API.
type Client struct {
	baseURL     string
	anonKey     string
	redirectURL string
	client      *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default client, which has Config.Timeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// NewClient returns ErrNotConfigured when cfg lacks the URL or anon key.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = timeout
	c := &Client{
		baseURL:     strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		anonKey:     cfg.AnonKey,
		redirectURL: cfg.RedirectURL,
		client:      hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a user. redirectTo is the confirmation link target; the
// configured redirect URL is used when it is empty.
func (c *Client) SignUp(ctx context.Context, email, password, redirectTo string) (SignUpResult, error) {
	var out struct {
		Session
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	q := c.redirectQuery(redirectTo)
	if err := c.do(ctx, http.MethodPost, "/signup", q, "", credentials{email, password}, &out); err != nil {
		return SignUpResult{}, err
	}
	if out.AccessToken != "" {
		s := out.Session
		return SignUpResult{User: s.User, Session: &s}, nil
	}
	user := out.User
	if user.ID == "" {
		user = User{ID: out.ID, Email: out.Email}
	}
	return SignUpResult{User: user}, nil
}

// SignIn exchanges an email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (Session, error) {
	var out Session
	q := url.Values{"grant_type": {"password"}}
	if err := c.do(ctx, http.MethodPost, "/token", q, "", credentials{email, password}, &out); err != nil {
		return Session{}, err
	}
	return out, nil
}

// SignOut revokes the session of accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, accessToken, nil, nil)
}

// ResendVerification sends the sign-up confirmation email again.
func (c *Client) ResendVerification(ctx context.Context, email, redirectTo string) error {
	body := struct {
		Type  string `json:"type"`
		Email string `json:"email"`
	}{Type: "signup", Email: email}
	return c.do(ctx, http.MethodPost, "/resend", c.redirectQuery(redirectTo), "", body, nil)
}

// GetUser returns the user owning accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/user", nil, accessToken, nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

func (c *Client) redirectQuery(redirectTo string) url.Values {
	if redirectTo == "" {
		redirectTo = c.redirectURL
	}
	if redirectTo == "" {
		return nil
	}
	return url.Values{"redirect_to": {redirectTo}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return &UpstreamError{Status: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %w", ErrUnavailable, err)
	}
	return nil
}

// errorMessage picks the human message out of the several error shapes the
// backend uses.
func errorMessage(raw []byte, status int) string {
	var e struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		for _, m := range []string{e.Msg, e.ErrorDescription, e.Message, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}
