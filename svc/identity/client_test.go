package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/svc/identity"
)

func newClient(t *testing.T, h http.HandlerFunc) *identity.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := identity.NewClient(identity.Config{URL: srv.URL + "/", AnonKey: "anon-key", RedirectURL: "http://localhost:3001/"})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := identity.NewClient(identity.Config{URL: "http://localhost"})
	require.ErrorIs(t, err, identity.ErrNotConfigured)
	_, err = identity.NewClient(identity.Config{AnonKey: "k"})
	require.ErrorIs(t, err, identity.ErrNotConfigured)
}

func TestClient_SignIn(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"email": "ada@example.com", "password": "pw"}, body)

		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"bearer","expires_in":3600,"refresh_token":"rt","user":{"id":"user-1","email":"ada@example.com"}}`))
	})

	sess, err := c.SignIn(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "at", sess.AccessToken)
	assert.Equal(t, "rt", sess.RefreshToken)
	assert.Equal(t, "user-1", sess.User.ID)
}

func TestClient_SignUp(t *testing.T) {
	t.Parallel()

	t.Run("confirmation required", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			assert.Equal(t, "http://localhost:3001/", r.URL.Query().Get("redirect_to"))
			_, _ = w.Write([]byte(`{"id":"user-2","email":"bob@example.com"}`))
		})
		res, err := c.SignUp(context.Background(), "bob@example.com", "pw", "")
		require.NoError(t, err)
		assert.Equal(t, "user-2", res.User.ID)
		assert.Nil(t, res.Session)
	})

	t.Run("auto confirmed", func(t *testing.T) {
		t.Parallel()
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "https://app.example.com/", r.URL.Query().Get("redirect_to"))
			_, _ = w.Write([]byte(`{"access_token":"at","user":{"id":"user-3","email":"eve@example.com"}}`))
		})
		res, err := c.SignUp(context.Background(), "eve@example.com", "pw", "https://app.example.com/")
		require.NoError(t, err)
		assert.Equal(t, "user-3", res.User.ID)
		require.NotNil(t, res.Session)
		assert.Equal(t, "at", res.Session.AccessToken)
	})
}

func TestClient_UserToken(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/auth/v1/user":
			_, _ = w.Write([]byte(`{"id":"user-1","email":"ada@example.com"}`))
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	u, err := c.GetUser(context.Background(), "user-token")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	require.NoError(t, c.SignOut(context.Background(), "user-token"))
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		message string
	}{
		{"invalid grant", http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, identity.ErrUpstream, "Invalid login credentials"},
		{"msg field", http.StatusUnprocessableEntity, `{"code":422,"msg":"User already registered"}`, identity.ErrUpstream, "User already registered"},
		{"rate limited", http.StatusTooManyRequests, `{"message":"Email rate limit exceeded"}`, identity.ErrUpstream, "Email rate limit exceeded"},
		{"no body", http.StatusUnauthorized, ``, identity.ErrUpstream, "Unauthorized"},
		{"server error", http.StatusBadGateway, `oops`, identity.ErrUnavailable, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.ResendVerification(context.Background(), "ada@example.com", "")
			require.ErrorIs(t, err, tt.wantErr)
			if tt.message != "" {
				var upErr *identity.UpstreamError
				require.ErrorAs(t, err, &upErr)
				assert.Equal(t, tt.message, upErr.Message)
				assert.Equal(t, tt.status, upErr.Status)
			}
		})
	}
}
