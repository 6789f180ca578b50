package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/promptkit/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "remote addr without port", remote: "10.0.0.2", want: "10.0.0.2"},
		{name: "cloudflare wins", headers: map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2"}, remote: "10.0.0.1:1", want: "1.1.1.1"},
		{name: "first valid forwarded", headers: map[string]string{"X-Forwarded-For": "garbage, 3.3.3.3, 4.4.4.4"}, remote: "10.0.0.1:1", want: "3.3.3.3"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "5.5.5.5"}, remote: "10.0.0.1:1", want: "5.5.5.5"},
		{name: "ipv6 normalised", headers: map[string]string{"X-Real-IP": "2001:DB8::1"}, remote: "10.0.0.1:1", want: "2001:db8::1"},
		{name: "invalid header falls through", headers: map[string]string{"CF-Connecting-IP": "not-an-ip"}, remote: "[::1]:80", want: "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got, key string
	h := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientip.FromContext(r.Context())
		key = clientip.Key(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "8.8.8.8")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "8.8.8.8", got)
	assert.Equal(t, "8.8.8.8", key)
}
