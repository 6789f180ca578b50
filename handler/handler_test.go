package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/pkg/binder"
)

type echoRequest struct {
	Name  string `json:"name"`
	Limit int    `query:"limit"`
}

var errDomain = errors.New("domain failure")

func newErrorHandler() handler.ErrorHandler[handler.Context] {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewErrorHandler[handler.Context](log, func(err error) handler.HTTPError {
		switch {
		case errors.Is(err, binder.ErrInvalidJSON):
			return handler.NewHTTPError(http.StatusBadRequest, "invalid_json", "Invalid JSON")
		case errors.Is(err, errDomain):
			return handler.NewHTTPError(http.StatusConflict, "domain", "Domain failure")
		}
		return handler.ErrInternal
	})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorBody {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWrap(t *testing.T) {
	t.Parallel()

	echo := handler.HandlerFunc[handler.Context, echoRequest](func(ctx handler.Context, req echoRequest) handler.Response {
		switch req.Name {
		case "fail":
			return handler.Fail(errDomain)
		case "nil":
			return nil
		case "created":
			return handler.JSONWithStatus(http.StatusCreated, map[string]any{"name": req.Name})
		}
		return handler.JSON(map[string]any{"name": req.Name, "limit": req.Limit})
	})

	h := handler.Wrap(echo,
		handler.WithBinders[handler.Context, echoRequest](binder.JSON(), binder.Query()),
		handler.WithErrorHandler[handler.Context, echoRequest](newErrorHandler()),
	)

	t.Run("binds body and query", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/?limit=3", strings.NewReader(`{"name":"ada"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"name":"ada","limit":3}`, rec.Body.String())
	})

	t.Run("empty body skips json binder", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/?limit=1", nil))
		assert.JSONEq(t, `{"name":"","limit":1}`, rec.Body.String())
	})

	t.Run("binder error is classified", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, handler.ErrorBody{Error: "invalid_json", Message: "Invalid JSON"}, decodeError(t, rec))
	})

	t.Run("domain error via Fail", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"fail"}`)))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "domain", decodeError(t, rec).Error)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"nil"}`)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal_error", decodeError(t, rec).Error)
	})

	t.Run("custom status", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"created"}`)))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestHTTPErrorPassesThrough(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, struct{}](func(handler.Context, struct{}) handler.Response {
			return handler.Fail(handler.ErrUnauthorized)
		}),
		handler.WithErrorHandler[handler.Context, struct{}](newErrorHandler()),
	)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, handler.ErrorBody{Error: "unauthorized", Message: "Authentication required"}, decodeError(t, rec))
}

func TestDecoratorsOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	mark := func(name string) handler.Decorator[handler.Context, struct{}] {
		return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				calls = append(calls, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Wrap(
		handler.HandlerFunc[handler.Context, struct{}](func(handler.Context, struct{}) handler.Response {
			calls = append(calls, "handler")
			return handler.Empty(http.StatusNoContent)
		}),
		handler.WithDecorators(mark("outer"), mark("inner")),
	)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestRawJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.RawJSON([]byte(`{"id":"cs_1"}`)).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, `{"id":"cs_1"}`, rec.Body.String())
	assert.Equal(t, http.StatusOK, rec.Code)
}
