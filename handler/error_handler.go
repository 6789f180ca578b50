package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/promptkit/pkg/logger"
)

// Classifier resolves an arbitrary error to an HTTPError.
type Classifier func(err error) HTTPError

// NewErrorHandler renders errors as JSONError. Errors that are already an
// HTTPError are used as is; everything else goes through classify, or
// becomes ErrInternal when classify is nil. 5xx responses are logged at
// error level, 4xx at debug.
func NewErrorHandler[C Context](log *slog.Logger, classify Classifier) ErrorHandler[C] {
	return func(ctx C, err error) {
		httpErr := ErrInternal
		if !errors.As(err, &httpErr) && classify != nil {
			httpErr = classify(err)
		}

		r := ctx.Request()
		level := slog.LevelDebug
		if httpErr.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Component("http"),
			logger.Error(err),
			slog.Int("status", httpErr.Status),
			slog.String("tag", httpErr.Tag),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		if renderErr := JSONError(httpErr).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.ErrorContext(r.Context(), "failed to render error response", logger.Error(renderErr))
		}
	}
}
