// Package httpserver runs an http.Handler with graceful shutdown and exposes
// liveness and readiness checks.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// Run returns once ctx is cancelled and in-flight requests have drained, or
// ShutdownTimeout has passed.
package httpserver
