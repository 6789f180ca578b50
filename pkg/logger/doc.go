// Package logger builds *slog.Logger instances for the service.
//
// New applies functional options (format, level, output, static attributes)
// and wraps the resulting handler in a LogHandlerDecorator which pulls
// request-scoped values such as the request id or the authenticated user out
// of context.Context on every record.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, cfg.AppName),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "checkout session created", logger.CustomerID(id))
//
// Attribute helpers keep key names consistent across packages.
package logger
