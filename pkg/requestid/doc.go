// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reuses a well-formed X-Request-ID header sent by the caller or
// generates a UUID, stores the id in the request context and echoes it in the
// response. LoggerExtractor plugs the id into pkg/logger.
package requestid
