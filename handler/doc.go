// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value populated by binders,
// and returns a Response. Errors from binding or rendering go through an
// ErrorHandler, which in this service always renders the JSON error envelope
// {"error": "<tag>", "message": "<text>"}.
//
//	h := handler.HandlerFunc[handler.Context, optimizeRequest](
//		func(ctx handler.Context, req optimizeRequest) handler.Response {
//			return handler.JSON(result)
//		},
//	)
//	r.Post("/optimize", handler.Wrap(h, handler.WithBinders[handler.Context, optimizeRequest](binder.JSON())))
package handler
