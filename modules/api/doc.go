// Package api mounts the HTTP interface of the prompt optimizer: prompt
// optimization, checkout and billing portal sessions, entitlement lookup, the
// payment webhook, favorites and the auth proxy.
//
// Every route is CORS-open. Errors are rendered as
// {"error": "<tag>", "message": "<text>"} through one classification table.
//
//	r := chi.NewRouter()
//	r.Mount("/", api.Router(api.Options{
//		Config:    cfg,
//		Optimizer: optimizerSvc,
//		Billing:   billingSvc,
//	}))
package api
