// Package binder fills request structs from JSON bodies, query strings, path
// parameters, headers and raw bodies. Each binder only touches fields carrying
// its own struct tag, so several binders can be chained on one request type:
//
//	type updateTitleRequest struct {
//		ID    string `path:"id"`
//		Title string `json:"title"`
//	}
//
// Binders return ErrNotApplicable when the request has nothing for them
// (for example an empty JSON body), which the handler layer skips.
package binder
