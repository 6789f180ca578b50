package binder

import "net/http"

// Query binds fields tagged `query:"name"` from the URL query string.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return bindTagged(v, "query", ErrInvalidQuery, func(name string) []string {
			return q[name]
		})
	}
}

// Header binds fields tagged `header:"Name"` from request headers.
func Header() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindTagged(v, "header", ErrInvalidHeader, r.Header.Values)
	}
}

// Path binds fields tagged `path:"name"` using a router's parameter lookup,
// for example chi.URLParam.
func Path(param func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindTagged(v, "path", ErrInvalidPath, func(name string) []string {
			if s := param(r, name); s != "" {
				return []string{s}
			}
			return nil
		})
	}
}
