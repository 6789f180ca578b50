package binder

import (
	"net/http"
	"reflect"
)

var bytesType = reflect.TypeFor[[]byte]()

// Raw copies the unparsed request body into the []byte field tagged
// `body:"raw"`. Signature checks need the exact bytes that were sent.
func Raw(limit int64) func(r *http.Request, v any) error {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	return func(r *http.Request, v any) error {
		rv, err := structValue(v)
		if err != nil {
			return err
		}

		body, err := readLimited(r, limit)
		if err != nil {
			return err
		}

		rt := rv.Type()
		for i := range rt.NumField() {
			f := rt.Field(i)
			if f.Tag.Get("body") != "raw" || f.Type != bytesType || !rv.Field(i).CanSet() {
				continue
			}
			rv.Field(i).SetBytes(body)
		}
		return nil
	}
}
