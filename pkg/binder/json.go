package binder

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// DefaultMaxBodySize bounds JSON and raw bodies.
const DefaultMaxBodySize = 1 << 20

// JSON decodes an application/json body into the target. A request without
// a Content-Type is decoded as JSON. An empty body leaves the target untouched
// and reports ErrNotApplicable so that field validation reports what is
// missing.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if ct := r.Header.Get("Content-Type"); ct != "" {
			mediaType, _, err := mime.ParseMediaType(ct)
			if err != nil || !isJSONMediaType(mediaType) {
				return ErrUnsupportedMediaType
			}
		}

		body, err := readLimited(r, DefaultMaxBodySize)
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(body)) == 0 {
			return ErrNotApplicable
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		if err := dec.Decode(v); err != nil {
			return errors.Join(ErrInvalidJSON, err)
		}
		if dec.More() {
			return errors.Join(ErrInvalidJSON, errors.New("unexpected data after JSON value"))
		}
		return nil
	}
}

func isJSONMediaType(mt string) bool {
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func readLimited(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, errors.Join(ErrInvalidJSON, err)
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}
