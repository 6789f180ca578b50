package handler

import (
	"encoding/json"
	"net/http"
)

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON renders v as the response body with status 200.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, body: v}
}

// JSONWithStatus renders v with the given status.
func JSONWithStatus(status int, v any) Response {
	return jsonResponse{status: status, body: v}
}

// RawJSON writes b verbatim as an application/json body.
func RawJSON(b []byte) Response {
	return rawResponse(b)
}

type rawResponse []byte

func (b rawResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(b)
	return err
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSONError renders e as an ErrorBody with e.Status.
func JSONError(e HTTPError) Response {
	return jsonResponse{status: e.Status, body: ErrorBody{Error: e.Tag, Message: e.Message}}
}

// Fail returns a Response that reports err through the ErrorHandler, letting
// a handler hand domain errors to the same classification as binder errors.
func Fail(err error) Response {
	return failure{err: err}
}

type failure struct{ err error }

func (f failure) Render(http.ResponseWriter, *http.Request) error { return f.err }

type emptyResponse int

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(int(e))
	return nil
}

// Empty writes status with no body.
func Empty(status int) Response {
	return emptyResponse(status)
}
