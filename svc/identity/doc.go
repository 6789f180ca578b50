// Package identity verifies users signed in through a Supabase (GoTrue) auth
// backend and proxies the account endpoints the web client needs.
//
// A Verifier checks HS256 access tokens issued by the backend. Middleware
// puts the verified Identity into the request context; handlers read it with
// FromContext. Client talks to the GoTrue REST API and Service combines both,
// publishing a SessionEvent for every successful sign-up, sign-in and
// sign-out.
package identity
