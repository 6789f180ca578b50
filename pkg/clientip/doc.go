// Package clientip resolves the originating client address of a request,
// honouring the usual proxy headers, and stores it in the request context.
package clientip
