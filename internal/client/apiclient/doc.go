// Package apiclient is the single HTTP gateway to the PayChain backend.
//
// # Overview
//
// Client wraps net/http with the behaviour every call shares:
//  1. The stored bearer credential is attached when present. A missing or
//     unreadable credential never fails a request locally.
//  2. Each request carries a fresh X-Request-ID.
//  3. Error responses are logged, forwarded best-effort to the backend's
//     log-error endpoint through a Reporter, and returned as *HTTPError.
//  4. A 401 clears the stored credential and invokes the unauthorized
//     handler once. Nothing is retried.
//
// # Error Handling
//
// Every failure matches one of the sentinel errors with errors.Is:
// ErrUnavailable (no response), ErrUnauthorized, ErrForbidden, ErrNotFound,
// ErrServer, ErrRequest (via *HTTPError), or ErrBadPayload (undecodable 2xx).
//
// # Concurrency & Contexts
//
// Client is safe for concurrent use. Every operation takes a context; there
// is no built-in timeout or retry, so callers bound requests themselves.
package apiclient
