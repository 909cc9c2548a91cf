// Package middleware exposes net/http adapters that attach request metadata
// and the signed-in viewer to the request context.
//
// # Middleware
//
//   - [RequestContext] sets client IP, user agent and request id for audit.
//   - [RequireViewer] verifies the session token and rejects anonymous calls.
//   - [OptionalViewer] verifies the session token when one is sent.
//
// Tokens are read from the Authorization bearer header, then from the
// session cookie.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into context values. Token checks
// are delegated to [jwt.Verifier]; flow handling stays in goFlow.
package middleware
