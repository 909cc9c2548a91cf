package middleware

import (
	"net/http"

	"github.com/MrEthical07/goFlow/jwt"
)

// RequireViewer rejects requests without a valid session token.
//
//	Docs: docs/middleware.md
func RequireViewer(verifier *jwt.Verifier, cookieName string) func(http.Handler) http.Handler {
	return Guard(verifier, cookieName, true)
}

// OptionalViewer attaches the viewer when a valid token is present and lets
// anonymous requests through.
func OptionalViewer(verifier *jwt.Verifier, cookieName string) func(http.Handler) http.Handler {
	return Guard(verifier, cookieName, false)
}
