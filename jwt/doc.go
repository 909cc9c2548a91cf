// Package jwt verifies tokenized provider sessions. The identity provider
// can convert a session into a signed JWT; the verifier checks signature,
// issuer, audience and expiry and exposes the session claims.
package jwt
