// Package transport implements the identity provider client over the
// provider's public HTTP API.
//
// Redirects are never followed. A 303 or other 3xx answer surfaces as a
// flow.ResponseError of kind redirect so the caller can decide whether it
// means success (one-time codes) or navigation. Error bodies are classified
// into validation, expired, redirect and malformed kinds without decoding
// them into a fixed schema.
//
// Idempotent reads (GetFlow, CreateBrowserFlow, CreateLogoutFlow, Whoami)
// retry transient failures with exponential backoff. Submissions and
// logouts never retry.
package transport
