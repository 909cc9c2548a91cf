// Package server implements the JSON backend-for-frontend in front of the
// identity provider.
//
// Pages fetch and submit flows through these endpoints; every response
// carries the derived errors of the current flow plus the navigation
// directives the coordinator issued, which the browser replays.
//
// Submissions and logouts pass through an optional per-IP throttle
// (internal/rate) and answer 429 once a client's window is spent.
package server
