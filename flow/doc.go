// Package flow models the self-service flow documents issued by the identity
// provider (login, registration, recovery, verification, settings) and the
// typed errors a provider transport produces when a flow call fails.
//
// Documents are values. Nothing in this module mutates a received document;
// every submission or error response yields a replacement.
//
// # What this package must NOT do
//
//   - Import goFlow or any transport implementation (no upward imports).
//   - Perform I/O.
package flow
