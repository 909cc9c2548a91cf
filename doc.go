// Package goFlow coordinates self-service identity flows (login,
// registration, recovery, verification, settings) issued by an Ory
// Kratos-compatible identity provider.
//
// An [Engine] is built once through [Builder.Build] and mints one
// [Coordinator] per rendered flow. The coordinator owns the flow document
// and the display state derived from it, submits forms, and turns every
// provider answer into local state or navigation: validation errors are
// localized onto fields, expired flows restart, redirects are dispatched to
// a [Navigator], and one-time-code flows re-read the flow when the provider
// answers with an ambiguous redirect.
//
// # Architecture boundaries
//
// goFlow is the public surface. It exposes [Engine], [Builder], [Config],
// [Coordinator] and value types aliased from package flow. Submission
// resolution lives in internal/flows as pure functions over injected
// dependencies; persistence lives in internal/stores.
//
// # What this package must NOT do
//
//   - Retry a submission. Only idempotent reads are retried, by the transport.
//   - Copy raw provider messages into audit events.
//   - Hold the coordinator lock across a provider call or a callback.
package goFlow
