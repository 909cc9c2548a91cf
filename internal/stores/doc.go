// Package stores provides Redis-backed records shared between replicas.
//
// # Design
//
// The generation store keeps one INCR counter per flow id with a sliding
// TTL. A submission takes the next value before calling the provider and
// compares it with the current value once the provider answered; a newer
// value means another replica started a later submission of the same flow.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT decide what to do with a
// stale result; that belongs to the coordinator.
//
// # What this package must NOT do
//
//   - Import goFlow or any sibling internal package.
//   - Store flow documents or form values.
package stores
