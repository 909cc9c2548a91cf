// Package internal holds the private building blocks of goFlow.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - flows: pure-function orchestrators behind every Coordinator operation
//   - metrics: lock-free counters and the submit latency histogram
//   - rate: Redis fixed-window submission throttle for the HTTP API
//   - server: the gin JSON API served by cmd/goflow
//   - stores: Redis generation markers shared between replicas
//
// Nothing here appears in the public goFlow API.
package internal
