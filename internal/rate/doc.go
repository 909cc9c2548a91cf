// Package rate throttles flow submissions per client with Redis
// fixed-window counters.
//
// # Window semantics
//
// INCR plus EXPIRE on the first hit of a window. Keys are
// "<prefix>:<scope>:<client>", where scope is a flow type or "logout".
//
// A Redis failure is reported as [ErrRedisUnavailable]; callers decide
// whether to fail open.
package rate
