// Package flows contains the pure-function orchestrators behind every
// Coordinator operation: message classification, continuation resolution,
// redirect/restart dispatch, generic submission-error handling and the
// one-time-code retry controller.
//
// Each RunXxx function accepts a typed dependency struct of function fields
// and returns its result without side effects beyond those dependencies.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goFlow (to avoid import cycles).
//   - Perform I/O directly; provider calls and navigation are mediated
//     through dependency functions.
package flows
