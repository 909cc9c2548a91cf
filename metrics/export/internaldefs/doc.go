// Package internaldefs holds the metric names, help texts and bucket bounds
// shared by the Prometheus and OpenTelemetry exporters, so both expose the
// same goflow_* series.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
