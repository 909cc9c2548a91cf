// Package otel exposes goFlow metrics through an OpenTelemetry meter.
//
// [New] registers an Int64ObservableCounter for each goFlow counter and an
// Int64ObservableGauge per latency bucket. One callback reads the engine
// snapshot on each collection cycle. Callers own the MeterProvider.
package otel
