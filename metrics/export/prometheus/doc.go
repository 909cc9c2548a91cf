// Package prometheus renders goFlow metrics in the Prometheus text
// exposition format without depending on a Prometheus client library.
//
// Counters are named goflow_*_total; the submit latency histogram is
// goflow_submit_latency_seconds. Callers mount [Exporter.Handler] wherever
// they serve metrics; nothing is registered globally.
package prometheus
