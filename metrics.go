package goFlow

import (
	internalmetrics "github.com/MrEthical07/goFlow/internal/metrics"
)

// MetricID identifies one coordinator counter.
//
//	Docs: docs/metrics.md
type MetricID = internalmetrics.MetricID

const (
	// MetricFlowObserved counts flow documents that replaced the rendered one.
	MetricFlowObserved = internalmetrics.MetricFlowObserved
	// MetricSubmitSuccess counts submissions the provider accepted.
	MetricSubmitSuccess = internalmetrics.MetricSubmitSuccess
	// MetricSubmitFailure counts submissions the provider rejected.
	MetricSubmitFailure = internalmetrics.MetricSubmitFailure
	// MetricValidationError counts 400 answers that carried a replacement flow.
	MetricValidationError = internalmetrics.MetricValidationError
	// MetricFlowExpired counts expired or missing flows that were restarted.
	MetricFlowExpired = internalmetrics.MetricFlowExpired
	// MetricRedirectHandled counts provider redirects dispatched to the navigator.
	MetricRedirectHandled = internalmetrics.MetricRedirectHandled
	// MetricMalformedResponse counts undecodable provider bodies.
	MetricMalformedResponse = internalmetrics.MetricMalformedResponse
	// MetricUnclassifiedError counts failures that fell through to the default error.
	MetricUnclassifiedError = internalmetrics.MetricUnclassifiedError
	// MetricContinuationResolved counts continue_with directives that drove navigation.
	MetricContinuationResolved = internalmetrics.MetricContinuationResolved
	// MetricDefaultNavigation counts submissions that fell back to the default route.
	MetricDefaultNavigation = internalmetrics.MetricDefaultNavigation
	// MetricFlowRestarted counts restarts issued through the flow query parameter.
	MetricFlowRestarted = internalmetrics.MetricFlowRestarted
	// MetricCodeSuccess counts accepted one-time codes.
	MetricCodeSuccess = internalmetrics.MetricCodeSuccess
	// MetricCodeFailure counts rejected one-time codes.
	MetricCodeFailure = internalmetrics.MetricCodeFailure
	// MetricCodeRefetchFailure counts re-reads of a code flow that failed.
	MetricCodeRefetchFailure = internalmetrics.MetricCodeRefetchFailure
	// MetricStaleResultDiscarded counts results dropped because a newer submission started.
	MetricStaleResultDiscarded = internalmetrics.MetricStaleResultDiscarded
	// MetricLogout counts completed logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricLogoutFailure counts logouts the provider rejected.
	MetricLogoutFailure = internalmetrics.MetricLogoutFailure
	// MetricSubmitLatency is the provider round-trip histogram of submissions.
	MetricSubmitLatency = internalmetrics.MetricSubmitLatency

	metricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and the optional submit latency histogram.
//
//	Docs: docs/metrics.md
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
//
//	Docs: docs/metrics.md
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
//
//	Docs: docs/metrics.md
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
