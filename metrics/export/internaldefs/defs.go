package internaldefs

import (
	goFlow "github.com/MrEthical07/goFlow"
)

// BucketCount is the number of latency buckets every histogram carries.
const BucketCount = 8

// CounterDef names one coordinator counter for exporters.
type CounterDef struct {
	ID   goFlow.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram for exporters.
type HistogramDef struct {
	ID   goFlow.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in rendering order.
var CounterDefs = []CounterDef{
	{ID: goFlow.MetricFlowObserved, Name: "goflow_flow_observed_total", Help: "Flow documents that replaced the rendered flow."},
	{ID: goFlow.MetricSubmitSuccess, Name: "goflow_submit_success_total", Help: "Submissions accepted by the identity provider."},
	{ID: goFlow.MetricSubmitFailure, Name: "goflow_submit_failure_total", Help: "Submissions rejected by the identity provider."},
	{ID: goFlow.MetricValidationError, Name: "goflow_validation_error_total", Help: "Rejections that returned a replacement flow."},
	{ID: goFlow.MetricFlowExpired, Name: "goflow_flow_expired_total", Help: "Expired or missing flows."},
	{ID: goFlow.MetricRedirectHandled, Name: "goflow_redirect_handled_total", Help: "Provider redirects handed to the navigator."},
	{ID: goFlow.MetricMalformedResponse, Name: "goflow_malformed_response_total", Help: "Provider bodies that could not be decoded."},
	{ID: goFlow.MetricUnclassifiedError, Name: "goflow_unclassified_error_total", Help: "Failures shown with the default error."},
	{ID: goFlow.MetricContinuationResolved, Name: "goflow_continuation_resolved_total", Help: "continue_with directives that drove navigation."},
	{ID: goFlow.MetricDefaultNavigation, Name: "goflow_default_navigation_total", Help: "Submissions that navigated to the default route."},
	{ID: goFlow.MetricFlowRestarted, Name: "goflow_flow_restarted_total", Help: "Flows restarted through the flow query parameter."},
	{ID: goFlow.MetricCodeSuccess, Name: "goflow_code_success_total", Help: "Accepted one-time codes."},
	{ID: goFlow.MetricCodeFailure, Name: "goflow_code_failure_total", Help: "Rejected one-time codes."},
	{ID: goFlow.MetricCodeRefetchFailure, Name: "goflow_code_refetch_failure_total", Help: "Failed re-reads of a code flow."},
	{ID: goFlow.MetricStaleResultDiscarded, Name: "goflow_stale_result_discarded_total", Help: "Results dropped because a newer submission started."},
	{ID: goFlow.MetricLogout, Name: "goflow_logout_total", Help: "Completed logouts."},
	{ID: goFlow.MetricLogoutFailure, Name: "goflow_logout_failure_total", Help: "Logouts rejected by the identity provider."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goFlow.MetricSubmitLatency, Name: "goflow_submit_latency_seconds", Help: "Identity provider round trip of submissions."},
}

// HistogramBounds are the upper bounds of the latency buckets in seconds.
var HistogramBounds = [BucketCount]string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds in a form usable inside metric names.
var HistogramBoundSuffix = [BucketCount]string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros
// and dropping extra buckets.
func NormalizeBuckets(raw []uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [BucketCount]uint64) [BucketCount]uint64 {
	var out [BucketCount]uint64
	var running uint64
	for i, v := range raw {
		running += v
		out[i] = running
	}
	return out
}
