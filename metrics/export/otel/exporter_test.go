package otel

import (
	"context"
	"sync"
	"testing"

	goFlow "github.com/MrEthical07/goFlow"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot goFlow.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goFlow.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goFlow.MetricsSnapshot{
		Counters:   make(map[goFlow.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms: make(map[goFlow.MetricID][]uint64, len(f.snapshot.Histograms)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			}
		}
	}
	return out
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newReader()

	src := &fakeSource{
		snapshot: goFlow.MetricsSnapshot{
			Counters: map[goFlow.MetricID]uint64{
				goFlow.MetricSubmitSuccess: 3,
				goFlow.MetricCodeFailure:   2,
			},
			Histograms: map[goFlow.MetricID][]uint64{
				goFlow.MetricSubmitLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
		},
		dropped: 1,
	}

	exp, err := New(provider.Meter("goflow-test"), src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	got := collect(t, reader)
	checks := map[string]int64{
		"goflow_submit_success_total":                 3,
		"goflow_code_failure_total":                   2,
		"goflow_audit_dropped_total":                  1,
		"goflow_submit_latency_seconds_bucket_le_inf": 8,
		"goflow_submit_latency_seconds_count":         8,
	}
	for name, want := range checks {
		if got[name] != want {
			t.Fatalf("%s = %d, want %d", name, got[name], want)
		}
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newReader()

	if _, err := New(provider.Meter("goflow-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := New(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newReader()

	src := &fakeSource{
		snapshot: goFlow.MetricsSnapshot{
			Counters: map[goFlow.MetricID]uint64{
				goFlow.MetricSubmitSuccess: 1,
			},
			Histograms: map[goFlow.MetricID][]uint64{},
		},
	}

	exp, err := New(provider.Meter("goflow-test"), src)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = exp.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[goFlow.MetricSubmitSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
