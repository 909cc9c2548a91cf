package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/metrics/export/internaldefs"
)

// Source is what the exporter reads on every scrape. [goFlow.Engine]
// implements it.
type Source interface {
	MetricsSnapshot() goFlow.MetricsSnapshot
	AuditDropped() uint64
}

const auditDroppedName = "goflow_audit_dropped_total"

// Exporter renders coordinator metrics in the Prometheus text exposition
// format.
//
//	Docs: docs/metrics.md
type Exporter struct {
	source Source
}

// New returns an exporter reading from source.
func New(source Source) *Exporter {
	return &Exporter{source: source}
}

// Handler serves the current metrics.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. It is empty while metrics are
// disabled and nothing was dropped.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range internaldefs.CounterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		writeHistogram(&b, def.Name, def.Help, internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw)))
	}

	writeCounter(&b, auditDroppedName, "Audit events dropped because the dispatcher buffer was full.", dropped)

	return b.String()
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP " + name + " " + escapeHelp(help) + "\n")
	b.WriteString("# TYPE " + name + " " + kind + "\n")
}

// writeSample emits one line; le is omitted when empty.
func writeSample(b *strings.Builder, name, le string, value uint64) {
	b.WriteString(name)
	if le != "" {
		b.WriteString(`_bucket{le="` + le + `"}`)
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	writeHeader(b, name, help, "counter")
	writeSample(b, name, "", value)
}

func writeHistogram(b *strings.Builder, name, help string, cumulative [internaldefs.BucketCount]uint64) {
	writeHeader(b, name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		writeSample(b, name, le, cumulative[i])
	}
	writeSample(b, name+"_count", "", cumulative[len(cumulative)-1])
	// Snapshots keep bucket counts only.
	writeSample(b, name+"_sum", "", 0)
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	return strings.ReplaceAll(help, "\n", "\\n")
}
