package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	reg              *prom.Registry
	modelResolutions *prom.CounterVec
	pagesRendered    *prom.CounterVec
	renderDuration   prom.Histogram
	buildDuration    prom.Histogram
	duplicates       prom.Counter
	rebuilds         *prom.CounterVec
	stackSize        prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.modelResolutions = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "model_resolutions_total",
			Help:      "Settled model resolutions by specifier kind and result",
		}, []string{"kind", "result"})
		pr.pagesRendered = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Page render attempts by result",
		}, []string{"result"})
		pr.renderDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_render_duration_seconds",
			Help:      "Duration of a single page render including post-processing and write",
			Buckets:   prom.DefBuckets,
		})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total generate duration",
			Buckets:   prom.DefBuckets,
		})
		pr.duplicates = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_outputs_total",
			Help:      "Page registrations dropped because the output path was taken",
		})
		pr.rebuilds = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Watch triggered rebuilds by scope",
		}, []string{"full"})
		pr.stackSize = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stack_size",
			Help:      "Number of descriptors in the build stack",
		})
		reg.MustRegister(pr.modelResolutions, pr.pagesRendered, pr.renderDuration, pr.buildDuration, pr.duplicates, pr.rebuilds, pr.stackSize)
	})
	return pr
}

// Registry returns the registry the metrics were registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

// WriteTextfile writes every gathered metric in the text exposition format,
// suitable for the node exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

func (p *PrometheusRecorder) IncModelResolution(kind string, result ResultLabel) {
	if p == nil || p.modelResolutions == nil {
		return
	}
	p.modelResolutions.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) IncPageRendered(result ResultLabel) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDuplicateOutput() {
	if p == nil || p.duplicates == nil {
		return
	}
	p.duplicates.Inc()
}

func (p *PrometheusRecorder) IncRebuild(full bool) {
	if p == nil || p.rebuilds == nil {
		return
	}
	p.rebuilds.WithLabelValues(strconv.FormatBool(full)).Inc()
}

func (p *PrometheusRecorder) SetStackSize(n int) {
	if p == nil || p.stackSize == nil {
		return
	}
	p.stackSize.Set(float64(n))
}
