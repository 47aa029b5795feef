package pg

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Name of the histogram recorded for every statement, in seconds.
const MetricQueryDuration = `sqlq_query_duration_seconds`

const (
	labelType   = `type`
	labelStatus = `status`
	statusOk    = `ok`
	statusError = `error`
)

/*
Records metric observations. Labels are given as alternating names and values.
For every statement, `DB` records `MetricQueryDuration` with the labels "type"
(such as "SELECT") and "status" ("ok" or "error"). Implemented by
`PrometheusMetrics`; applications with their own metrics layer may implement
it directly.
*/
type Metrics interface {
	RecordHistogram(ctx context.Context, name string, value float64, labels ...string)
}

// Implementation of `Metrics` backed by a Prometheus histogram vector.
type PrometheusMetrics struct {
	duration *prometheus.HistogramVec
}

var (
	_ Metrics              = (*PrometheusMetrics)(nil)
	_ prometheus.Collector = (*PrometheusMetrics)(nil)
)

/*
Creates the histogram and registers it in the given registerer. Nil skips
registration, in which case the result may be registered later, since it also
implements `prometheus.Collector`.
*/
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	out := &PrometheusMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricQueryDuration,
				Help:    `Duration of SQL statements executed via sqlq, in seconds.`,
				Buckets: prometheus.DefBuckets,
			},
			[]string{labelType, labelStatus},
		),
	}

	if reg != nil {
		if err := reg.Register(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

/*
Implement `Metrics`. Observations of other metrics, or with labels that don't
match "type" and "status", are ignored.
*/
func (self *PrometheusMetrics) RecordHistogram(_ context.Context, name string, value float64, labels ...string) {
	if name != MetricQueryDuration || len(labels)%2 != 0 {
		return
	}

	set := make(prometheus.Labels, len(labels)/2)
	for ind := 0; ind < len(labels); ind += 2 {
		set[labels[ind]] = labels[ind+1]
	}

	obs, err := self.duration.GetMetricWith(set)
	if err != nil {
		return
	}
	obs.Observe(value)
}

// Implement `prometheus.Collector`.
func (self *PrometheusMetrics) Describe(out chan<- *prometheus.Desc) {
	self.duration.Describe(out)
}

// Implement `prometheus.Collector`.
func (self *PrometheusMetrics) Collect(out chan<- prometheus.Metric) {
	self.duration.Collect(out)
}
