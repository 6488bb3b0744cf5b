package sink

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

var _ autodiff.Publisher = (*PrometheusPublisher)(nil)

// PrometheusPublisher exports the latest summary of every published array as
// gauges labelled by name.
//
// Metrics (namespace "autograd" unless overridden):
//
//	<ns>_array_norm{name}     L2 norm
//	<ns>_array_mean{name}     mean
//	<ns>_array_min{name}      minimum
//	<ns>_array_max{name}      maximum
//	<ns>_array_step{name}     step of the last publish
//	<ns>_publish_total{name}  publishes seen
type PrometheusPublisher struct {
	reg *prometheus.Registry

	norm      *prometheus.GaugeVec
	mean      *prometheus.GaugeVec
	min       *prometheus.GaugeVec
	max       *prometheus.GaugeVec
	step      *prometheus.GaugeVec
	published *prometheus.CounterVec
}

// NewPrometheusPublisher registers its collectors on reg. An empty namespace
// means "autograd". Registering two publishers with the same namespace on one
// registry panics, as promauto does.
func NewPrometheusPublisher(reg *prometheus.Registry, namespace string) *PrometheusPublisher {
	if namespace == "" {
		namespace = "autograd"
	}
	factory := promauto.With(reg)
	gauge := func(name, help string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "array",
			Name:      name,
			Help:      help,
		}, []string{"name"})
	}

	return &PrometheusPublisher{
		reg:  reg,
		norm: gauge("norm", "L2 norm of the last published array"),
		mean: gauge("mean", "Mean of the last published array"),
		min:  gauge("min", "Minimum of the last published array"),
		max:  gauge("max", "Maximum of the last published array"),
		step: gauge("step", "Step of the last published array"),
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Total arrays published",
		}, []string{"name"}),
	}
}

// Publish updates the gauges for name.
func (p *PrometheusPublisher) Publish(_ context.Context, name string, step int64, data *tensor.RawTensor) error {
	s := Summarize(data.Data())
	p.norm.WithLabelValues(name).Set(s.Norm)
	p.mean.WithLabelValues(name).Set(s.Mean)
	p.min.WithLabelValues(name).Set(s.Min)
	p.max.WithLabelValues(name).Set(s.Max)
	p.step.WithLabelValues(name).Set(float64(step))
	p.published.WithLabelValues(name).Inc()
	return nil
}

// WriteTextfile dumps the registry in the Prometheus text format, suitable
// for the node exporter's textfile collector.
func (p *PrometheusPublisher) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
