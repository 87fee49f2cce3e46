// Package metrics exposes Prometheus metrics for the creation
// pipeline.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ordersvc/pkg/order"
)

// Observer implements order.Observer by counting pipeline checkpoints.
type Observer struct {
	steps    *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewObserver registers the pipeline metrics on the default registry.
func NewObserver() *Observer {
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ordersvc",
		Name:      "creation_steps_total",
		Help:      "Completed order-creation pipeline checkpoints.",
	}, []string{"step"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ordersvc",
		Name:      "creation_failures_total",
		Help:      "Order-creation pipeline failures by failing step.",
	}, []string{"step"})
	prometheus.MustRegister(steps, failures)
	return &Observer{steps: steps, failures: failures}
}

func (o *Observer) Checked(context.Context, string) {
	o.steps.WithLabelValues(string(order.StepChecked)).Inc()
}

func (o *Observer) Priced(context.Context, string, float64) {
	o.steps.WithLabelValues(string(order.StepPriced)).Inc()
}

func (o *Observer) Persisted(context.Context, string) {
	o.steps.WithLabelValues(string(order.StepPersisted)).Inc()
}

func (o *Observer) Published(context.Context, string) {
	o.steps.WithLabelValues(string(order.StepPublished)).Inc()
}

func (o *Observer) Failed(_ context.Context, _ string, step order.Step, _ error) {
	o.failures.WithLabelValues(string(step)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
