package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/tracing"
)

// Metrics exports the progress of a run in the Prometheus format. It is a
// hook to be attached to the engine.
type Metrics struct {
	registry *prometheus.Registry

	records      *prometheus.CounterVec
	events       *prometheus.CounterVec
	virtualTime  prometheus.Gauge
	senderStart  prometheus.Gauge
	receiverBase prometheus.Gauge
}

// NewMetrics creates the metrics in their own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arqsim",
				Subsystem: "trace",
				Name:      "records_total",
				Help:      "Trace records produced.",
			},
			[]string{"entity", "action"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arqsim",
				Subsystem: "engine",
				Name:      "events_total",
				Help:      "Events processed.",
			},
			[]string{"kind"},
		),
		virtualTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arqsim",
			Subsystem: "engine",
			Name:      "virtual_time_seconds",
			Help:      "Virtual time of the last event processed.",
		}),
		senderStart: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arqsim",
			Subsystem: "window",
			Name:      "sender_start",
			Help:      "Index of the first frame not acknowledged.",
		}),
		receiverBase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arqsim",
			Subsystem: "window",
			Name:      "receiver_start",
			Help:      "Index of the first frame not accepted.",
		}),
	}

	m.registry.MustRegister(
		m.records,
		m.events,
		m.virtualTime,
		m.senderStart,
		m.receiverBase,
	)

	return m
}

// Registry returns the registry that holds the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Func updates the metrics.
func (m *Metrics) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case tracing.HookPosRecord:
		rec, ok := ctx.Item.(tracing.Record)
		if !ok {
			return
		}

		m.records.WithLabelValues(string(rec.Entity), rec.Action).Inc()
	case sim.HookPosAfterEvent:
		evt, ok := ctx.Item.(arq.Event)
		if !ok {
			return
		}

		m.events.WithLabelValues(evt.Kind().String()).Inc()
		m.virtualTime.Set(float64(evt.Time()))

		if e, ok := ctx.Domain.(windowed); ok {
			m.senderStart.Set(float64(e.Window().SenderStart()))
			m.receiverBase.Set(float64(e.Window().ReceiverStart()))
		}
	}
}
