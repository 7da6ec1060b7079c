package actor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the runtime's Prometheus instrumentation: agents
// spawned/stopped, mailbox depth, dropped (unknown-type) messages, and
// broker fan-out count. It implements prometheus.Collector so an embedding
// application can register it with its own registry; the runtime itself
// never serves an HTTP endpoint.
type Metrics struct {
	agentsSpawned prometheus.Counter
	agentsStopped prometheus.Counter
	mailboxDepth  prometheus.Gauge
	droppedMsgs   prometheus.Counter
	brokerFanOut  prometheus.Counter
}

// NewMetrics constructs a Metrics collector. namespace is prefixed to every
// metric name (e.g. "myapp" -> "myapp_agents_spawned_total").
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		agentsSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agents_spawned_total",
			Help:      "Total number of agents spawned.",
		}),
		agentsStopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agents_stopped_total",
			Help:      "Total number of agents whose wake has returned.",
		}),
		mailboxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mailbox_depth",
			Help:      "Sum of buffered envelopes across all live mailboxes.",
		}),
		droppedMsgs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_messages_total",
			Help:      "Total number of messages dropped for having no registered reactor.",
		}),
		brokerFanOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broker_fan_out_total",
			Help:      "Total number of broker-to-subscriber deliveries attempted.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.agentsSpawned.Collect(ch)
	m.agentsStopped.Collect(ch)
	m.mailboxDepth.Collect(ch)
	m.droppedMsgs.Collect(ch)
	m.brokerFanOut.Collect(ch)
}

var _ prometheus.Collector = (*Metrics)(nil)
