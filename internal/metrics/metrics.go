package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Soumi0401/SimpleNotification/internal/bridge"
	domain "github.com/Soumi0401/SimpleNotification/internal/domain/alarm"
	"github.com/Soumi0401/SimpleNotification/internal/platform"
)

const namespace = "alarm_bridge"

// Call outcomes reported in the channel call counter.
const (
	OutcomeOK              = "ok"
	OutcomeNotImplemented  = "not_implemented"
	OutcomeInvalidArgument = "invalid_argument"
	OutcomeError           = "error"
)

// Dispatcher is the method channel handler being measured.
type Dispatcher interface {
	Dispatch(ctx context.Context, method string, args map[string]any) (any, error)
}

// PendingSource reports how many alarms are waiting to fire.
type PendingSource interface {
	Len() int
}

// Metrics owns a private registry with the bridge's collectors.
type Metrics struct {
	registry   *prometheus.Registry
	calls      *prometheus.CounterVec
	deliveries *prometheus.CounterVec
}

// New creates the registry and registers the call and delivery counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_calls_total",
			Help:      "Method channel calls grouped by transport, method and outcome.",
		}, []string{"transport", "method", "outcome"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Fired alarms grouped by delivery outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.calls, m.deliveries)

	return m
}

// TrackPending exposes the number of pending alarms as a gauge read at scrape time.
func (m *Metrics) TrackPending(source PendingSource) {
	m.registry.MustRegister(&pendingCollector{source: source})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Dispatcher counts every call made through next on the named transport.
func (m *Metrics) Dispatcher(transport string, next Dispatcher) Dispatcher {
	return &measuredDispatcher{
		next:      next,
		calls:     m.calls,
		transport: transport,
	}
}

// Receiver counts every delivery handed to next.
func (m *Metrics) Receiver(next platform.Receiver) platform.Receiver {
	return platform.ReceiverFunc(func(ctx context.Context, d *platform.Delivery) error {
		err := next.Receive(ctx, d)

		outcome := OutcomeOK
		if err != nil {
			outcome = OutcomeError
		}

		m.deliveries.WithLabelValues(outcome).Inc()

		return err
	})
}

// Outcome classifies a channel call result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, bridge.ErrNotImplemented):
		return OutcomeNotImplemented
	case errors.Is(err, domain.ErrInvalidArgument):
		return OutcomeInvalidArgument
	default:
		return OutcomeError
	}
}

type measuredDispatcher struct {
	next      Dispatcher
	calls     *prometheus.CounterVec
	transport string
}

func (d *measuredDispatcher) Dispatch(ctx context.Context, method string, args map[string]any) (any, error) {
	result, err := d.next.Dispatch(ctx, method, args)

	outcome := Outcome(err)

	// Unknown names are collapsed to keep label cardinality bounded.
	if outcome == OutcomeNotImplemented {
		method = "unknown"
	}

	d.calls.WithLabelValues(d.transport, method, outcome).Inc()

	return result, err
}

var pendingDesc = prometheus.NewDesc(
	prometheus.BuildFQName(namespace, "", "pending_alarms"),
	"Alarms registered and waiting to fire.",
	nil, nil,
)

// pendingCollector reads the pending count on every scrape.
type pendingCollector struct {
	source PendingSource
}

func (c *pendingCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pendingDesc
}

func (c *pendingCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(pendingDesc, prometheus.GaugeValue, float64(c.source.Len()))
}
