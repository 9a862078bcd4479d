package introspection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache behaviour, provider lookups and failures. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	cacheTotal     *prometheus.CounterVec
	providersTotal *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// Labels: result (hit, miss)
		cacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaninfo",
			Subsystem: "introspection",
			Name:      "cache_total",
			Help:      "Aggregate cache lookups by result",
		}, []string{"result"}),
		// Labels: result (found, absent)
		providersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaninfo",
			Subsystem: "introspection",
			Name:      "provider_lookups_total",
			Help:      "Explicit provider lookups by result",
		}, []string{"result"}),
		// Labels: kind (structural, configuration, adapter)
		failuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "beaninfo",
			Subsystem: "introspection",
			Name:      "failures_total",
			Help:      "Failed introspection calls by error kind",
		}, []string{"kind"}),
	}
}

func (m *Metrics) recordCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheTotal.WithLabelValues("hit").Inc()
		return
	}
	m.cacheTotal.WithLabelValues("miss").Inc()
}

func (m *Metrics) recordProvider(found bool) {
	if m == nil {
		return
	}
	if found {
		m.providersTotal.WithLabelValues("found").Inc()
		return
	}
	m.providersTotal.WithLabelValues("absent").Inc()
}

func (m *Metrics) recordFailure(kind string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(kind).Inc()
}

// Collectors returns the underlying collectors, e.g. for a custom registry
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{m.cacheTotal, m.providersTotal, m.failuresTotal}
}
