// Package crm tracks forwarding-plane resource usage (critical resource
// monitoring). Buckets are exported as prometheus gauges so external
// telemetry can read them.
package crm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resource identifies one counted resource bucket.
type Resource string

// Counted resources.
const (
	IPv4Route    Resource = "ipv4_route"
	IPv6Route    Resource = "ipv6_route"
	IPv4Neighbor Resource = "ipv4_neighbor"
	IPv6Neighbor Resource = "ipv6_neighbor"
)

// Counters holds the per-resource used counts. All writes happen from the
// reconciler's goroutine; readers go through the prometheus registry.
type Counters struct {
	used *prometheus.GaugeVec
}

// NewCounters creates the counter set and registers it with reg.
func NewCounters(reg prometheus.Registerer) *Counters {
	c := &Counters{
		used: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "swss",
			Subsystem: "crm",
			Name:      "resources_used",
			Help:      "Forwarding-plane resources currently in use, per bucket.",
		}, []string{"resource"}),
	}
	if reg != nil {
		reg.MustRegister(c.used)
	}
	return c
}

// Inc increments the used count for r.
func (c *Counters) Inc(r Resource) {
	c.used.WithLabelValues(string(r)).Inc()
}

// Dec decrements the used count for r.
func (c *Counters) Dec(r Resource) {
	c.used.WithLabelValues(string(r)).Dec()
}

// Gauge exposes the underlying vector for test assertions.
func (c *Counters) Gauge(r Resource) prometheus.Gauge {
	return c.used.WithLabelValues(string(r))
}
