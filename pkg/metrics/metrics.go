// Package metrics exposes Prometheus collectors observing the sync core's
// components B/C/D/F: header throughput, in-flight blocks, misbehavior
// incidents, and transaction announcements sent.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sync bundles every collector the sync core updates. Callers register it
// once with a prometheus.Registerer and pass it down to the places that
// need to record observations (Manager, per-Peer tasks).
type Sync struct {
	PeersConnected      prometheus.Gauge
	BlocksInFlight      prometheus.Gauge
	HeadersProcessed    prometheus.Counter
	BlocksProcessed     *prometheus.CounterVec
	MisbehaviorEvents   *prometheus.CounterVec
	TxAnnouncementsSent prometheus.Counter
	StallsDetected      prometheus.Counter
}

// NewSync builds a Sync metrics bundle.
func NewSync() *Sync {
	return &Sync{
		PeersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "peers_connected",
			Help:      "Number of currently connected peers.",
		}),
		BlocksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "blocks_in_flight",
			Help:      "Number of block ids currently requested from any peer.",
		}),
		HeadersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "headers_processed_total",
			Help:      "Total number of headers accepted from HeaderList messages.",
		}),
		BlocksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "blocks_processed_total",
			Help:      "Total number of block responses processed, by chainstate result.",
		}, []string{"result"}),
		MisbehaviorEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "misbehavior_events_total",
			Help:      "Total number of misbehavior incidents reported, by kind.",
		}, []string{"kind"}),
		TxAnnouncementsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "tx_announcements_sent_total",
			Help:      "Total number of NewTransaction announcements emitted.",
		}),
		StallsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasschain",
			Subsystem: "sync",
			Name:      "stalls_detected_total",
			Help:      "Total number of in-flight block requests that exceeded the stall timeout.",
		}),
	}
}

// MustRegister registers every collector in s with reg, panicking on
// duplicate registration (a programmer error, not a runtime condition).
func (s *Sync) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		s.PeersConnected,
		s.BlocksInFlight,
		s.HeadersProcessed,
		s.BlocksProcessed,
		s.MisbehaviorEvents,
		s.TxAnnouncementsSent,
		s.StallsDetected,
	)
}
