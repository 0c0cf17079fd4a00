package metrics

import "github.com/prometheus/client_golang/prometheus"

type Observer interface {
	Observe(val float64, labels ...string)

	// for now we will tightly couple to the prometheus collector type
	// the go otel metrics sdk also has a prometheus adapter that implements this interface.
	prometheus.Collector
}

type Metrics struct {
	// CommandCount counts invocations by command name and kind (slash or prefix).
	CommandCount Observer
	// CommandLatency is command handling time in seconds by command name.
	CommandLatency Observer
	// ActiveMessages is the number of live active messages.
	ActiveMessages Observer
	// ActiveEvents counts active message events by message kind and event.
	ActiveEvents Observer
	// OsuLatency is osu! API request time in seconds by endpoint.
	OsuLatency Observer
	// CacheLookups counts cache reads by result, either hit or miss.
	CacheLookups Observer
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.CommandCount,
		m.CommandLatency,
		m.ActiveMessages,
		m.ActiveEvents,
		m.OsuLatency,
		m.CacheLookups,
	}
}

// Nop returns metrics which observe nothing. Useful for tests.
func Nop() *Metrics {
	return &Metrics{
		CommandCount:   nop{},
		CommandLatency: nop{},
		ActiveMessages: nop{},
		ActiveEvents:   nop{},
		OsuLatency:     nop{},
		CacheLookups:   nop{},
	}
}

type nop struct{}

func (nop) Observe(float64, ...string)       {}
func (nop) Describe(chan<- *prometheus.Desc) {}
func (nop) Collect(chan<- prometheus.Metric) {}
