package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionStats is a point-in-time view of the session store.
type SessionStats struct {
	Active     int
	Passivated int
}

// Collector exports session store gauges by pulling stats at scrape time.
type Collector struct {
	stats func() SessionStats

	active     *prometheus.Desc
	passivated *prometheus.Desc
}

// NewCollector creates a collector that calls stats on every scrape.
func NewCollector(stats func() SessionStats) *Collector {
	return &Collector{
		stats: stats,
		active: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sessions_active"),
			"Number of stateful sessions held in memory.",
			nil, nil,
		),
		passivated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sessions_passivated"),
			"Number of stateful sessions currently passivated.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.active
	ch <- c.passivated
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(s.Active))
	ch <- prometheus.MustNewConstMetric(c.passivated, prometheus.GaugeValue, float64(s.Passivated))
}
