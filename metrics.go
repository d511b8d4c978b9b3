package bstmap

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports the counters of a Map as Prometheus metrics.
type Collector struct {
	src StatsSource

	retries      *prometheus.Desc
	inserts      *prometheus.Desc
	updates      *prometheus.Desc
	revivals     *prometheus.Desc
	routingMarks *prometheus.Desc
	unlinks      *prometheus.Desc
	retired      *prometheus.Desc
}

// NewCollector creates a collector reading src on every scrape.
func NewCollector(namespace string, src StatsSource) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "bstmap", name), help, nil, nil)
	}
	return &Collector{
		src:          src,
		retries:      desc("retries_total", "Internal retries caused by concurrent structural changes."),
		inserts:      desc("inserts_total", "Leaves attached by Put."),
		updates:      desc("updates_total", "Values replaced in place by Put."),
		revivals:     desc("revivals_total", "Routing nodes given a value again by Put."),
		routingMarks: desc("routing_marks_total", "Nodes logically deleted but kept for routing."),
		unlinks:      desc("unlinks_total", "Nodes physically spliced out of the tree."),
		retired:      desc("retired_nodes", "Unlinked nodes held until the map is closed."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.retries
	ch <- c.inserts
	ch <- c.updates
	ch <- c.revivals
	ch <- c.routingMarks
	ch <- c.unlinks
	ch <- c.retired
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.retries, prometheus.CounterValue, float64(s.Retries))
	ch <- prometheus.MustNewConstMetric(c.inserts, prometheus.CounterValue, float64(s.Inserts))
	ch <- prometheus.MustNewConstMetric(c.updates, prometheus.CounterValue, float64(s.Updates))
	ch <- prometheus.MustNewConstMetric(c.revivals, prometheus.CounterValue, float64(s.Revivals))
	ch <- prometheus.MustNewConstMetric(c.routingMarks, prometheus.CounterValue, float64(s.RoutingMarks))
	ch <- prometheus.MustNewConstMetric(c.unlinks, prometheus.CounterValue, float64(s.Unlinks))
	ch <- prometheus.MustNewConstMetric(c.retired, prometheus.GaugeValue, float64(s.Retired))
}
