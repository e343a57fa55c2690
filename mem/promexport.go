package mem

import "github.com/prometheus/client_golang/prometheus"

// PromCollector adapts a Manager's Snapshot into Prometheus metrics,
// following the same collector-wraps-a-snapshot shape as the reference
// toolkit's go-metrics/go-statsd integrations: it does no bookkeeping of
// its own, only projects Manager.Snapshot() through Collect on demand.
type PromCollector struct {
	manager *Manager

	totalBytes      *prometheus.Desc
	allocationCount *prometheus.Desc
	tagBytes        *prometheus.Desc
	tagAllocations  *prometheus.Desc
}

// NewPromCollector builds a PromCollector over manager. Register it with a
// prometheus.Registry to expose MAS statistics as gauges.
func NewPromCollector(manager *Manager) *PromCollector {
	return &PromCollector{
		manager: manager,
		totalBytes: prometheus.NewDesc(
			"soullib_mem_total_bytes", "Total bytes tracked across all tags.", nil, nil),
		allocationCount: prometheus.NewDesc(
			"soullib_mem_allocation_count", "Total live allocations tracked.", nil, nil),
		tagBytes: prometheus.NewDesc(
			"soullib_mem_tag_bytes", "Bytes tracked for a single tag.", []string{"tag"}, nil),
		tagAllocations: prometheus.NewDesc(
			"soullib_mem_tag_allocations", "Live allocations tracked for a single tag.", []string{"tag"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalBytes
	ch <- c.allocationCount
	ch <- c.tagBytes
	ch <- c.tagAllocations
}

// Collect implements prometheus.Collector.
func (c *PromCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.manager.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.totalBytes, prometheus.GaugeValue, float64(stats.TotalBytes))
	ch <- prometheus.MustNewConstMetric(c.allocationCount, prometheus.GaugeValue, float64(stats.AllocationCount))
	for _, ts := range stats.Tags {
		label := ts.Tag.String()
		ch <- prometheus.MustNewConstMetric(c.tagBytes, prometheus.GaugeValue, float64(ts.Bytes), label)
		ch <- prometheus.MustNewConstMetric(c.tagAllocations, prometheus.GaugeValue, float64(ts.Allocations), label)
	}
}
