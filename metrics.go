package incr

import "github.com/prometheus/client_golang/prometheus"

// MetricsCollector is a prometheus.Collector exposing the same
// counters GraphStats reports, for processes that run a graph
// long-lived behind a /metrics endpoint (spec.md §6 "Observability
// surface", extended per the domain stack in SPEC_FULL.md). It is
// intentionally a pull-based Collector rather than pushed counters, so
// the cost of walking graph state is only paid on scrape.
type MetricsCollector struct {
	graph *Graph

	nodes              *prometheus.Desc
	nodesRecomputed    *prometheus.Desc
	nodesChanged       *prometheus.Desc
	stabilizationNum   *prometheus.Desc
	recomputeHeapSize  *prometheus.Desc
}

// NewMetricsCollector returns a Collector reporting graph's
// bookkeeping counters under the incr_graph_ namespace.
func NewMetricsCollector(graph *Graph) *MetricsCollector {
	return &MetricsCollector{
		graph: graph,
		nodes: prometheus.NewDesc(
			"incr_graph_nodes", "Current number of nodes tracked by the graph.", nil, nil,
		),
		nodesRecomputed: prometheus.NewDesc(
			"incr_graph_nodes_recomputed_total", "Cumulative count of node recomputes.", nil, nil,
		),
		nodesChanged: prometheus.NewDesc(
			"incr_graph_nodes_changed_total", "Cumulative count of node value changes.", nil, nil,
		),
		stabilizationNum: prometheus.NewDesc(
			"incr_graph_stabilization_num", "The current stabilization generation counter.", nil, nil,
		),
		recomputeHeapSize: prometheus.NewDesc(
			"incr_graph_recompute_heap_size", "Number of nodes currently queued for recompute.", nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodes
	ch <- c.nodesRecomputed
	ch <- c.nodesChanged
	ch <- c.stabilizationNum
	ch <- c.recomputeHeapSize
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	recomputed, changed := c.graph.Stats()
	ch <- prometheus.MustNewConstMetric(c.nodes, prometheus.GaugeValue, float64(c.graph.NumNodes()))
	ch <- prometheus.MustNewConstMetric(c.nodesRecomputed, prometheus.CounterValue, float64(recomputed))
	ch <- prometheus.MustNewConstMetric(c.nodesChanged, prometheus.CounterValue, float64(changed))
	ch <- prometheus.MustNewConstMetric(c.stabilizationNum, prometheus.GaugeValue, float64(c.graph.StabilizationNum()))
	ch <- prometheus.MustNewConstMetric(c.recomputeHeapSize, prometheus.GaugeValue, float64(c.graph.recomputeHeap.Len()))
}
