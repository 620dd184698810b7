package residency

import "github.com/prometheus/client_golang/prometheus"

// Collector exports manager state as Prometheus metrics. Construct one per
// manager and register it explicitly; metrics are gathered from a Status
// snapshot so collection never blocks an iteration for long.
type Collector struct {
	m *Manager

	consumed    *prometheus.Desc
	budget      *prometheus.Desc
	registered  *prometheus.Desc
	resident    *prometheus.Desc
	loading     *prometheus.Desc
	activations *prometheus.Desc
	releases    *prometheus.Desc
	skips       *prometheus.Desc
	timestamp   *prometheus.Desc
	fence       *prometheus.Desc
}

// NewCollector constructs a Prometheus collector for m.
//   - ns: Prometheus namespace (e.g. "assetd")
//   - constLabels: static labels applied to all metrics (may be nil)
func NewCollector(m *Manager, ns string, constLabels prometheus.Labels) *Collector {
	sub := "residency"
	d := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(ns, sub, name), help, nil, constLabels)
	}
	return &Collector{
		m:           m,
		consumed:    d("consumed_bytes", "Bytes attributed to resident and in-flight assets"),
		budget:      d("budget_bytes", "Hard residency budget in bytes"),
		registered:  d("registered_assets", "Number of registered assets"),
		resident:    d("resident_assets", "Number of resident assets"),
		loading:     d("loading_assets", "Number of assets with an in-flight instantiation"),
		activations: d("activations_total", "Total instantiations started"),
		releases:    d("releases_total", "Total resources released"),
		skips:       d("iteration_skips_total", "Iterations skipped due to fence backpressure"),
		timestamp:   d("timestamp", "Logical iteration timestamp"),
		fence:       d("fence_count", "Fence signal count"),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.consumed
	ch <- c.budget
	ch <- c.registered
	ch <- c.resident
	ch <- c.loading
	ch <- c.activations
	ch <- c.releases
	ch <- c.skips
	ch <- c.timestamp
	ch <- c.fence
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Status()
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v)
	}
	gauge(c.consumed, float64(s.TotalConsumedBytes))
	gauge(c.budget, float64(s.BudgetBytes))
	gauge(c.registered, float64(s.Registered))
	gauge(c.resident, float64(s.Resident))
	gauge(c.loading, float64(s.Loading))
	counter(c.activations, float64(s.Activations))
	counter(c.releases, float64(s.Releases))
	counter(c.skips, float64(s.Skips))
	counter(c.timestamp, float64(s.Timestamp))
	counter(c.fence, float64(s.FenceCount))
}
