// Package slotmetrics exports allocator and table statistics as Prometheus
// metrics.
//
// The collector reads a Stats snapshot on every scrape, so it never holds
// the allocator lock outside a scrape:
//
//	tbl := table.MustNew[Conn](4096)
//	prometheus.MustRegister(slotmetrics.NewTableCollector(tbl,
//		slotmetrics.WithLabel("table", "conns")))
package slotmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/slotkit/slot/alloc"
	"github.com/joshuapare/slotkit/slot/table"
)

// DefaultNamespace prefixes every metric name unless WithNamespace is given.
const DefaultNamespace = "slotkit"

// AllocatorSource is satisfied by *alloc.Allocator.
type AllocatorSource interface {
	Stats() alloc.Stats
}

// TableSource is satisfied by *table.Table[T] for any T.
type TableSource interface {
	Stats() table.Stats
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace string
	labels    prometheus.Labels
}

// WithNamespace replaces DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithLabel adds a constant label to every exported metric.
func WithLabel(name, value string) Option {
	return func(o *options) { o.labels[name] = value }
}

type metric struct {
	desc  *prometheus.Desc
	typ   prometheus.ValueType
	value func(table.Stats) float64
}

// Collector implements prometheus.Collector over a stats source.
type Collector struct {
	snapshot func() table.Stats
	metrics  []metric
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector exports the statistics of an allocator.
func NewCollector(src AllocatorSource, opts ...Option) *Collector {
	o := buildOptions(opts)
	return &Collector{
		snapshot: func() table.Stats { return table.Stats{Stats: src.Stats()} },
		metrics:  allocatorMetrics(o),
	}
}

// NewTableCollector exports the statistics of a table, including entry
// occupancy.
func NewTableCollector(src TableSource, opts ...Option) *Collector {
	o := buildOptions(opts)
	return &Collector{
		snapshot: src.Stats,
		metrics:  append(allocatorMetrics(o), tableMetrics(o)...),
	}
}

func buildOptions(opts []Option) options {
	o := options{namespace: DefaultNamespace, labels: prometheus.Labels{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) desc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(prometheus.BuildFQName(o.namespace, "", name), help, nil, o.labels)
}

func allocatorMetrics(o options) []metric {
	return []metric{
		{o.desc("capacity", "Fixed number of slots."), prometheus.GaugeValue,
			func(s table.Stats) float64 { return float64(s.Capacity) }},
		{o.desc("boundary", "High-water mark of allocated slot indices."), prometheus.GaugeValue,
			func(s table.Stats) float64 { return float64(s.Boundary) }},
		{o.desc("free", "Released slot indices below the boundary."), prometheus.GaugeValue,
			func(s table.Stats) float64 { return float64(s.Free) }},
		{o.desc("in_use", "Slot indices currently allocated."), prometheus.GaugeValue,
			func(s table.Stats) float64 { return float64(s.InUse) }},
		{o.desc("allocs_total", "Successful slot allocations."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.Allocs) }},
		{o.desc("releases_total", "Slot releases that returned an index to the pool."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.Releases) }},
		{o.desc("exhausted_total", "Allocations rejected because every slot was in use."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.Exhausted) }},
		{o.desc("ignored_releases_total", "Releases of out-of-range or already free indices."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.IgnoredReleases) }},
	}
}

func tableMetrics(o options) []metric {
	return []metric{
		{o.desc("occupied", "Entries currently holding a reference."), prometheus.GaugeValue,
			func(s table.Stats) float64 { return float64(s.Occupied) }},
		{o.desc("publishes_total", "References stored into entries."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.Publishes) }},
		{o.desc("removes_total", "References removed from entries."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.Removes) }},
		{o.desc("ignored_removes_total", "Removes of out-of-range or empty entries."), prometheus.CounterValue,
			func(s table.Stats) float64 { return float64(s.IgnoredRemoves) }},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.typ, m.value(s))
	}
}
