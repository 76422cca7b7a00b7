package circbuf

import "github.com/prometheus/client_golang/prometheus"

// QueueCollector exposes a Queue's traffic counters and depth as Prometheus
// metrics. Register it with a prometheus.Registerer:
//
//	prometheus.MustRegister(circbuf.NewQueueCollector(q, "ingest"))
type QueueCollector[T any] struct {
	queue *Queue[T]

	depth      *prometheus.Desc
	capacity   *prometheus.Desc
	pushed     *prometheus.Desc
	popped     *prometheus.Desc
	overwrites *prometheus.Desc
}

// NewQueueCollector returns a collector for q. The queue name becomes the
// "queue" label on every metric.
func NewQueueCollector[T any](q *Queue[T], name string) *QueueCollector[T] {
	labels := prometheus.Labels{"queue": name}

	return &QueueCollector[T]{
		queue: q,

		depth: prometheus.NewDesc(
			prometheus.BuildFQName("circbuf", "queue", "depth"),
			"Number of elements currently buffered", nil, labels),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName("circbuf", "queue", "capacity"),
			"Total slot count of the queue", nil, labels),
		pushed: prometheus.NewDesc(
			prometheus.BuildFQName("circbuf", "queue", "pushed_total"),
			"Total number of elements pushed", nil, labels),
		popped: prometheus.NewDesc(
			prometheus.BuildFQName("circbuf", "queue", "popped_total"),
			"Total number of elements popped", nil, labels),
		overwrites: prometheus.NewDesc(
			prometheus.BuildFQName("circbuf", "queue", "overwrites_total"),
			"Total number of oldest-element overwrites", nil, labels),
	}
}

func (c *QueueCollector[T]) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.depth
	ch <- c.capacity
	ch <- c.pushed
	ch <- c.popped
	ch <- c.overwrites
}

func (c *QueueCollector[T]) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.depth, prometheus.GaugeValue, float64(c.queue.Len()))
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(c.queue.Cap()))
	ch <- prometheus.MustNewConstMetric(c.pushed, prometheus.CounterValue, float64(c.queue.PushedCount()))
	ch <- prometheus.MustNewConstMetric(c.popped, prometheus.CounterValue, float64(c.queue.PoppedCount()))
	ch <- prometheus.MustNewConstMetric(c.overwrites, prometheus.CounterValue, float64(c.queue.OverwriteCount()))
}
