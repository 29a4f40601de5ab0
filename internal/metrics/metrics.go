package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	SnapshotsProcessed prometheus.Counter
	RowsWritten        *prometheus.CounterVec // kind label: free|occupied
	CarsRegistered     prometheus.Counter
	BatchesCommitted   prometheus.Counter
	Watermark          prometheus.Gauge

	TripsBuilt     prometheus.Gauge
	TripGlitches   prometheus.Gauge
	Unterminated   prometheus.Gauge
	RebuildRuns    prometheus.Counter
	RebuildFailure prometheus.Counter

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge

	BatchDuration   prometheus.Histogram
	RebuildDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		SnapshotsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_snapshots_processed_total",
			Help: "Total snapshots diffed against the tracker.",
		}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_state_rows_written_total",
			Help: "Total car_state rows appended.",
		}, []string{"kind"}),
		CarsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_cars_registered_total",
			Help: "Total vehicles seen for the first time.",
		}),
		BatchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_batches_committed_total",
			Help: "Total import transactions committed.",
		}),
		Watermark: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_watermark_stamp",
			Help: "Newest snapshot stamp stored, in unix seconds.",
		}),
		TripsBuilt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_trips",
			Help: "Trips produced by the last rebuild.",
		}),
		TripGlitches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_trip_glitches",
			Help: "Occupied intervals discarded as glitches by the last rebuild.",
		}),
		Unterminated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_trips_unterminated",
			Help: "Occupied intervals still open at the end of the last rebuild.",
		}),
		RebuildRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_trip_rebuilds_total",
			Help: "Total trip rebuilds attempted.",
		}),
		RebuildFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_trip_rebuild_failures_total",
			Help: "Total trip rebuilds rolled back.",
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_batch_duration_seconds",
			Help:    "Duration of one import batch including commit.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 15),
		}),
		RebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_trip_rebuild_duration_seconds",
			Help:    "Duration of a full trip rebuild.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
	}

	reg.MustRegister(
		c.SnapshotsProcessed, c.RowsWritten, c.CarsRegistered, c.BatchesCommitted, c.Watermark,
		c.TripsBuilt, c.TripGlitches, c.Unterminated, c.RebuildRuns, c.RebuildFailure,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected,
		c.BatchDuration, c.RebuildDuration,
	)

	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}

func (c *Collector) ObserveBatch(d time.Duration) { c.BatchDuration.Observe(d.Seconds()) }

func (c *Collector) ObserveRebuild(d time.Duration) { c.RebuildDuration.Observe(d.Seconds()) }

// Publisher hooks

func (c *Collector) NATSPublishedInc() { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc() { c.NATSPublishErrs.Inc() }
func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}
