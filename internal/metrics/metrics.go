// Package metrics records run counters in a private Prometheus registry and
// writes them in the node_exporter textfile format, so batch runs can be
// scraped after they exit.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hicat"

// Run holds the collectors of one run.
type Run struct {
	reg *prometheus.Registry

	Tiles        prometheus.Counter
	Detections   prometheus.Counter
	Rejected     prometheus.Counter
	Pairs        prometheus.Gauge
	Dropped      prometheus.Gauge
	Sources      prometheus.Gauge
	Filtered     prometheus.Gauge
	TileDuration prometheus.Histogram
	LastSuccess  prometheus.Gauge
}

// NewRun registers the collectors, labelled with the run id.
func NewRun(runID string) *Run {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"run_id": runID}
	f := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: namespace, Name: name, Help: help, ConstLabels: labels}
	}
	r := &Run{
		reg:        reg,
		Tiles:      prometheus.NewCounter(prometheus.CounterOpts(f("tiles_processed_total", "Tiles that finished detection."))),
		Detections: prometheus.NewCounter(prometheus.CounterOpts(f("detections_total", "Detection records read from tiles."))),
		Rejected:   prometheus.NewCounter(prometheus.CounterOpts(f("rejected_records_total", "Malformed detection records."))),
		Pairs:      prometheus.NewGauge(prometheus.GaugeOpts(f("duplicate_pairs", "Duplicate pairs found by the resolver."))),
		Dropped:    prometheus.NewGauge(prometheus.GaugeOpts(f("dropped_records", "Records removed before assembly."))),
		Sources:    prometheus.NewGauge(prometheus.GaugeOpts(f("catalog_sources", "Entries in the merged catalogue."))),
		Filtered:   prometheus.NewGauge(prometheus.GaugeOpts(f("filtered_sources", "Entries removed by the size-mass filter."))),
		TileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "tile_duration_seconds", Help: "Wall time per tile.",
			ConstLabels: labels, Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts(f("last_success_timestamp_seconds", "Unix time the run finished."))),
	}
	reg.MustRegister(r.Tiles, r.Detections, r.Rejected, r.Pairs, r.Dropped,
		r.Sources, r.Filtered, r.TileDuration, r.LastSuccess)
	return r
}

// ObserveTile records one finished tile.
func (r *Run) ObserveTile(records, rejected int, elapsed time.Duration) {
	r.Tiles.Inc()
	r.Detections.Add(float64(records))
	r.Rejected.Add(float64(rejected))
	r.TileDuration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, e.g. for testutil.
func (r *Run) Registry() *prometheus.Registry { return r.reg }

// WriteTextfile stamps the success time and writes the registry to path
// atomically.
func (r *Run) WriteTextfile(path string) error {
	r.LastSuccess.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, r.reg)
}
