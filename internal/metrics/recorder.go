package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vvka-141/cxn/internal/retry"
)

// Recorder holds the probe gauges on a private registry so that a textfile
// only ever contains cxn series.
type Recorder struct {
	registry *prometheus.Registry
	now      func() time.Time

	success  *prometheus.GaugeVec
	attempts *prometheus.GaugeVec
	duration *prometheus.GaugeVec
	lastRun  *prometheus.GaugeVec
}

var labels = []string{"kind", "target"}

// NewRecorder creates a Recorder with all gauges registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		now:      time.Now,
		success: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cxn_probe_success",
				Help: "1 if the last run connected to the target, 0 otherwise.",
			},
			labels,
		),
		attempts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cxn_probe_attempts",
				Help: "Number of probes made during the last run.",
			},
			labels,
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cxn_probe_duration_seconds",
				Help: "Wall time of the last run including backoff sleeps.",
			},
			labels,
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cxn_probe_last_run_timestamp_seconds",
				Help: "Unix time at which the last run finished.",
			},
			labels,
		),
	}
	r.registry.MustRegister(r.success, r.attempts, r.duration, r.lastRun)
	return r
}

// Observe records the outcome of one controller run against target.
// target must not carry credentials; callers pass host:port.
func (r *Recorder) Observe(kind, target string, result *retry.Result) {
	if result == nil {
		return
	}

	success := 0.0
	if result.Connected {
		success = 1
	}

	r.success.WithLabelValues(kind, target).Set(success)
	r.attempts.WithLabelValues(kind, target).Set(float64(result.Attempts))
	r.duration.WithLabelValues(kind, target).Set(result.Elapsed.Seconds())
	r.lastRun.WithLabelValues(kind, target).Set(float64(r.now().UnixNano()) / 1e9)
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes all recorded series to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
