package thicket

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records per-pass resolution counters on a prometheus registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolved     *prometheus.CounterVec
	dirty        *prometheus.GaugeVec
	passDuration *prometheus.HistogramVec
	spatialOps   *prometheus.CounterVec
	frames       prometheus.Counter
}

// NewMetrics registers the scene metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		resolved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "thicket_resolved_total",
			Help: "Total resolved values written, by pass",
		}, []string{"pass"}),
		dirty: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "thicket_dirty_entries",
			Help: "Dirty entries queued at the start of the last frame, by queue",
		}, []string{"queue"}),
		passDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "thicket_pass_duration_seconds",
			Help:    "Duration of resolution passes",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"pass"}),
		spatialOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "thicket_spatial_operations_total",
			Help: "Spatial index operations, by kind",
		}, []string{"op"}),
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "thicket_frames_total",
			Help: "Total Resolve calls",
		}),
	}
}

func (m *Metrics) observePass(pass string, writes int, d time.Duration) {
	if m == nil {
		return
	}
	m.resolved.WithLabelValues(pass).Add(float64(writes))
	m.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (m *Metrics) observeFrame() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

func (m *Metrics) observeDirty(queues []*DirtyQueue) {
	if m == nil {
		return
	}
	for _, q := range queues {
		m.dirty.WithLabelValues(q.Name()).Set(float64(q.Len()))
	}
}

func (m *Metrics) spatialOp(op string) {
	if m == nil {
		return
	}
	m.spatialOps.WithLabelValues(op).Inc()
}
