// Package promfile collects run metrics in a Prometheus registry and writes
// them in the node_exporter textfile format.
package promfile

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/user/lanecrop/pkg/ports"
)

// Metrics implements ports.Metrics.
type Metrics struct {
	path     string
	registry *prometheus.Registry

	framesDecoded prometheus.Counter
	framesSkipped prometheus.Counter
	laneFrames    *prometheus.CounterVec
	laneFailures  *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
}

// New creates a Metrics that writes to path on Flush. An empty path keeps
// the metrics in memory only.
func New(path string, constLabels prometheus.Labels) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		path:     path,
		registry: reg,
		framesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name:        "lanecrop_frames_decoded_total",
			Help:        "Source frames read from the decoder",
			ConstLabels: constLabels,
		}),
		framesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name:        "lanecrop_frames_skipped_total",
			Help:        "Source frames decoded before the window start",
			ConstLabels: constLabels,
		}),
		laneFrames: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "lanecrop_lane_frames_total",
			Help:        "Frames delivered to each lane encoder",
			ConstLabels: constLabels,
		}, []string{"lane"}),
		laneFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "lanecrop_lane_failures_total",
			Help:        "Lanes whose encoder failed to open or finalize",
			ConstLabels: constLabels,
		}, []string{"lane"}),
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "lanecrop_phase_duration_seconds",
			Help:        "Duration of each run phase",
			Buckets:     []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			ConstLabels: constLabels,
		}, []string{"phase"}),
	}
}

func (m *Metrics) FrameDecoded() { m.framesDecoded.Inc() }

func (m *Metrics) FrameSkipped() { m.framesSkipped.Inc() }

func (m *Metrics) LaneFrame(lane string) { m.laneFrames.WithLabelValues(lane).Inc() }

func (m *Metrics) LaneFailed(lane string) { m.laneFailures.WithLabelValues(lane).Inc() }

func (m *Metrics) ObservePhase(phase string, seconds float64) {
	m.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Flush writes the registry to the textfile, if one was configured.
func (m *Metrics) Flush() error {
	if m.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(m.path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

var _ ports.Metrics = (*Metrics)(nil)
