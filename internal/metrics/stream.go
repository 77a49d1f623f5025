// Package metrics provides Prometheus metrics for radio streams and tuning.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	streamSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radionode",
		Subsystem: "stream",
		Name:      "samples_total",
		Help:      "Sample pairs transferred",
	}, []string{"direction"})

	streamXRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radionode",
		Subsystem: "stream",
		Name:      "xruns_total",
		Help:      "Overruns and underruns recovered by the transport",
	}, []string{"direction"})

	streamTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radionode",
		Subsystem: "stream",
		Name:      "timeouts_total",
		Help:      "Transfers that timed out waiting for the ring",
	}, []string{"direction"})

	streamFaults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "radionode",
		Subsystem: "stream",
		Name:      "faults_total",
		Help:      "Fatal stream errors",
	}, []string{"direction"})

	streamPhase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "radionode",
		Subsystem: "stream",
		Name:      "phase",
		Help:      "Session phase (0 closed, 1 configured, 2 running, 3 recovering)",
	}, []string{"direction"})

	tunerFrequency = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "radionode",
		Subsystem: "tuner",
		Name:      "frequency_hz",
		Help:      "Current RF center frequency",
	})

	// Local cache for the status API.
	streamCache   = make(map[string]*StreamStats)
	streamCacheMu sync.RWMutex
)

// StreamStats holds the counters for one stream direction.
type StreamStats struct {
	Samples  uint64
	XRuns    uint64
	Timeouts uint64
	Faults   uint64
	Phase    string
}

// AddStreamSamples counts transferred sample pairs.
func AddStreamSamples(direction string, pairs int) {
	streamSamples.WithLabelValues(direction).Add(float64(pairs))
	updateCache(direction, func(s *StreamStats) { s.Samples += uint64(pairs) })
}

// IncStreamXRuns counts a recovered xrun.
func IncStreamXRuns(direction string) {
	streamXRuns.WithLabelValues(direction).Inc()
	updateCache(direction, func(s *StreamStats) { s.XRuns++ })
}

// IncStreamTimeouts counts a transfer timeout.
func IncStreamTimeouts(direction string) {
	streamTimeouts.WithLabelValues(direction).Inc()
	updateCache(direction, func(s *StreamStats) { s.Timeouts++ })
}

// IncStreamFaults counts a fatal stream error.
func IncStreamFaults(direction string) {
	streamFaults.WithLabelValues(direction).Inc()
	updateCache(direction, func(s *StreamStats) { s.Faults++ })
}

// SetStreamPhase records the session phase by its numeric value and name.
func SetStreamPhase(direction string, phase int, name string) {
	streamPhase.WithLabelValues(direction).Set(float64(phase))
	updateCache(direction, func(s *StreamStats) { s.Phase = name })
}

// SetTunerFrequency records the RF center frequency.
func SetTunerFrequency(hz float64) {
	tunerFrequency.Set(hz)
}

// DeleteStreamMetrics removes all metrics for a direction.
func DeleteStreamMetrics(direction string) {
	streamSamples.DeleteLabelValues(direction)
	streamXRuns.DeleteLabelValues(direction)
	streamTimeouts.DeleteLabelValues(direction)
	streamFaults.DeleteLabelValues(direction)
	streamPhase.DeleteLabelValues(direction)

	streamCacheMu.Lock()
	delete(streamCache, direction)
	streamCacheMu.Unlock()
}

// GetStreamStats returns a copy of the counters for a direction, or nil.
func GetStreamStats(direction string) *StreamStats {
	streamCacheMu.RLock()
	defer streamCacheMu.RUnlock()
	if s, ok := streamCache[direction]; ok {
		dup := *s
		return &dup
	}
	return nil
}

func updateCache(direction string, update func(*StreamStats)) {
	streamCacheMu.Lock()
	defer streamCacheMu.Unlock()
	s, ok := streamCache[direction]
	if !ok {
		s = &StreamStats{}
		streamCache[direction] = s
	}
	update(s)
}
