package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	signalPower = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "radionode",
		Subsystem: "signal",
		Name:      "power_dbfs",
		Help:      "Mean capture power relative to full scale",
	})

	signalPeakOffset = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "radionode",
		Subsystem: "signal",
		Name:      "peak_offset_hz",
		Help:      "Offset of the strongest spectral bin from the center frequency",
	})

	alsaAvail = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "radionode",
		Subsystem: "alsa",
		Name:      "avail_frames",
		Help:      "Frames available in the ALSA ring",
	}, []string{"device"})

	alsaRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "radionode",
		Subsystem: "alsa",
		Name:      "running",
		Help:      "Whether the ALSA substream reports RUNNING",
	}, []string{"device"})
)

// SetSignalStats records the latest spectrum probe.
func SetSignalStats(powerDBFS, peakOffsetHz float64) {
	signalPower.Set(powerDBFS)
	signalPeakOffset.Set(peakOffsetHz)
}

// SetALSAStatus records a substream status sample.
func SetALSAStatus(device string, running bool, avail float64) {
	v := 0.0
	if running {
		v = 1
	}
	alsaRunning.WithLabelValues(device).Set(v)
	alsaAvail.WithLabelValues(device).Set(avail)
}

// DeleteALSAStatus removes the substream metrics for a device.
func DeleteALSAStatus(device string) {
	alsaRunning.DeleteLabelValues(device)
	alsaAvail.DeleteLabelValues(device)
}
