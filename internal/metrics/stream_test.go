package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStreamStatsCache(t *testing.T) {
	dir := "test-capture"
	DeleteStreamMetrics(dir)

	if s := GetStreamStats(dir); s != nil {
		t.Error("expected nil for unknown direction")
	}

	AddStreamSamples(dir, 2048)
	AddStreamSamples(dir, 1024)
	IncStreamXRuns(dir)
	IncStreamTimeouts(dir)
	IncStreamTimeouts(dir)
	IncStreamFaults(dir)
	SetStreamPhase(dir, 2, "running")

	s := GetStreamStats(dir)
	if s == nil {
		t.Fatal("expected non-nil stats")
	}
	if s.Samples != 3072 {
		t.Errorf("Samples = %d, want 3072", s.Samples)
	}
	if s.XRuns != 1 || s.Timeouts != 2 || s.Faults != 1 {
		t.Errorf("XRuns/Timeouts/Faults = %d/%d/%d, want 1/2/1", s.XRuns, s.Timeouts, s.Faults)
	}
	if s.Phase != "running" {
		t.Errorf("Phase = %q, want running", s.Phase)
	}

	s.Samples = 0
	if again := GetStreamStats(dir); again.Samples != 3072 {
		t.Errorf("cache was modified, Samples = %d", again.Samples)
	}

	if got := testutil.ToFloat64(streamSamples.WithLabelValues(dir)); got != 3072 {
		t.Errorf("samples_total = %v, want 3072", got)
	}
	if got := testutil.ToFloat64(streamPhase.WithLabelValues(dir)); got != 2 {
		t.Errorf("phase = %v, want 2", got)
	}

	DeleteStreamMetrics(dir)
	if GetStreamStats(dir) != nil {
		t.Error("expected nil after delete")
	}
}

func TestTunerAndSignalGauges(t *testing.T) {
	SetTunerFrequency(7_074_000)
	if got := testutil.ToFloat64(tunerFrequency); got != 7_074_000 {
		t.Errorf("frequency_hz = %v", got)
	}

	SetSignalStats(-42.5, 1500)
	if got := testutil.ToFloat64(signalPower); got != -42.5 {
		t.Errorf("power_dbfs = %v", got)
	}
	if got := testutil.ToFloat64(signalPeakOffset); got != 1500 {
		t.Errorf("peak_offset_hz = %v", got)
	}

	SetALSAStatus("hw:9,0", true, 512)
	if got := testutil.ToFloat64(alsaRunning.WithLabelValues("hw:9,0")); got != 1 {
		t.Errorf("running = %v", got)
	}
	if got := testutil.ToFloat64(alsaAvail.WithLabelValues("hw:9,0")); got != 512 {
		t.Errorf("avail_frames = %v", got)
	}
	DeleteALSAStatus("hw:9,0")
}
