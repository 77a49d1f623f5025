package pump

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/smazurov/radionode/internal/convert"
	"github.com/smazurov/radionode/internal/device"
	"github.com/smazurov/radionode/internal/stream"
	"github.com/smazurov/radionode/internal/transport"
	"github.com/smazurov/radionode/internal/tuning"
)

func testProfile() device.Profile {
	p := device.TujaSDR()
	p.SampleRate = 96000
	p.PeriodFrames = 960
	p.Periods = 4
	return p
}

func newDevice(t *testing.T, profile device.Profile, opts transport.SimOptions) (*device.Device, *transport.SimFactory) {
	t.Helper()
	factory := transport.NewSimFactory(opts)
	dev, err := device.New(device.Config{
		Profile:  profile,
		Factory:  factory,
		Registry: convert.NewDefaultRegistry(),
		Actuator: tuning.NewMemory(),
	})
	if err != nil {
		t.Fatalf("device.New() error = %v", err)
	}
	t.Cleanup(func() { _ = dev.Close() })
	return dev, factory
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestNewValidation(t *testing.T) {
	dev, _ := newDevice(t, testProfile(), transport.SimOptions{})
	tests := []struct {
		name string
		cfg  Config
	}{
		{"nil device", Config{Sink: &bytes.Buffer{}, Format: convert.CF32}},
		{"nil sink", Config{Device: dev, Format: convert.CF32}},
		{"bad format", Config{Device: dev, Sink: &bytes.Buffer{}, Format: "CU8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("New() should fail")
			}
		})
	}
}

func TestRunWritesLittleEndianSamples(t *testing.T) {
	dev, factory := newDevice(t, testProfile(), transport.SimOptions{Preroll: 4})
	var sink bytes.Buffer

	p, err := New(Config{Device: dev, Format: convert.CS32, Sink: &sink, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Frames != 4 {
		t.Errorf("Frames = %d, want 4", res.Frames)
	}

	got := make([]int32, 8)
	if err := binary.Read(&sink, binary.LittleEndian, got); err != nil {
		t.Fatalf("decode sink: %v", err)
	}
	want := []int32{0, 0, 256, -256, 512, -512, 768, -768}
	if !slices.Equal(got, want) {
		t.Errorf("sink = %v, want %v", got, want)
	}
	if !factory.Last(transport.Capture).Closed() {
		t.Error("Run() left the capture handle open")
	}
}

func TestRunRealtimeWithStats(t *testing.T) {
	profile := testProfile()
	dev, _ := newDevice(t, profile, transport.SimOptions{
		Realtime: true,
		Signal:   transport.Tone(12000, profile.SampleRate, 0.5),
	})
	var sink bytes.Buffer

	p, err := New(Config{
		Device:        dev,
		Format:        convert.CF32,
		Sink:          &sink,
		Limit:         9600,
		Timeout:       time.Second,
		StatsInterval: time.Millisecond,
		FFTSize:       256,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Frames != 9600 {
		t.Fatalf("Frames = %d, want 9600", res.Frames)
	}
	if sink.Len() != 9600*8 {
		t.Errorf("sink holds %d bytes, want %d", sink.Len(), 9600*8)
	}
	if res.Stats.PeakOffsetHz != 12000 {
		t.Errorf("PeakOffsetHz = %v, want 12000", res.Stats.PeakOffsetHz)
	}
}

func TestRunStopsOnFatalError(t *testing.T) {
	dev, factory := newDevice(t, testProfile(), transport.SimOptions{Preroll: 100})
	boom := errors.New("device gone")

	sink := writerFunc(func(b []byte) (int, error) {
		h := factory.Last(transport.Capture)
		h.FailNextRecover(boom)
		h.InjectXRun()
		return len(b), nil
	})

	p, err := New(Config{Device: dev, Format: convert.CF32, Sink: sink, Timeout: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background())
	if !errors.Is(err, stream.ErrTransportFault) || !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want transport fault wrapping the cause", err)
	}
	if res.Frames != 100 {
		t.Errorf("Frames = %d, want 100", res.Frames)
	}
}

func TestRunCountsOverflowsAndContinues(t *testing.T) {
	dev, factory := newDevice(t, testProfile(), transport.SimOptions{Preroll: 100})
	injected := false

	sink := writerFunc(func(b []byte) (int, error) {
		if !injected {
			injected = true
			factory.Last(transport.Capture).InjectXRun()
		}
		return len(b), nil
	})

	p, err := New(Config{Device: dev, Format: convert.CS16, Sink: sink, Limit: 200, Timeout: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Overflows != 1 || res.Frames != 200 {
		t.Errorf("Result = %+v, want 1 overflow and 200 frames", res)
	}
}

func TestRunCancelledIsCleanStop(t *testing.T) {
	dev, _ := newDevice(t, testProfile(), transport.SimOptions{})
	p, err := New(Config{Device: dev, Format: convert.CF32, Sink: &bytes.Buffer{}, Timeout: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil on cancellation", err)
	}
	if res.Frames != 0 || res.Timeouts == 0 {
		t.Errorf("Result = %+v, want timeouts and no frames", res)
	}
}

func TestRunSinkError(t *testing.T) {
	dev, _ := newDevice(t, testProfile(), transport.SimOptions{Preroll: 10})
	full := errors.New("disk full")
	sink := writerFunc(func([]byte) (int, error) { return 0, full })

	p, err := New(Config{Device: dev, Format: convert.CF32, Sink: sink})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background()); !errors.Is(err, full) {
		t.Errorf("Run() error = %v, want sink error", err)
	}
}

func TestAnalyzerTone(t *testing.T) {
	const (
		rate = 48000.0
		size = 512
		freq = 3000.0
		amp  = 0.5
	)
	buf := make([]float32, 2*size)
	for k := range size {
		ph := 2 * math.Pi * freq * float64(k) / rate
		buf[2*k] = float32(amp * math.Cos(ph))
		buf[2*k+1] = float32(amp * math.Sin(ph))
	}

	st := NewAnalyzer(size, rate).Analyze(buf, size)
	if st.PeakOffsetHz != freq {
		t.Errorf("PeakOffsetHz = %v, want %v", st.PeakOffsetHz, freq)
	}
	wantPower := 20 * math.Log10(amp)
	if math.Abs(st.PowerDBFS-wantPower) > 0.01 {
		t.Errorf("PowerDBFS = %.3f, want %.3f", st.PowerDBFS, wantPower)
	}
	if math.Abs(st.PeakDBFS-wantPower) > 0.1 {
		t.Errorf("PeakDBFS = %.3f, want about %.3f", st.PeakDBFS, wantPower)
	}
}

func TestAnalyzerSilence(t *testing.T) {
	st := NewAnalyzer(64, 48000).Analyze(make([]int16, 128), 64)
	if !math.IsInf(st.PowerDBFS, -1) {
		t.Errorf("PowerDBFS = %v, want -Inf", st.PowerDBFS)
	}
}
