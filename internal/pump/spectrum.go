package pump

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/smazurov/radionode/internal/convert"
)

// Stats summarizes one block of I/Q samples.
type Stats struct {
	PowerDBFS    float64 `json:"power_dbfs"`
	PeakDBFS     float64 `json:"peak_dbfs"`
	PeakOffsetHz float64 `json:"peak_offset_hz"`
}

// Analyzer computes block power and the strongest spectral component
// with a Hamming-windowed FFT. Not safe for concurrent use.
type Analyzer struct {
	size   int
	rate   float64
	fft    *fourier.CmplxFFT
	win    []float64
	winSum float64
	in     []complex128
	out    []complex128
}

// NewAnalyzer returns an analyzer for blocks of size pairs at sampleRate.
func NewAnalyzer(size int, sampleRate float64) *Analyzer {
	win := make([]float64, size)
	var sum float64
	for i := range win {
		win[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		sum += win[i]
	}
	return &Analyzer{
		size:   size,
		rate:   sampleRate,
		fft:    fourier.NewCmplxFFT(size),
		win:    win,
		winSum: sum,
		in:     make([]complex128, size),
		out:    make([]complex128, size),
	}
}

// Size is the FFT length in pairs.
func (a *Analyzer) Size() int {
	return a.size
}

// Analyze reads up to Size pairs from buf, a []float32, []int16 or []int32
// holding pairs interleaved pairs. Short blocks are zero padded.
func (a *Analyzer) Analyze(buf any, pairs int) Stats {
	n := min(pairs, a.size)
	clear(a.in)
	switch b := buf.(type) {
	case []float32:
		for k := range n {
			a.in[k] = complex(float64(b[2*k]), float64(b[2*k+1]))
		}
	case []int16:
		for k := range n {
			a.in[k] = complex(float64(b[2*k]), float64(b[2*k+1])) / convert.FullScaleCS16
		}
	case []int32:
		for k := range n {
			a.in[k] = complex(float64(b[2*k]), float64(b[2*k+1])) / convert.FullScaleCS32
		}
	default:
		n = 0
	}
	if n == 0 {
		return Stats{PowerDBFS: math.Inf(-1), PeakDBFS: math.Inf(-1)}
	}

	var power float64
	for k := range n {
		power += real(a.in[k])*real(a.in[k]) + imag(a.in[k])*imag(a.in[k])
	}
	power /= float64(n)

	for k := range a.in {
		a.in[k] *= complex(a.win[k], 0)
	}
	a.fft.Coefficients(a.out, a.in)

	peakBin, peakMag := 0, 0.0
	for k, v := range a.out {
		if m := cmplx.Abs(v); m > peakMag {
			peakBin, peakMag = k, m
		}
	}

	return Stats{
		PowerDBFS:    dbfs(power, 10),
		PeakDBFS:     dbfs(peakMag/a.winSum, 20),
		PeakOffsetHz: a.fft.Freq(peakBin) * a.rate,
	}
}

func dbfs(v, factor float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return factor * math.Log10(v)
}
