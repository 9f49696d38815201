// ABOUTME: Non-destructive frequency analysis tap over a live sample stream
// ABOUTME: Produces smoothed byte-scale bins and a normalized level
package analyzer

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFTSize matches the capture frame size so one frame fills the window.
	FFTSize = 256
	NumBins = FFTSize / 2

	// Per-bin exponential smoothing constant.
	smoothing = 0.9

	// dB range mapped onto the 0..255 bin scale.
	minDB = -100.0
	maxDB = -30.0
)

// Tap reads a sample stream without owning it. Capture and playback push
// their frames in; the render loop reads bins and levels out. A Tap never
// holds device or session resources, so it is always safe to drop.
type Tap struct {
	mu       sync.Mutex
	window   [FFTSize]float64
	pos      int
	smoothed [NumBins]float64
	fft      *fourier.FFT
	scratch  []complex128
}

// NewTap creates an analysis tap.
func NewTap() *Tap {
	return &Tap{
		fft: fourier.NewFFT(FFTSize),
		// Coefficients requires dst to be exactly Len()/2+1.
		scratch: make([]complex128, FFTSize/2+1),
	}
}

// Push appends samples to the analysis window. Called from the audio path;
// the signal itself is unaffected.
func (t *Tap) Push(samples []float32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range samples {
		t.window[t.pos] = float64(s)
		t.pos = (t.pos + 1) % FFTSize
	}
}

// Bins computes smoothed frequency-domain energy on a 0..255 scale. Each call
// advances the per-bin smoothing by one step.
func (t *Tap) Bins() [NumBins]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.binsLocked()
}

// Read computes the bins and the level they imply in a single smoothing step,
// so one render tick observes one consistent measurement.
func (t *Tap) Read() ([NumBins]byte, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bins := t.binsLocked()
	return bins, levelOf(bins)
}

// Level returns the normalized 0..1 energy derived from the current bins.
func (t *Tap) Level() float64 {
	_, level := t.Read()
	return level
}

func (t *Tap) binsLocked() [NumBins]byte {
	// Unroll the ring into time order.
	seq := make([]float64, FFTSize)
	for i := 0; i < FFTSize; i++ {
		seq[i] = t.window[(t.pos+i)%FFTSize]
	}

	t.fft.Coefficients(t.scratch, seq)

	var out [NumBins]byte
	for i := 0; i < NumBins; i++ {
		mag := cmplxAbs(t.scratch[i]) / (FFTSize / 2)

		db := minDB
		if mag > 0 {
			db = 20 * math.Log10(mag)
		}

		v := (db - minDB) / (maxDB - minDB) * 255
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}

		t.smoothed[i] = t.smoothed[i]*smoothing + v*(1-smoothing)
		out[i] = byte(t.smoothed[i])
	}
	return out
}

// levelOf maps byte bins to the normalized 0..1 level scale.
func levelOf(bins [NumBins]byte) float64 {
	var sum float64
	for _, b := range bins {
		sum += float64(b)
	}
	avg := sum / (NumBins * 255)

	return math.Min(1, avg*1.6)
}

// Reset clears the window and smoothing state. Called on teardown so a
// reused tap does not replay stale energy.
func (t *Tap) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.window = [FFTSize]float64{}
	t.smoothed = [NumBins]float64{}
	t.pos = 0
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
