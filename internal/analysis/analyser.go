package analysis

import (
	"fmt"
	"math"
	"sync"

	playerrors "github.com/jscyril/mediashell/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	DefaultFFTSize     = 256
	MinFFTSize         = 32
	MaxFFTSize         = 32768
	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// Analyser keeps the most recent fftSize mono samples routed to it and
// turns them into per-bin byte magnitudes
type Analyser struct {
	mu sync.Mutex

	fftSize int
	fft     *fourier.FFT
	window  []float64

	ring []float64
	pos  int

	smoothing float64
	minDB     float64
	maxDB     float64
	smoothed  []float64

	windowed []float64
	coeffs   []complex128
}

// NewAnalyser creates an analyser with the given FFT size
func NewAnalyser(fftSize int) (*Analyser, error) {
	a := &Analyser{
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
	}
	if err := a.SetFFTSize(fftSize); err != nil {
		return nil, err
	}
	return a, nil
}

// ValidFFTSize reports whether n is a power of two in [MinFFTSize, MaxFFTSize]
func ValidFFTSize(n int) bool {
	return n >= MinFFTSize && n <= MaxFFTSize && n&(n-1) == 0
}

// SetFFTSize resizes the analysis window and resets history
func (a *Analyser) SetFFTSize(n int) error {
	if !ValidFFTSize(n) {
		return fmt.Errorf("%w: %d", playerrors.ErrInvalidFFTSize, n)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.fftSize = n
	a.fft = fourier.NewFFT(n)
	a.window = blackman(n)
	a.ring = make([]float64, n)
	a.pos = 0
	a.smoothed = make([]float64, n/2)
	a.windowed = make([]float64, n)
	a.coeffs = make([]complex128, n/2+1)
	return nil
}

// blackman returns the classic Blackman window used for spectrum analysis
func blackman(n int) []float64 {
	const a0, a1, a2 = 0.42, 0.5, 0.08
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

// FFTSize returns the analysis window length
func (a *Analyser) FFTSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize
}

// FrequencyBinCount returns the number of bins in a snapshot, half the FFT size
func (a *Analyser) FrequencyBinCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize / 2
}

// SetSmoothing sets the time constant applied between snapshots
func (a *Analyser) SetSmoothing(s float64) error {
	if s < 0 || s > 1 {
		return fmt.Errorf("smoothing %v outside [0, 1]", s)
	}
	a.mu.Lock()
	a.smoothing = s
	a.mu.Unlock()
	return nil
}

// SetDecibelRange sets the dB values mapped to byte 0 and 255
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if minDB >= maxDB {
		return fmt.Errorf("decibel range [%v, %v] is empty", minDB, maxDB)
	}
	a.mu.Lock()
	a.minDB, a.maxDB = minDB, maxDB
	a.mu.Unlock()
	return nil
}

// Process records a mono mix of samples. It runs on the audio goroutine.
func (a *Analyser) Process(samples [][2]float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.pos] = (s[0] + s[1]) / 2
		a.pos = (a.pos + 1) % a.fftSize
	}
	a.mu.Unlock()
}

// ByteFrequencyData fills dst with the current spectrum scaled to 0..255
// and returns how many bins were written
func (a *Analyser) ByteFrequencyData(dst []uint8) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.fftSize
	for i := range n {
		a.windowed[i] = a.ring[(a.pos+i)%n] * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.windowed)

	bins := min(len(dst), n/2)
	span := a.maxDB - a.minDB
	for k := range n / 2 {
		mag := math.Hypot(real(a.coeffs[k]), imag(a.coeffs[k])) / float64(n)
		a.smoothed[k] = a.smoothing*a.smoothed[k] + (1-a.smoothing)*mag
		if k >= bins {
			continue
		}

		db := 20 * math.Log10(a.smoothed[k])
		v := 255 * (db - a.minDB) / span
		switch {
		case math.IsNaN(v) || v <= 0:
			dst[k] = 0
		case v >= 255:
			dst[k] = 255
		default:
			dst[k] = uint8(v)
		}
	}
	return bins
}
