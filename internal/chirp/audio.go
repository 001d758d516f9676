package chirp

import (
	"io"
	"math"
	"math/cmplx"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/mjibson/go-dsp/fft"
)

// Streamer plays mono samples on both channels.
func Streamer(samples []float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := 0
		for n < len(buf) && pos < len(samples) {
			buf[n][0] = samples[pos]
			buf[n][1] = samples[pos]
			n++
			pos++
		}
		return n, true
	})
}

// WriteWAV encodes samples as 16-bit mono PCM.
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	return wav.Encode(w, Streamer(samples), format)
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// spectral bin.
func DominantFrequency(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 {
		return 0
	}

	spectrum := fft.FFTReal(samples)
	best, bestMag := 0, -1.0
	for k := 1; k <= len(spectrum)/2; k++ {
		mag := cmplx.Abs(spectrum[k])
		if mag > bestMag && !math.IsNaN(mag) {
			best, bestMag = k, mag
		}
	}
	return float64(best) * float64(sampleRate) / float64(len(samples))
}
