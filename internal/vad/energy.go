package vad

import (
	"math"
	"sort"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
)

// peakFloor keeps the threshold from collapsing on near-silent recordings:
// it is never allowed below this fraction of the loudest frame's energy.
const peakFloor = 0.1

// energyClassifier decides per frame by comparing short-term RMS energy
// against a threshold derived from the whole recording.
type energyClassifier struct {
	threshold float64
}

// newEnergy calibrates the threshold from a percentile of observed frame
// energies, floored at a fraction of the recording's peak energy.
func newEnergy(cfg Config, src *audio.Source) (*energyClassifier, error) {
	frames := src.Frames(cfg.FrameMS)

	energies := make([]float64, len(frames))
	peak := 0.0
	for i, f := range frames {
		e := rms(f.Samples)
		energies[i] = e
		if e > peak {
			peak = e
		}
	}

	threshold := percentile(energies, cfg.Threshold*100)
	if floor := peak * peakFloor; threshold < floor {
		threshold = floor
	}

	return &energyClassifier{threshold: threshold}, nil
}

func (c *energyClassifier) Classify(f audio.Frame) (bool, error) {
	return rms(f.Samples) > c.threshold, nil
}

func rms(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// percentile returns the p-th percentile (0-100) of values, using the
// nearest-rank position on the sorted copy.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Round(p / 100 * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
