// Package audio handles WAV ingestion, downmixing, resampling, and frame
// iteration for the segmentation pipeline.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/wav"
)

// Source is one input recording. Immutable once read; Downmix and Resample
// return derived copies rather than mutating the receiver.
type Source struct {
	Name       string
	Path       string
	SampleRate int
	Channels   int
	BitDepth   int
	ModTime    time.Time

	// Samples holds PCM normalized to [-1, 1]. Interleaved when Channels > 1.
	Samples []float32
}

// ReadWAV decodes a WAV file into a Source.
func ReadWAV(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat audio file: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM buffer: %w", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	samples := normalize(buf.Data, bitDepth)

	return &Source{
		Name:       filepath.Base(path),
		Path:       path,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   bitDepth,
		ModTime:    info.ModTime(),
		Samples:    samples,
	}, nil
}

// normalize converts integer PCM to float32 in [-1, 1].
func normalize(data []int, bitDepth int) []float32 {
	scale := float32(int64(1) << (bitDepth - 1))
	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v) / scale
	}
	return out
}

// FrameCount returns the number of mono frames (samples per channel).
func (s *Source) FrameCount() int {
	if s.Channels == 0 {
		return 0
	}
	return len(s.Samples) / s.Channels
}

// Duration returns the recording length.
func (s *Source) Duration() time.Duration {
	if s.SampleRate == 0 {
		return 0
	}
	return time.Duration(s.FrameCount()) * time.Second / time.Duration(s.SampleRate)
}

// DurationSeconds returns the recording length in seconds.
func (s *Source) DurationSeconds() float64 {
	if s.SampleRate == 0 {
		return 0
	}
	return float64(s.FrameCount()) / float64(s.SampleRate)
}

// Downmix averages all channels into a mono copy. A mono source is returned
// unchanged.
func (s *Source) Downmix() *Source {
	if s.Channels <= 1 {
		return s
	}

	frames := s.FrameCount()
	mono := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < s.Channels; c++ {
			sum += s.Samples[i*s.Channels+c]
		}
		mono[i] = sum / float32(s.Channels)
	}

	out := *s
	out.Channels = 1
	out.Samples = mono
	return &out
}

// Resample returns a copy converted to the given rate using linear
// interpolation. The source must be mono.
func (s *Source) Resample(rate int) *Source {
	if rate == s.SampleRate || s.SampleRate == 0 {
		return s
	}

	n := len(s.Samples)
	target := int(float64(n) * float64(rate) / float64(s.SampleRate))
	resampled := make([]float32, target)
	if n > 0 {
		for i := range resampled {
			pos := float64(i) * float64(n-1) / float64(max(target-1, 1))
			lo := int(pos)
			hi := lo + 1
			if hi >= n {
				hi = n - 1
			}
			frac := float32(pos - float64(lo))
			resampled[i] = s.Samples[lo]*(1-frac) + s.Samples[hi]*frac
		}
	}

	out := *s
	out.SampleRate = rate
	out.Samples = resampled
	return &out
}
