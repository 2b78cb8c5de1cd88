package vad

import (
	"fmt"

	"github.com/streamer45/silero-vad-go/speech"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
)

// sileroClassifier answers per-frame decisions from speech spans detected
// by the Silero model in a single pass over the recording.
type sileroClassifier struct {
	spans        []span
	frameSamples int
}

// span is a half-open range of sample indexes judged to contain speech.
type span struct {
	start, end int
}

func newSilero(cfg Config, src *audio.Source) (*sileroClassifier, error) {
	if src.SampleRate != CanonicalRate {
		return nil, &ConfigError{
			Field:  "sample_rate",
			Reason: fmt.Sprintf("silero engine requires %d Hz, got %d (resample upstream)", CanonicalRate, src.SampleRate),
		}
	}

	sd, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            cfg.ModelPath,
		SampleRate:           CanonicalRate,
		Threshold:            float32(cfg.Threshold),
		MinSilenceDurationMs: cfg.MinSilenceMS,
		SpeechPadMs:          0,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech detector: %w", err)
	}
	defer sd.Destroy()

	segs, err := sd.Detect(src.Samples)
	if err != nil {
		return nil, fmt.Errorf("detect speech spans: %w", err)
	}

	return &sileroClassifier{
		spans:        spansFromSegments(segs, src.SampleRate, len(src.Samples)),
		frameSamples: src.FrameSamples(cfg.FrameMS),
	}, nil
}

// Classify reports whether the frame's midpoint falls inside a detected
// speech span.
func (c *sileroClassifier) Classify(f audio.Frame) (bool, error) {
	mid := f.Index*c.frameSamples + c.frameSamples/2
	return containsSample(c.spans, mid), nil
}

// spansFromSegments converts model output to sample ranges. A segment with
// a zero or negative end runs to the end of the audio; inverted segments
// are dropped.
func spansFromSegments(segs []speech.Segment, sampleRate, totalSamples int) []span {
	spans := make([]span, 0, len(segs))
	for _, seg := range segs {
		start := int(seg.SpeechStartAt * float64(sampleRate))
		end := totalSamples
		if seg.SpeechEndAt > 0 {
			end = int(seg.SpeechEndAt * float64(sampleRate))
		}
		if start < 0 {
			start = 0
		}
		if end > totalSamples {
			end = totalSamples
		}
		if start >= end {
			continue
		}
		spans = append(spans, span{start: start, end: end})
	}
	return spans
}

func containsSample(spans []span, idx int) bool {
	for _, sp := range spans {
		if idx >= sp.start && idx < sp.end {
			return true
		}
	}
	return false
}
