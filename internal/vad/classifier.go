// Package vad classifies fixed-duration audio frames as speech or
// non-speech behind a common interface over interchangeable detection
// strategies.
package vad

import (
	"fmt"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
)

// Engine selects a detection strategy.
type Engine string

const (
	// EngineEnergy is the fixed-window RMS energy detector.
	EngineEnergy Engine = "energy"
	// EngineSilero is the model-based probability detector.
	EngineSilero Engine = "silero"
)

// CanonicalRate is the sample rate the model-based strategy operates at.
// Other rates must be resampled upstream.
const CanonicalRate = 16000

// Config holds detector settings shared by all strategies.
type Config struct {
	Engine       Engine
	Threshold    float64 // 0.0 - 1.0
	MinSpeechMS  int
	MinSilenceMS int
	MaxChunkMS   int
	FrameMS      int    // 10, 20, or 30
	ModelPath    string // ONNX model for the silero engine
}

// ConfigError reports an invalid or unsupported detector configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("detector config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration before any segmentation work begins.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineEnergy, EngineSilero:
	default:
		return &ConfigError{Field: "engine", Reason: fmt.Sprintf("unknown engine %q", c.Engine)}
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return &ConfigError{Field: "threshold", Reason: fmt.Sprintf("%v out of range [0,1]", c.Threshold)}
	}
	switch c.FrameMS {
	case 10, 20, 30:
	default:
		return &ConfigError{Field: "frame_ms", Reason: fmt.Sprintf("%d not one of 10/20/30", c.FrameMS)}
	}
	if c.MinSpeechMS <= 0 {
		return &ConfigError{Field: "min_speech_ms", Reason: "must be positive"}
	}
	if c.MinSilenceMS <= 0 {
		return &ConfigError{Field: "min_silence_ms", Reason: "must be positive"}
	}
	if c.MaxChunkMS <= 0 {
		return &ConfigError{Field: "max_chunk_ms", Reason: "must be positive"}
	}
	return nil
}

// Classifier decides whether one frame contains speech. Frames are
// presented in stream order at a fixed cadence; both strategies produce
// decisions at the same cadence so downstream code is detector-agnostic.
type Classifier interface {
	Classify(f audio.Frame) (bool, error)
}

// New builds the classifier for cfg.Engine, calibrated against src. The
// source must already be mono.
func New(cfg Config, src *audio.Source) (Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src.Channels != 1 {
		return nil, &ConfigError{Field: "source", Reason: fmt.Sprintf("expected mono input, got %d channels", src.Channels)}
	}

	switch cfg.Engine {
	case EngineEnergy:
		return newEnergy(cfg, src)
	case EngineSilero:
		return newSilero(cfg, src)
	}
	return nil, &ConfigError{Field: "engine", Reason: fmt.Sprintf("unknown engine %q", cfg.Engine)}
}
