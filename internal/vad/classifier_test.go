package vad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
)

func validConfig() Config {
	return Config{
		Engine:       EngineEnergy,
		Threshold:    0.5,
		MinSpeechMS:  300,
		MinSilenceMS: 500,
		MaxChunkMS:   50000,
		FrameMS:      30,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid energy", mutate: func(c *Config) {}},
		{name: "valid silero", mutate: func(c *Config) { c.Engine = EngineSilero }},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.Engine = "webrtc" },
			wantErr: "engine",
		},
		{
			name:    "threshold too high",
			mutate:  func(c *Config) { c.Threshold = 1.5 },
			wantErr: "threshold",
		},
		{
			name:    "threshold negative",
			mutate:  func(c *Config) { c.Threshold = -0.1 },
			wantErr: "threshold",
		},
		{
			name:    "bad frame duration",
			mutate:  func(c *Config) { c.FrameMS = 25 },
			wantErr: "frame_ms",
		},
		{
			name:    "zero min speech",
			mutate:  func(c *Config) { c.MinSpeechMS = 0 },
			wantErr: "min_speech_ms",
		},
		{
			name:    "zero min silence",
			mutate:  func(c *Config) { c.MinSilenceMS = 0 },
			wantErr: "min_silence_ms",
		},
		{
			name:    "zero max chunk",
			mutate:  func(c *Config) { c.MaxChunkMS = 0 },
			wantErr: "max_chunk_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantErr, ce.Field)
		})
	}
}

func TestNewRejectsStereoSource(t *testing.T) {
	src := &audio.Source{SampleRate: 16000, Channels: 2, Samples: make([]float32, 320)}

	_, err := New(validConfig(), src)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "source", ce.Field)
}

func TestNewSileroRequiresCanonicalRate(t *testing.T) {
	cfg := validConfig()
	cfg.Engine = EngineSilero
	src := &audio.Source{SampleRate: 8000, Channels: 1, Samples: make([]float32, 240)}

	_, err := New(cfg, src)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sample_rate", ce.Field)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "threshold", Reason: "out of range"}
	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "out of range")
}
