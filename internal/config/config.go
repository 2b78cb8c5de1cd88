// Package config loads pipeline settings from the environment, with an
// optional .env file.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable for a segmentation run.
type Config struct {
	Engine       string  `envconfig:"VAD_ENGINE" default:"energy"`
	Threshold    float64 `envconfig:"VAD_THRESHOLD" default:"0.5"`
	MinSpeechMS  int     `envconfig:"MIN_SPEECH_MS" default:"300"`
	MinSilenceMS int     `envconfig:"MIN_SILENCE_MS" default:"500"`
	MaxChunkMS   int     `envconfig:"MAX_CHUNK_MS" default:"50000"`
	FrameMS      int     `envconfig:"FRAME_MS" default:"30"`
	ModelPath    string  `envconfig:"SILERO_MODEL_PATH" default:"silero_vad.onnx"`

	SocketPath string `envconfig:"RECOGNIZER_SOCKET"`
	Backend    string `envconfig:"RECOGNIZER_NAME" default:"stt"`
	Language   string `envconfig:"RECOGNIZER_LANGUAGE" default:"cmn-Hant-TW"`

	Workers        int `envconfig:"RECOGNIZE_WORKERS" default:"4"`
	FileWorkers    int `envconfig:"FILE_WORKERS" default:"2"`
	CallTimeoutSec int `envconfig:"RECOGNIZE_TIMEOUT_SEC" default:"120"`
	Retries        int `envconfig:"RECOGNIZE_RETRIES" default:"2"`

	Mode      string `envconfig:"PROCESSING_MODE" default:"batch"`
	DBPath    string `envconfig:"DB_PATH" default:"aispeech.sqlite"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"out"`
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("aispeech", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
