// Package recognize is the boundary to external recognition back-ends: a
// pluggable Recognizer interface, an NDJSON socket client, and a bounded
// worker pool that runs recognition per segment with timeouts and retries.
package recognize

import (
	"context"
	"errors"

	"github.com/datadigshawn/aiSpeech-2026/internal/timeline"
)

// Request identifies one segment to recognize.
type Request struct {
	SegmentID  string `json:"segmentId"`
	AudioPath  string `json:"audioPath"`
	SampleRate int    `json:"sampleRate,omitempty"`
	Language   string `json:"language,omitempty"`
}

// Recognizer is a pluggable recognition back-end. Implementations are
// opaque services that accept an audio segment and return a transcript plus
// optional per-token offsets and confidence.
type Recognizer interface {
	Recognize(ctx context.Context, req Request) (timeline.Result, error)
	Name() string
}

// TransientError marks a failure worth retrying, such as a dropped
// connection or a back-end timeout.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient recognition failure: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
