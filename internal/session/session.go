// Package session establishes the wall-clock time base for one recording:
// a session identifier, a best-effort recording start time, and the audio
// properties every later offset calculation refers back to.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datadigshawn/aiSpeech-2026/internal/audio"
)

// TimeLayout is the fixed millisecond-precision layout used for every
// persisted timestamp, so identical inputs marshal byte-identically.
const TimeLayout = "2006-01-02T15:04:05.000"

// Start time sources recorded alongside the session.
const (
	StartFromFilename = "filename"
	StartFromModTime  = "mtime"
)

// Properties describes the audio of the source recording.
type Properties struct {
	SampleRate      int
	Channels        int
	BitDepth        int
	DurationSeconds float64
}

// Session is one segmentation run over one recording. Never mutated after
// creation.
type Session struct {
	ID          string
	SourceName  string
	Start       time.Time
	StartSource string
	Mode        string
	Audio       Properties
}

// Option customizes session creation.
type Option func(*Session)

// WithID supplies a session identifier instead of generating one. Used when
// resuming or re-aligning a previously segmented recording.
func WithID(id string) Option {
	return func(s *Session) { s.ID = id }
}

// WithMode sets the processing mode tag.
func WithMode(mode string) Option {
	return func(s *Session) { s.Mode = mode }
}

// New derives the session time base from a recording. The start time is
// advisory metadata: a capture timestamp encoded in the filename wins, and
// the file's modification time is the fallback when no such timestamp
// parses.
func New(src *audio.Source, opts ...Option) *Session {
	s := &Session{
		ID:         uuid.NewString(),
		SourceName: src.Name,
		Mode:       "batch",
		Audio: Properties{
			SampleRate:      src.SampleRate,
			Channels:        src.Channels,
			BitDepth:        src.BitDepth,
			DurationSeconds: src.DurationSeconds(),
		},
	}

	if start, ok := parseStartFromName(src.Name); ok {
		s.Start = start
		s.StartSource = StartFromFilename
	} else {
		s.Start = src.ModTime
		s.StartSource = StartFromModTime
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// parseStartFromName extracts a capture timestamp from names like
// radio_20251201_140000.wav.
func parseStartFromName(name string) (time.Time, bool) {
	stem := name
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}

	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return time.Time{}, false
	}

	for i := 0; i+1 < len(parts); i++ {
		date, clock := parts[i], parts[i+1]
		if len(date) != 8 || len(clock) != 6 {
			continue
		}
		t, err := time.ParseInLocation("20060102150405", date+clock, time.Local)
		if err != nil {
			continue
		}
		return t, true
	}
	return time.Time{}, false
}
