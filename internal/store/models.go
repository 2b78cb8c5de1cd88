// Package store persists session, timeline, and aligned-event records in
// SQLite.
package store

import "time"

// SessionRow is one persisted segmentation session.
type SessionRow struct {
	ID              string
	SourceName      string
	SessionStart    time.Time
	StartSource     string
	Mode            string
	SampleRate      int
	Channels        int
	BitDepth        int
	DurationSeconds float64
	CreatedAt       time.Time
}

// SegmentRow is one timeline segment with absolute bounds.
type SegmentRow struct {
	SessionID     string
	SegmentID     string
	OffsetMS      int64
	DurationMS    int64
	AbsoluteStart time.Time
	AbsoluteEnd   time.Time
}

// EventRow is one aligned recognition event. Tokens are stored as a JSON
// array in projected form.
type EventRow struct {
	SessionID     string
	SegmentID     string
	Model         string
	AbsoluteStart time.Time
	AbsoluteEnd   time.Time
	Transcript    string
	Confidence    *float64
	TokensJSON    string
}
