package timeline

import (
	"github.com/datadigshawn/aiSpeech-2026/internal/session"
)

// Record is the persisted timeline, ordered by offset.
type Record struct {
	SessionID     string        `json:"session_id"`
	ReferenceTime string        `json:"reference_time"`
	Segments      []EntryRecord `json:"segments"`
}

// EntryRecord is one timeline segment in record form.
type EntryRecord struct {
	SegmentID     string `json:"segment_id"`
	OffsetMS      int64  `json:"offset_ms"`
	DurationMS    int64  `json:"duration_ms"`
	AbsoluteStart string `json:"absolute_start"`
	AbsoluteEnd   string `json:"absolute_end"`
}

// Record returns the serializable form of the timeline.
func (t *Timeline) Record() Record {
	segs := make([]EntryRecord, len(t.Entries))
	for i, e := range t.Entries {
		segs[i] = EntryRecord{
			SegmentID:     e.SegmentID,
			OffsetMS:      e.OffsetMS,
			DurationMS:    e.DurationMS,
			AbsoluteStart: e.AbsoluteStart.Format(session.TimeLayout),
			AbsoluteEnd:   e.AbsoluteEnd.Format(session.TimeLayout),
		}
	}
	return Record{
		SessionID:     t.SessionID,
		ReferenceTime: t.Reference.Format(session.TimeLayout),
		Segments:      segs,
	}
}

// EventsRecord is the persisted aligned event stream, ordered by absolute
// start.
type EventsRecord struct {
	SessionID string        `json:"session_id"`
	Model     string        `json:"model"`
	Events    []EventRecord `json:"events"`
}

// EventRecord is one aligned event in record form.
type EventRecord struct {
	SegmentID     string        `json:"segment_id"`
	AbsoluteStart string        `json:"absolute_start"`
	AbsoluteEnd   string        `json:"absolute_end"`
	Transcript    string        `json:"transcript"`
	Confidence    *float64      `json:"confidence,omitempty"`
	Tokens        []TokenRecord `json:"tokens,omitempty"`
}

// TokenRecord is one projected token in record form.
type TokenRecord struct {
	Text          string `json:"text"`
	AbsoluteStart string `json:"absolute_start"`
	AbsoluteEnd   string `json:"absolute_end"`
	Clamped       bool   `json:"clamped"`
}

// Record returns the serializable form of the event stream.
func (e *Events) Record() EventsRecord {
	events := make([]EventRecord, len(e.Items))
	for i, ev := range e.Items {
		rec := EventRecord{
			SegmentID:     ev.SegmentID,
			AbsoluteStart: ev.AbsoluteStart.Format(session.TimeLayout),
			AbsoluteEnd:   ev.AbsoluteEnd.Format(session.TimeLayout),
			Transcript:    ev.Transcript,
			Confidence:    ev.Confidence,
		}
		for _, tok := range ev.Tokens {
			rec.Tokens = append(rec.Tokens, TokenRecord{
				Text:          tok.Text,
				AbsoluteStart: tok.AbsoluteStart.Format(session.TimeLayout),
				AbsoluteEnd:   tok.AbsoluteEnd.Format(session.TimeLayout),
				Clamped:       tok.Clamped,
			})
		}
		events[i] = rec
	}
	return EventsRecord{SessionID: e.SessionID, Model: e.Model, Events: events}
}
