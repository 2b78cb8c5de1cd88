package store

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSessionRow() SessionRow {
	return SessionRow{
		ID:              "sess-1",
		SourceName:      "radio_20251201_140000.wav",
		SessionStart:    time.Date(2025, 12, 1, 14, 0, 0, 0, time.UTC),
		StartSource:     "filename",
		Mode:            "batch",
		SampleRate:      16000,
		Channels:        1,
		BitDepth:        16,
		DurationSeconds: 60.5,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := testStore(t)

	want := testSessionRow()
	if err := s.SaveSession(want); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := s.SessionByID("sess-1")
	if err != nil {
		t.Fatalf("session by id: %v", err)
	}
	if got == nil {
		t.Fatal("session not found")
	}

	if got.ID != want.ID || got.SourceName != want.SourceName {
		t.Errorf("got %s/%s, want %s/%s", got.ID, got.SourceName, want.ID, want.SourceName)
	}
	if got.StartSource != "filename" || got.Mode != "batch" {
		t.Errorf("metadata = %s/%s", got.StartSource, got.Mode)
	}
	if got.SampleRate != 16000 || got.Channels != 1 || got.BitDepth != 16 {
		t.Errorf("audio properties = %d/%d/%d", got.SampleRate, got.Channels, got.BitDepth)
	}
	if got.DurationSeconds != 60.5 {
		t.Errorf("duration = %v", got.DurationSeconds)
	}
	if delta := got.SessionStart.Sub(want.SessionStart); delta < -time.Millisecond || delta > time.Millisecond {
		t.Errorf("session start drifted by %v", delta)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created at not set")
	}
}

func TestSessionByIDMissing(t *testing.T) {
	s := testStore(t)

	got, err := s.SessionByID("nope")
	if err != nil {
		t.Fatalf("session by id: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestTimelineRoundTrip(t *testing.T) {
	s := testStore(t)
	if err := s.SaveSession(testSessionRow()); err != nil {
		t.Fatalf("save session: %v", err)
	}

	base := time.Date(2025, 12, 1, 14, 0, 0, 0, time.UTC)
	rows := []SegmentRow{
		{
			SessionID: "sess-1", SegmentID: "chunk_002",
			OffsetMS: 5000, DurationMS: 3000,
			AbsoluteStart: base.Add(5 * time.Second),
			AbsoluteEnd:   base.Add(8 * time.Second),
		},
		{
			SessionID: "sess-1", SegmentID: "chunk_001",
			OffsetMS: 0, DurationMS: 2000,
			AbsoluteStart: base,
			AbsoluteEnd:   base.Add(2 * time.Second),
		},
	}
	if err := s.SaveTimeline(rows); err != nil {
		t.Fatalf("save timeline: %v", err)
	}

	got, err := s.TimelineForSession("sess-1")
	if err != nil {
		t.Fatalf("timeline for session: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2", len(got))
	}

	// Ordered by offset regardless of insert order.
	if got[0].SegmentID != "chunk_001" || got[1].SegmentID != "chunk_002" {
		t.Errorf("order = %s, %s", got[0].SegmentID, got[1].SegmentID)
	}
	if got[1].OffsetMS != 5000 || got[1].DurationMS != 3000 {
		t.Errorf("segment bounds = %d/%d", got[1].OffsetMS, got[1].DurationMS)
	}
}

func TestSaveTimelineRejectsDuplicateSegment(t *testing.T) {
	s := testStore(t)
	if err := s.SaveSession(testSessionRow()); err != nil {
		t.Fatalf("save session: %v", err)
	}

	base := time.Now()
	row := SegmentRow{
		SessionID: "sess-1", SegmentID: "chunk_001",
		OffsetMS: 0, DurationMS: 1000,
		AbsoluteStart: base, AbsoluteEnd: base.Add(time.Second),
	}
	if err := s.SaveTimeline([]SegmentRow{row, row}); err == nil {
		t.Fatal("expected duplicate segment to fail")
	}

	// The transaction must have rolled back entirely.
	got, err := s.TimelineForSession("sess-1")
	if err != nil {
		t.Fatalf("timeline for session: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d segments after failed save, want 0", len(got))
	}
}

func TestEventsInRange(t *testing.T) {
	s := testStore(t)
	if err := s.SaveSession(testSessionRow()); err != nil {
		t.Fatalf("save session: %v", err)
	}

	base := time.Date(2025, 12, 1, 14, 0, 0, 0, time.UTC)
	conf := 0.91
	rows := []EventRow{
		{
			SessionID: "sess-1", SegmentID: "chunk_001", Model: "whisper",
			AbsoluteStart: base, AbsoluteEnd: base.Add(3 * time.Second),
			Transcript: "first", Confidence: &conf,
			TokensJSON: `[{"text":"first","absolute_start":"2025-12-01T14:00:00.000","absolute_end":"2025-12-01T14:00:01.000","clamped":false}]`,
		},
		{
			SessionID: "sess-1", SegmentID: "chunk_002", Model: "whisper",
			AbsoluteStart: base.Add(10 * time.Second), AbsoluteEnd: base.Add(13 * time.Second),
			Transcript: "second",
		},
		{
			SessionID: "sess-1", SegmentID: "chunk_001", Model: "other",
			AbsoluteStart: base, AbsoluteEnd: base.Add(3 * time.Second),
			Transcript: "wrong model",
		},
	}
	if err := s.SaveEvents(rows); err != nil {
		t.Fatalf("save events: %v", err)
	}

	// Half-open window covering only the first event, scoped to one model.
	got, err := s.EventsInRange("sess-1", "whisper", base, base.Add(10*time.Second))
	if err != nil {
		t.Fatalf("events in range: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	ev := got[0]
	if ev.SegmentID != "chunk_001" || ev.Transcript != "first" {
		t.Errorf("event = %s %q", ev.SegmentID, ev.Transcript)
	}
	if ev.Confidence == nil || math.Abs(*ev.Confidence-0.91) > 1e-9 {
		t.Errorf("confidence = %v", ev.Confidence)
	}
	if ev.TokensJSON == "" {
		t.Error("tokens JSON missing")
	}

	// The exclusive end bound admits the second event when widened.
	got, err = s.EventsInRange("sess-1", "whisper", base, base.Add(11*time.Second))
	if err != nil {
		t.Fatalf("events in range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[1].Transcript != "second" {
		t.Errorf("second event = %q", got[1].Transcript)
	}
	if got[1].Confidence != nil {
		t.Error("missing confidence should scan as nil")
	}
	if got[1].TokensJSON != "" {
		t.Error("missing tokens should scan as empty")
	}
}
