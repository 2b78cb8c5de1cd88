// Package timeline projects session-relative segment offsets onto absolute
// wall-clock time and aligns recognition results against that projection.
package timeline

import (
	"fmt"
	"time"

	"github.com/datadigshawn/aiSpeech-2026/internal/segment"
	"github.com/datadigshawn/aiSpeech-2026/internal/session"
)

// IntegrityError reports a violated timeline invariant. It indicates a bug
// upstream rather than bad input data and is never silently repaired.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string {
	return "timeline integrity: " + e.Reason
}

// Entry is one segment carrying both its session-relative offset and its
// absolute wall-clock bounds.
type Entry struct {
	SegmentID     string
	OffsetMS      int64
	DurationMS    int64
	AbsoluteStart time.Time
	AbsoluteEnd   time.Time
}

// Timeline is the ordered, immutable segment list for one session. It is
// the canonical join key between audio chunks and recognition results.
type Timeline struct {
	SessionID string
	Reference time.Time
	Entries   []Entry
}

// Build computes absolute bounds for every segment from the session start.
// Segment offsets must already be sorted and non-overlapping; a violation
// fails with an IntegrityError rather than silently reordering.
func Build(sess *session.Session, segs []segment.Segment) (*Timeline, error) {
	if err := checkOrdered(segs); err != nil {
		return nil, err
	}

	entries := make([]Entry, len(segs))
	for i, seg := range segs {
		start := sess.Start.Add(time.Duration(seg.OffsetMS) * time.Millisecond)
		entries[i] = Entry{
			SegmentID:     seg.ID,
			OffsetMS:      seg.OffsetMS,
			DurationMS:    seg.DurationMS,
			AbsoluteStart: start,
			AbsoluteEnd:   start.Add(time.Duration(seg.DurationMS) * time.Millisecond),
		}
	}

	return &Timeline{
		SessionID: sess.ID,
		Reference: sess.Start,
		Entries:   entries,
	}, nil
}

func checkOrdered(segs []segment.Segment) error {
	for i, seg := range segs {
		if seg.OffsetMS < 0 || seg.DurationMS <= 0 {
			return &IntegrityError{Reason: fmt.Sprintf(
				"segment %s has invalid bounds (offset=%d, duration=%d)",
				seg.ID, seg.OffsetMS, seg.DurationMS)}
		}
		if i == 0 {
			continue
		}
		prev := segs[i-1]
		if seg.OffsetMS < prev.EndMS() {
			return &IntegrityError{Reason: fmt.Sprintf(
				"segments %s and %s overlap or are unsorted (%d < %d)",
				prev.ID, seg.ID, seg.OffsetMS, prev.EndMS())}
		}
	}
	return nil
}

// Empty reports whether the timeline holds no segments. An empty timeline
// is a valid terminal outcome, not an error.
func (t *Timeline) Empty() bool {
	return len(t.Entries) == 0
}

// entry looks up a segment by ID.
func (t *Timeline) entry(segmentID string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.SegmentID == segmentID {
			return e, true
		}
	}
	return Entry{}, false
}
