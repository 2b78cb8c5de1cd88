package timeline

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// TokenOffset is a recognized token with offsets relative to its segment's
// own start.
type TokenOffset struct {
	Text          string `json:"text"`
	StartOffsetMS int64  `json:"start_offset_ms"`
	EndOffsetMS   int64  `json:"end_offset_ms"`
}

// Result is one segment's recognition output as returned by a back-end.
// Confidence and Tokens are optional. Err records a permanently failed
// recognition attempt; such a result still occupies its segment's slot so
// degraded runs stay observable.
type Result struct {
	SegmentID  string        `json:"segment_id"`
	Transcript string        `json:"transcript"`
	Confidence *float64      `json:"confidence,omitempty"`
	Tokens     []TokenOffset `json:"tokens,omitempty"`
	Err        string        `json:"error,omitempty"`
}

// Token is a recognized token projected onto absolute time.
type Token struct {
	Text          string
	AbsoluteStart time.Time
	AbsoluteEnd   time.Time
	Clamped       bool
}

// Event is one segment's recognition result on the absolute timeline.
type Event struct {
	SegmentID     string
	AbsoluteStart time.Time
	AbsoluteEnd   time.Time
	Transcript    string
	Confidence    *float64
	Tokens        []Token
}

// Events is the chronologically ordered event stream for one session and
// model. Read-only once built; regenerable at any time from the timeline
// plus raw recognition output.
type Events struct {
	SessionID string
	Model     string
	Items     []Event
}

// AlignStats counts per-item alignment issues. None of them abort a run.
type AlignStats struct {
	Matched       int
	Gaps          int
	ClampedTokens int
}

// Align projects recognition results onto absolute time. A result whose
// segment is unknown to the timeline is skipped with a warning; a token
// offset beyond its segment's duration is clamped to the segment end and
// flagged. Events come back sorted by absolute start.
func Align(t *Timeline, results map[string]Result, model string) (*Events, AlignStats) {
	var stats AlignStats

	items := make([]Event, 0, len(results))
	for segmentID, res := range results {
		entry, ok := t.entry(segmentID)
		if !ok {
			stats.Gaps++
			log.WithFields(log.Fields{
				"session_id": t.SessionID,
				"segment_id": segmentID,
				"model":      model,
			}).Warn("alignment gap: result references unknown segment")
			continue
		}

		ev := Event{
			SegmentID:     segmentID,
			AbsoluteStart: entry.AbsoluteStart,
			AbsoluteEnd:   entry.AbsoluteEnd,
			Transcript:    res.Transcript,
			Confidence:    res.Confidence,
		}

		for _, tok := range res.Tokens {
			projected, clamped := projectToken(entry, tok)
			if clamped {
				stats.ClampedTokens++
			}
			ev.Tokens = append(ev.Tokens, projected)
		}

		items = append(items, ev)
		stats.Matched++
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].AbsoluteStart.Equal(items[j].AbsoluteStart) {
			return items[i].SegmentID < items[j].SegmentID
		}
		return items[i].AbsoluteStart.Before(items[j].AbsoluteStart)
	})

	if stats.ClampedTokens > 0 {
		log.WithFields(log.Fields{
			"session_id": t.SessionID,
			"model":      model,
			"clamped":    stats.ClampedTokens,
		}).Warn("token offsets exceeded segment bounds and were clamped")
	}

	return &Events{SessionID: t.SessionID, Model: model, Items: items}, stats
}

// projectToken maps a segment-relative token onto absolute time, clamping
// offsets that land outside the segment.
func projectToken(entry Entry, tok TokenOffset) (Token, bool) {
	clamped := false

	start := entry.AbsoluteStart.Add(time.Duration(tok.StartOffsetMS) * time.Millisecond)
	if tok.StartOffsetMS > entry.DurationMS {
		start = entry.AbsoluteEnd
		clamped = true
	}

	end := entry.AbsoluteStart.Add(time.Duration(tok.EndOffsetMS) * time.Millisecond)
	if tok.EndOffsetMS > entry.DurationMS {
		end = entry.AbsoluteEnd
		clamped = true
	}

	return Token{
		Text:          tok.Text,
		AbsoluteStart: start,
		AbsoluteEnd:   end,
		Clamped:       clamped,
	}, clamped
}

// Query returns the events whose absolute start falls within [start, end).
// Items are already time-sorted, so this is a binary-search lookup.
func (e *Events) Query(start, end time.Time) []Event {
	first := sort.Search(len(e.Items), func(i int) bool {
		return !e.Items[i].AbsoluteStart.Before(start)
	})

	var out []Event
	for i := first; i < len(e.Items) && e.Items[i].AbsoluteStart.Before(end); i++ {
		out = append(out, e.Items[i])
	}
	return out
}
