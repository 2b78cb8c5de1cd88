// Package segment turns ordered frame decisions into speech segments:
// a hysteresis scan merges flickery decisions into coarse intervals, a
// splitter caps interval duration, and extraction writes per-segment WAV
// chunks.
package segment

import "fmt"

// Interval is a span of the source recording in whole milliseconds
// relative to the recording start.
type Interval struct {
	OffsetMS   int64
	DurationMS int64
}

// EndMS returns the exclusive end of the interval.
func (iv Interval) EndMS() int64 {
	return iv.OffsetMS + iv.DurationMS
}

// Segment is one speech interval eligible for independent recognition.
type Segment struct {
	Interval

	ID        string
	Speech    bool
	AudioPath string // set once the chunk has been extracted
}

// Finalize assigns sequential chunk identifiers to intervals, in order.
func Finalize(intervals []Interval) []Segment {
	segs := make([]Segment, len(intervals))
	for i, iv := range intervals {
		segs[i] = Segment{
			Interval: iv,
			ID:       fmt.Sprintf("chunk_%03d", i+1),
			Speech:   true,
		}
	}
	return segs
}
