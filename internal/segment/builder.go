package segment

// BuildConfig holds the hysteresis parameters for the frame scan.
type BuildConfig struct {
	FrameMS      int
	MinSpeechMS  int
	MinSilenceMS int
}

func (c BuildConfig) minSilenceFrames() int {
	n := c.MinSilenceMS / c.FrameMS
	if n < 1 {
		n = 1
	}
	return n
}

// scanState carries the hysteresis state between frames. It is a plain
// value so a single step can be exercised without constructing audio.
type scanState struct {
	inSpeech   bool
	startFrame int
	silenceRun int
}

// run is a candidate speech run in frame indexes, end exclusive.
type run struct {
	start, end int
}

// step advances the scan by one frame decision. It returns the next state
// and, when a speech run just closed, the completed run. A silence gap
// shorter than minSilenceFrames is absorbed into the run rather than
// splitting it.
func step(st scanState, frame int, speech bool, minSilenceFrames int) (scanState, run, bool) {
	if speech {
		if !st.inSpeech {
			st.inSpeech = true
			st.startFrame = frame
		}
		st.silenceRun = 0
		return st, run{}, false
	}

	if !st.inSpeech {
		return st, run{}, false
	}

	st.silenceRun++
	if st.silenceRun < minSilenceFrames {
		return st, run{}, false
	}

	// The run ended just before the silence run began.
	r := run{start: st.startFrame, end: frame - minSilenceFrames + 1}
	return scanState{}, r, true
}

// Build scans ordered frame decisions and emits candidate speech intervals.
// Candidates shorter than MinSpeechMS are discarded entirely; they are not
// merged into neighbors. All durations are whole milliseconds computed from
// frame index times frame duration.
func Build(decisions []bool, cfg BuildConfig) []Interval {
	minSilence := cfg.minSilenceFrames()

	var intervals []Interval
	var st scanState
	for i, speech := range decisions {
		next, r, done := step(st, i, speech, minSilence)
		st = next
		if done {
			if iv, ok := retain(r, cfg); ok {
				intervals = append(intervals, iv)
			}
		}
	}

	// Flush a run still open at end of stream, up to the last frame.
	if st.inSpeech {
		if iv, ok := retain(run{start: st.startFrame, end: len(decisions)}, cfg); ok {
			intervals = append(intervals, iv)
		}
	}

	return intervals
}

// retain converts a frame run to a millisecond interval if it meets the
// minimum speech duration.
func retain(r run, cfg BuildConfig) (Interval, bool) {
	iv := Interval{
		OffsetMS:   int64(r.start) * int64(cfg.FrameMS),
		DurationMS: int64(r.end-r.start) * int64(cfg.FrameMS),
	}
	if iv.DurationMS < int64(cfg.MinSpeechMS) {
		return Interval{}, false
	}
	return iv, true
}
