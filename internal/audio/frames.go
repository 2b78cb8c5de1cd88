package audio

// Frame is one fixed-duration window of mono samples, indexed from zero in
// stream order.
type Frame struct {
	Index   int
	Samples []float32
}

// FrameSamples returns the number of samples in a frame of the given
// duration at the source's rate.
func (s *Source) FrameSamples(frameMS int) int {
	return s.SampleRate * frameMS / 1000
}

// Frames slices the source into consecutive non-overlapping frames of
// frameMS milliseconds. A trailing partial frame is zero-padded to full
// length so every decision covers the same span of time. The source must be
// mono.
func (s *Source) Frames(frameMS int) []Frame {
	size := s.FrameSamples(frameMS)
	if size <= 0 || len(s.Samples) == 0 {
		return nil
	}

	n := (len(s.Samples) + size - 1) / size
	frames := make([]Frame, 0, n)
	for i := 0; i < n; i++ {
		start := i * size
		end := start + size
		if end <= len(s.Samples) {
			frames = append(frames, Frame{Index: i, Samples: s.Samples[start:end]})
			continue
		}
		padded := make([]float32, size)
		copy(padded, s.Samples[start:])
		frames = append(frames, Frame{Index: i, Samples: padded})
	}
	return frames
}
