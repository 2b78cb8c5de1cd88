package segment

// Split divides an interval longer than maxMS into near-equal sub-intervals
// that exactly tile the original: no gap, no overlap, and the final
// sub-interval's end equals the original end. An interval within the limit
// passes through unchanged.
func Split(iv Interval, maxMS int64) []Interval {
	if iv.DurationMS <= maxMS {
		return []Interval{iv}
	}

	n := (iv.DurationMS + maxMS - 1) / maxMS
	out := make([]Interval, 0, n)
	for k := int64(0); k < n; k++ {
		// Integer boundary math keeps repeated rounding from drifting:
		// boundary k is offset + dur*k/n, so boundary n is exactly the end.
		start := iv.OffsetMS + iv.DurationMS*k/n
		end := iv.OffsetMS + iv.DurationMS*(k+1)/n
		out = append(out, Interval{OffsetMS: start, DurationMS: end - start})
	}
	return out
}

// SplitAll applies Split across an ordered interval list, preserving order.
func SplitAll(intervals []Interval, maxMS int64) []Interval {
	out := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		out = append(out, Split(iv, maxMS)...)
	}
	return out
}
