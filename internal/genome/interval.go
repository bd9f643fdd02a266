package genome

import "sort"

// IntervalIndex provides O(log n + k) overlap queries over a set of
// coordinate ranges using a sorted-slice approach. Features are indexed
// once after load and never modified.
type IntervalIndex struct {
	intervals []indexedInterval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[0..i]
}

type indexedInterval struct {
	start int64
	end   int64
	id    int
}

// Interval is one indexed range. ID is the caller's identifier for the
// underlying feature, typically a slice index.
type Interval struct {
	Start int64
	End   int64
	ID    int
}

// BuildIntervalIndex creates an index from a slice of intervals.
func BuildIntervalIndex(items []Interval) *IntervalIndex {
	if len(items) == 0 {
		return &IntervalIndex{}
	}

	intervals := make([]indexedInterval, len(items))
	for i, it := range items {
		intervals[i] = indexedInterval{start: it.Start, end: it.End, id: it.ID}
	}

	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Build prefix-max array: maxEnd[i] = max(end) for intervals[0..i].
	// The overlap scan walks downward, so the prune needs to know the
	// furthest reach of everything at or before position i.
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalIndex{intervals: intervals, maxEnd: maxEnd}
}

// Overlapping returns the IDs of all intervals intersecting [start, end].
func (x *IntervalIndex) Overlapping(start, end int64) []int {
	if len(x.intervals) == 0 {
		return nil
	}

	var result []int

	// Binary search: find the first interval with start > end.
	// All candidates are in [0, hi).
	hi := sort.Search(len(x.intervals), func(i int) bool {
		return x.intervals[i].start > end
	})

	for i := hi - 1; i >= 0; i-- {
		// Prune: if no interval in 0..i ends at or past start, none of
		// them can reach [start, end].
		if x.maxEnd[i] < start {
			break
		}
		if x.intervals[i].end >= start {
			result = append(result, x.intervals[i].id)
		}
	}

	return result
}

// At returns the IDs of all intervals containing pos.
func (x *IntervalIndex) At(pos int64) []int {
	return x.Overlapping(pos, pos)
}
