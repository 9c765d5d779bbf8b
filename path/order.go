package path

import "bytes"

// Less implements the total order over paths that the patch engine sorts
// updates by (spec §4.3): segment-wise comparison, key segments before
// index segments at the same position, keys compared lexicographically,
// indices compared numerically, and a path that ends (a leaf) sorting
// before a longer path sharing its prefix (a child of that leaf). A path
// that fails to parse falls back to a raw byte compare against the other,
// so a malformed path still has a deterministic place in the sort and
// doesn't panic or hang.
func Less(a, b []byte) bool {
	for {
		segA, restA, okA := ParseSegment(a)
		segB, restB, okB := ParseSegment(b)

		switch {
		case !okA && !okB:
			return bytes.Compare(a, b) < 0
		case !okA:
			return bytes.Compare(a, b) < 0
		case !okB:
			return bytes.Compare(a, b) < 0
		}

		if c := compareSegment(segA, segB); c != 0 {
			return c < 0
		}
		a, b = restA, restB
	}
}

// Equal reports whether two paths parse to the same segment sequence.
func Equal(a, b []byte) bool {
	for {
		segA, restA, okA := ParseSegment(a)
		segB, restB, okB := ParseSegment(b)
		if len(a) == 0 && len(b) == 0 {
			return true
		}
		if !okA || !okB {
			return bytes.Equal(a, b)
		}
		if compareSegment(segA, segB) != 0 {
			return false
		}
		a, b = restA, restB
	}
}

func compareSegment(a, b Segment) int {
	if a.Kind != b.Kind {
		if a.Kind == SegmentKey {
			return -1
		}
		return 1
	}
	if a.Kind == SegmentKey {
		return bytes.Compare(a.Key, b.Key)
	}
	switch {
	case a.Index < b.Index:
		return -1
	case a.Index > b.Index:
		return 1
	default:
		return 0
	}
}

// HasPrefix reports whether p begins with the segment sequence of prefix.
func HasPrefix(p, prefix []byte) bool {
	for len(prefix) > 0 {
		segP, restP, okP := ParseSegment(p)
		segPre, restPre, okPre := ParseSegment(prefix)
		if !okP || !okPre {
			return false
		}
		if compareSegment(segP, segPre) != 0 {
			return false
		}
		p, prefix = restP, restPre
	}
	return true
}
