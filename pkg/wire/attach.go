package wire

import "github.com/OpenTraceLab/wirenet/pkg/geom"

// IsAttached reports whether pt lies on seg, within geom.Epsilon of its
// nearest point. Points beyond the ends only qualify near an endpoint.
func IsAttached(seg Segment, pt geom.Point) bool {
	nearest := geom.NearestPointOnSegment(seg.P0, seg.P1, pt)
	return nearest.DistSq(pt) < geom.EpsilonSq
}

// IsInteriorAttached reports whether pt touches seg away from both endpoints.
func IsInteriorAttached(seg Segment, pt geom.Point) bool {
	if !IsAttached(seg, pt) {
		return false
	}
	t := geom.ParametricPosition(seg.P0, seg.P1, pt)
	return t > geom.Epsilon && t < 1-geom.Epsilon
}

// SegmentsTouch reports whether any endpoint of a is attached to b or the
// other way round.
func SegmentsTouch(a, b Segment) bool {
	return IsAttached(a, b.P0) || IsAttached(a, b.P1) ||
		IsAttached(b, a.P0) || IsAttached(b, a.P1)
}

// wiresTouch reports whether any segment of a touches any segment of b.
func wiresTouch(a, b Wire) bool {
	for _, sa := range a.Segments {
		for _, sb := range b.Segments {
			if SegmentsTouch(sa, sb) {
				return true
			}
		}
	}
	return false
}
