package wire

import "github.com/OpenTraceLab/wirenet/pkg/geom"

// Normalize removes segments covered by another segment, truncates colinear
// overlaps, re-derives the minimal edge set through a graph round trip and
// drops zero-length segments. w is not modified.
func Normalize(w Wire) Wire {
	segs := append([]Segment(nil), w.Segments...)
	removed := make([]bool, len(segs))

	for i := range segs {
		if removed[i] {
			continue
		}
		for j := range segs {
			if i == j || removed[j] {
				continue
			}
			seg0, seg1 := &segs[i], &segs[j]

			if !IsAttached(*seg0, seg1.P0) {
				continue
			}
			switch {
			case IsAttached(*seg0, seg1.P1):
				// seg1 lies inside seg0
				removed[j] = true
			case IsAttached(*seg1, seg0.P0):
				seg1.P0, seg1.Ref0 = seg0.P0, seg0.Ref0
			case IsAttached(*seg1, seg0.P1):
				seg1.P0, seg1.Ref0 = seg0.P1, seg0.Ref1
			}
		}
	}

	kept := make([]Segment, 0, len(segs))
	for i, s := range segs {
		if !removed[i] {
			kept = append(kept, s)
		}
	}

	out := BuildGraph(Wire{ID: w.ID, Segments: kept}).Wire()

	n := 0
	for _, s := range out.Segments {
		if s.LenSq() >= geom.EpsilonSq {
			out.Segments[n] = s
			n++
		}
	}
	out.Segments = out.Segments[:n]
	return out
}
