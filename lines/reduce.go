package lines

// RemoveSimilarLines collapses each group of near-duplicate segments to a
// single representative, preserving group discovery order. With keepLongest
// the representative is the group member with the greatest endpoint-to-
// endpoint length (first encountered wins ties); otherwise it is the group's
// founder. The output length always equals the number of groups; no segment
// is ever synthesized or extended.
func RemoveSimilarLines(segments []Segment, threshold float64, method Method, keepLongest bool, params DistanceParams) ([]Segment, error) {
	groups, err := FindSimilarGroups(segments, threshold, method, params)
	if err != nil {
		return nil, err
	}
	return ReduceGroups(segments, groups, keepLongest), nil
}

// ReduceGroups picks one representative per group from an existing grouping.
// Group indices must be valid for segments.
func ReduceGroups(segments []Segment, groups [][]int, keepLongest bool) []Segment {
	reduced := make([]Segment, 0, len(groups))
	for _, group := range groups {
		best := group[0]
		if keepLongest {
			bestLen := segments[best].Length()
			for _, idx := range group[1:] {
				if l := segments[idx].Length(); l > bestLen {
					best = idx
					bestLen = l
				}
			}
		}
		reduced = append(reduced, segments[best])
	}
	return reduced
}
