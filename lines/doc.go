// Package lines clusters near-duplicate line segments and reduces each
// cluster to a single representative segment.
//
// A line detector (Hough transform or similar) typically reports the same
// physical edge several times with small offsets. This package scores the
// pairwise dissimilarity of the detected segments under a selectable method,
// groups segments that fall within a threshold of a group founder, and keeps
// one existing segment per group. It is an O(N²) method intended for the
// segment counts a single frame produces; there is no spatial index.
//
// The entry points are DistanceMatrix, FindSimilarGroups and
// RemoveSimilarLines, all pure functions over their inputs.
package lines
