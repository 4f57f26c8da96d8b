// Package testutil provides shared test fixtures and helpers.
package testutil

import (
	"math"
	"testing"

	"github.com/sightline-data/linedup/lines"
)

// NearDuplicateSegments returns three horizontal segments where the first two
// lie half a unit apart and the third sits well away from both. Default
// tuning groups them as {0,1} and {2}.
func NearDuplicateSegments() []lines.Segment {
	return []lines.Segment{
		{X1: 0, Y1: 0, X2: 10, Y2: 0},
		{X1: 0, Y1: 0.5, X2: 10, Y2: 0.5},
		{X1: 0, Y1: 20, X2: 10, Y2: 20},
	}
}

// FloatEquals reports whether a and b are within tol of each other.
func FloatEquals(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// AssertSegmentsEqual checks two segment slices for coordinate equality
// within tol.
func AssertSegmentsEqual(t *testing.T, got, want []lines.Segment, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("segment count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		g, w := got[i], want[i]
		if !FloatEquals(g.X1, w.X1, tol) || !FloatEquals(g.Y1, w.Y1, tol) ||
			!FloatEquals(g.X2, w.X2, tol) || !FloatEquals(g.Y2, w.Y2, tol) {
			t.Errorf("segment %d = %+v, want %+v", i, g, w)
		}
	}
}
