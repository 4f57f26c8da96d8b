package lines

import "math"

// Point is a 2D point in the image/world plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a finite line segment defined by two endpoints, in the order
// produced by the upstream detector. Endpoint order carries no meaning for
// distance computation but is preserved for length and midpoint calculations.
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Length returns the Euclidean distance between the segment's endpoints.
func (s Segment) Length() float64 {
	dx := s.X2 - s.X1
	dy := s.Y2 - s.Y1
	return math.Sqrt(dx*dx + dy*dy)
}

// Midpoint returns the arithmetic mean of the segment's endpoints.
func (s Segment) Midpoint() Point {
	return Point{
		X: (s.X1 + s.X2) / 2,
		Y: (s.Y1 + s.Y2) / 2,
	}
}

// CanonicalLine holds the coefficients of the infinite line Ax + By + C = 0
// through a segment's endpoints. For a non-degenerate source segment the
// coefficients are unit-normalized (A²+B² = 1). The sign of (A, B, C) follows
// the endpoint order of the source segment and is not otherwise canonicalized.
type CanonicalLine struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// Canonical converts a segment to the canonical line equation through its
// endpoints: A = y2−y1, B = x1−x2, C = x2·y1−x1·y2, divided by sqrt(A²+B²)
// when that norm is positive. A zero-length segment yields the degenerate
// line (0, 0, 0); no error is raised for it.
func Canonical(s Segment) CanonicalLine {
	a := s.Y2 - s.Y1
	b := s.X1 - s.X2
	c := s.X2*s.Y1 - s.X1*s.Y2

	norm := math.Sqrt(a*a + b*b)
	if norm > 0 {
		a /= norm
		b /= norm
		c /= norm
	}

	return CanonicalLine{A: a, B: b, C: c}
}

// IsDegenerate reports whether the line came from a zero-length segment.
func (l CanonicalLine) IsDegenerate() bool {
	return l.A == 0 && l.B == 0
}

// Angle returns the line's angle in radians, always reduced into [0, π).
// A vertical line (B == 0) maps exactly to π/2.
func (l CanonicalLine) Angle() float64 {
	if l.B == 0 {
		return math.Pi / 2
	}
	angle := math.Mod(math.Atan2(-l.A, l.B), math.Pi)
	if angle < 0 {
		angle += math.Pi
	}
	return angle
}

// PointToLine returns the perpendicular distance from p to the line:
// |A·x + B·y + C| / sqrt(A²+B²). The caller must supply a non-degenerate
// line; a (0,0,0) line divides zero by zero and the NaN propagates to the
// result rather than being swallowed here.
func PointToLine(p Point, l CanonicalLine) float64 {
	return math.Abs(l.A*p.X+l.B*p.Y+l.C) / math.Sqrt(l.A*l.A+l.B*l.B)
}
