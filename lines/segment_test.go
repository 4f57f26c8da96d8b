package lines

import (
	"math"
	"testing"
)

func floatEquals(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCanonical_Normalized(t *testing.T) {
	segments := []Segment{
		{X1: 0, Y1: 0, X2: 10, Y2: 0},
		{X1: 0, Y1: 0, X2: 0, Y2: 5},
		{X1: 1, Y1: 2, X2: 3, Y2: 7},
		{X1: -4.5, Y1: 2.25, X2: 8, Y2: -3},
		{X1: 100, Y1: 100, X2: 100.5, Y2: 99.5},
	}

	for _, s := range segments {
		c := Canonical(s)
		norm := c.A*c.A + c.B*c.B
		if !floatEquals(norm, 1.0, 1e-12) {
			t.Errorf("Canonical(%+v): A^2+B^2 = %v, want 1", s, norm)
		}
	}
}

func TestCanonical_OnLine(t *testing.T) {
	// Both endpoints must satisfy Ax+By+C = 0.
	s := Segment{X1: 1, Y1: 2, X2: 3, Y2: 7}
	c := Canonical(s)

	for _, p := range []Point{{X: s.X1, Y: s.Y1}, {X: s.X2, Y: s.Y2}} {
		if v := c.A*p.X + c.B*p.Y + c.C; !floatEquals(v, 0, 1e-12) {
			t.Errorf("endpoint %+v not on canonical line: residual %v", p, v)
		}
	}
}

func TestCanonical_DegenerateSegment(t *testing.T) {
	c := Canonical(Segment{X1: 3, Y1: 4, X2: 3, Y2: 4})
	if c.A != 0 || c.B != 0 || c.C != 0 {
		t.Errorf("zero-length segment = %+v, want (0,0,0)", c)
	}
	if !c.IsDegenerate() {
		t.Error("expected IsDegenerate() for zero-length segment")
	}
}

func TestAngle_Range(t *testing.T) {
	segments := []Segment{
		{X1: 0, Y1: 0, X2: 1, Y2: 0},
		{X1: 1, Y1: 0, X2: 0, Y2: 0}, // reversed horizontal
		{X1: 0, Y1: 0, X2: 1, Y2: 1},
		{X1: 1, Y1: 1, X2: 0, Y2: 0}, // reversed diagonal
		{X1: 0, Y1: 0, X2: -1, Y2: 2},
		{X1: 5, Y1: -3, X2: -2, Y2: -9},
	}

	for _, s := range segments {
		angle := Canonical(s).Angle()
		if angle < 0 || angle >= math.Pi {
			t.Errorf("Angle(%+v) = %v, want in [0, pi)", s, angle)
		}
	}
}

func TestAngle_Values(t *testing.T) {
	tests := []struct {
		name string
		seg  Segment
		want float64
	}{
		{"horizontal", Segment{X1: 0, Y1: 0, X2: 1, Y2: 0}, 0},
		{"vertical", Segment{X1: 0, Y1: 0, X2: 0, Y2: 5}, math.Pi / 2},
		{"diagonal45", Segment{X1: 0, Y1: 0, X2: 1, Y2: 1}, math.Pi / 4},
		{"diagonal135", Segment{X1: 0, Y1: 0, X2: -1, Y2: 1}, 3 * math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonical(tt.seg).Angle()
			if !floatEquals(got, tt.want, 1e-12) {
				t.Errorf("Angle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngle_VerticalExact(t *testing.T) {
	// B == 0 must hit the exact pi/2 branch, not atan2.
	if got := Canonical(Segment{X1: 0, Y1: 0, X2: 0, Y2: 5}).Angle(); got != math.Pi/2 {
		t.Errorf("vertical Angle() = %v, want exactly pi/2", got)
	}
}

func TestPointToLine(t *testing.T) {
	horizontal := Canonical(Segment{X1: 0, Y1: 0, X2: 10, Y2: 0})

	tests := []struct {
		p    Point
		want float64
	}{
		{Point{X: 5, Y: 3}, 3},
		{Point{X: -2, Y: -4}, 4},
		{Point{X: 7, Y: 0}, 0},
	}

	for _, tt := range tests {
		if got := PointToLine(tt.p, horizontal); !floatEquals(got, tt.want, 1e-12) {
			t.Errorf("PointToLine(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPointToLine_DegenerateIsNaN(t *testing.T) {
	degenerate := Canonical(Segment{X1: 1, Y1: 1, X2: 1, Y2: 1})
	if got := PointToLine(Point{X: 2, Y: 3}, degenerate); !math.IsNaN(got) {
		t.Errorf("PointToLine against degenerate line = %v, want NaN", got)
	}
}

func TestSegment_LengthAndMidpoint(t *testing.T) {
	s := Segment{X1: 1, Y1: 2, X2: 4, Y2: 6}

	if got := s.Length(); !floatEquals(got, 5, 1e-12) {
		t.Errorf("Length() = %v, want 5", got)
	}

	mid := s.Midpoint()
	if !floatEquals(mid.X, 2.5, 1e-12) || !floatEquals(mid.Y, 4, 1e-12) {
		t.Errorf("Midpoint() = %+v, want (2.5, 4)", mid)
	}
}
