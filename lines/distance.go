package lines

import (
	"fmt"
	"math"
)

// Method selects how the dissimilarity between two lines is computed.
type Method int

const (
	// MethodParallel measures the perpendicular offset between near-parallel
	// lines and reports +Inf for everything else.
	MethodParallel Method = iota
	// MethodAngle measures the circular distance between line angles.
	MethodAngle
	// MethodCenter measures the Euclidean distance between segment midpoints.
	MethodCenter
	// MethodCombined is a weighted blend of angle, midpoint and perpendicular
	// separation. This is the default.
	MethodCombined
	// MethodHausdorff measures the largest perpendicular distance from either
	// segment's endpoints to the opposite line.
	MethodHausdorff
)

var methodNames = map[Method]string{
	MethodParallel:  "parallel",
	MethodAngle:     "angle",
	MethodCenter:    "center",
	MethodCombined:  "combined",
	MethodHausdorff: "hausdorff",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// NeedsPoints reports whether the method requires the original segment
// endpoints in addition to the canonical forms.
func (m Method) NeedsPoints() bool {
	switch m {
	case MethodCenter, MethodCombined, MethodHausdorff:
		return true
	default:
		return false
	}
}

// ParseMethod maps a method tag ("parallel", "angle", "center", "combined",
// "hausdorff") to its Method value. Unknown tags produce *UnknownMethodError.
func ParseMethod(s string) (Method, error) {
	for m, name := range methodNames {
		if name == s {
			return m, nil
		}
	}
	return 0, &UnknownMethodError{Method: s}
}

// UnknownMethodError reports a method tag outside the supported set.
type UnknownMethodError struct {
	Method string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown distance method: %q", e.Method)
}

// MissingPointsError reports a method invoked without the segment endpoints
// it requires.
type MissingPointsError struct {
	Method Method
	Param  string
}

func (e *MissingPointsError) Error() string {
	return fmt.Sprintf("method %q requires segment points: missing %s", e.Method, e.Param)
}

// Default tuning values for DistanceParams. These are starting points found
// to work well on detector output in pixel coordinates, not physical
// constants.
const (
	// DefaultParallelDotCutoff is the minimum |n1·n2| between unit normals
	// for two lines to count as parallel under MethodParallel.
	DefaultParallelDotCutoff = 0.95
	// DefaultAngleScale brings MethodAngle's radian differences into the
	// same range as the pixel-space methods.
	DefaultAngleScale = 100.0
	// Weights for the combined metric.
	DefaultAngleWeight      = 50.0
	DefaultCenterWeight     = 0.5
	DefaultSeparationWeight = 1.0
)

// DistanceParams holds the tunable constants of the distance methods.
// The zero value is not useful; start from DefaultDistanceParams.
type DistanceParams struct {
	// ParallelDotCutoff gates MethodParallel: below it the lines are not
	// parallel enough and the distance is +Inf.
	ParallelDotCutoff float64
	// AngleScale multiplies the angular difference under MethodAngle.
	AngleScale float64
	// AngleWeight, CenterWeight and SeparationWeight blend the combined
	// metric's three terms.
	AngleWeight      float64
	CenterWeight     float64
	SeparationWeight float64
}

// DefaultDistanceParams returns the standard tuning for all methods.
func DefaultDistanceParams() DistanceParams {
	return DistanceParams{
		ParallelDotCutoff: DefaultParallelDotCutoff,
		AngleScale:        DefaultAngleScale,
		AngleWeight:       DefaultAngleWeight,
		CenterWeight:      DefaultCenterWeight,
		SeparationWeight:  DefaultSeparationWeight,
	}
}

// angularDistance returns the circular distance between two line angles,
// min(|Δ|, π−|Δ|), so that nearly-opposite orientations compare as close.
func angularDistance(l1, l2 CanonicalLine) float64 {
	diff := math.Abs(l1.Angle() - l2.Angle())
	return math.Min(diff, math.Pi-diff)
}

// LineDistance computes the dissimilarity between two canonical lines under
// the given method. p1 and p2 are the source segments; they are required for
// MethodCenter, MethodCombined and MethodHausdorff and may be nil otherwise.
// A missing required segment produces *MissingPointsError before any
// computation; a method outside the known set produces *UnknownMethodError.
func LineDistance(c1, c2 CanonicalLine, p1, p2 *Segment, method Method, params DistanceParams) (float64, error) {
	if method.NeedsPoints() {
		if p1 == nil {
			return 0, &MissingPointsError{Method: method, Param: "points1"}
		}
		if p2 == nil {
			return 0, &MissingPointsError{Method: method, Param: "points2"}
		}
	}

	switch method {
	case MethodParallel:
		// With unit-normalized normals the perpendicular distance between
		// parallel lines reduces to the C-offset difference.
		dot := math.Abs(c1.A*c2.A + c1.B*c2.B)
		if dot < params.ParallelDotCutoff {
			return math.Inf(1), nil
		}
		return math.Abs(c2.C - c1.C), nil

	case MethodAngle:
		return angularDistance(c1, c2) * params.AngleScale, nil

	case MethodCenter:
		m1 := p1.Midpoint()
		m2 := p2.Midpoint()
		return math.Hypot(m1.X-m2.X, m1.Y-m2.Y), nil

	case MethodCombined:
		angleDiff := angularDistance(c1, c2)

		m1 := p1.Midpoint()
		m2 := p2.Midpoint()
		centerDist := math.Hypot(m1.X-m2.X, m1.Y-m2.Y)

		// Average of each midpoint's perpendicular distance to the
		// opposite line.
		separation := (PointToLine(m1, c2) + PointToLine(m2, c1)) / 2

		return angleDiff*params.AngleWeight +
			centerDist*params.CenterWeight +
			separation*params.SeparationWeight, nil

	case MethodHausdorff:
		// Max over each segment's endpoints of the perpendicular distance
		// to the opposite line. The distance from an endpoint does not
		// depend on which point of the opposite segment it is compared
		// against, so there is no inner minimization to take.
		maxDist := 0.0
		for _, p := range []Point{
			{X: p1.X1, Y: p1.Y1},
			{X: p1.X2, Y: p1.Y2},
		} {
			maxDist = math.Max(maxDist, PointToLine(p, c2))
		}
		for _, p := range []Point{
			{X: p2.X1, Y: p2.Y1},
			{X: p2.X2, Y: p2.Y2},
		} {
			maxDist = math.Max(maxDist, PointToLine(p, c1))
		}
		return maxDist, nil

	default:
		return 0, &UnknownMethodError{Method: method.String()}
	}
}
