package geometry

import "math"

// Fixed tolerances of the screen-space predicates. They are not configurable:
// picking results must be reproducible across sessions.
const (
	// AlignEpsilon bounds |cross(AB, AP)| for P to count as aligned with AB
	AlignEpsilon = 1e-6
	// ParallelEpsilon bounds |cross(u, v)| below which two directions are parallel
	ParallelEpsilon = 1e-5
	// MeshTolerance is the betweenness slack of PointOnSegment
	MeshTolerance = 1e-3
)

// Cross2D returns the z component of the cross product of two 2D vectors
func Cross2D(a, b Vector2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// Dot2D returns the dot product of two 2D vectors
func Dot2D(a, b Vector2) float64 {
	return a.X*b.X + a.Y*b.Y
}

// SegmentsIntersect reports whether the segments a+t*ad and b+u*bc cross for
// t and u both in [0, 1]. Parallel directions never intersect.
func SegmentsIntersect(a, b, ad, bc Vector2) bool {
	denom := Cross2D(ad, bc)
	if math.Abs(denom) < ParallelEpsilon {
		return false
	}

	ab := b.Sub(a)
	t := Cross2D(ab, bc) / denom
	u := Cross2D(ab, ad) / denom

	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// PointsAligned2D reports whether p lies on the line through a and b
func PointsAligned2D(p, a, b Vector2) bool {
	cross := Cross2D(b.Sub(a), p.Sub(a))
	return math.Abs(cross) <= AlignEpsilon
}

// PointOnSegment reports whether p is aligned with a and b and lies between them
func PointOnSegment(p, a, b Vector2) bool {
	if !PointsAligned2D(p, a, b) {
		return false
	}
	// Opposite directions from p give a non-positive dot product
	return Dot2D(a.Sub(p), b.Sub(p)) <= MeshTolerance
}

// ClosestPointOnSegment2D returns the point of segment ab nearest to p and its
// parameter t in [0, 1] (0 at a, 1 at b)
func ClosestPointOnSegment2D(p, a, b Vector2) (Vector2, float64) {
	ab := b.Sub(a)
	lengthSq := Dot2D(ab, ab)
	if lengthSq == 0 {
		return a, 0
	}
	t := Dot2D(p.Sub(a), ab) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Mul(t)), t
}

// PointInPolygon2D reports whether p is inside the polygon using the even-odd rule
func PointInPolygon2D(p Vector2, polygon []Vector2) bool {
	inside := false
	n := len(polygon)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			x := pj.X + (p.Y-pj.Y)*(pi.X-pj.X)/(pi.Y-pj.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// CorrectWinding returns the quad with its last two points swapped when the
// sides 0->3 and 1->2 cross, which is the bow-tie produced by clicking the
// corners out of order. The boolean reports whether a swap happened.
func CorrectWinding(quad [4]Vector2) ([4]Vector2, bool) {
	ad := quad[3].Sub(quad[0])
	bc := quad[2].Sub(quad[1])
	if !SegmentsIntersect(quad[0], quad[1], ad, bc) {
		return quad, false
	}
	quad[2], quad[3] = quad[3], quad[2]
	return quad, true
}
