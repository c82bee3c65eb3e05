package geometry

import "math"

// Quad is an ordered planar quadrilateral ready to be inserted into a mesh
type Quad [4]Vector3

// VectorArea returns the area-weighted normal (Newell's method)
func (q Quad) VectorArea() Vector3 {
	var n Vector3
	for i := range q {
		cur, next := q[i], q[(i+1)%4]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n.Mul(0.5)
}

// Area returns the surface area of the quad
func (q Quad) Area() float64 {
	return q.VectorArea().Length()
}

// Normal returns the unit normal following the winding order
func (q Quad) Normal() Vector3 {
	return q.VectorArea().Normalize()
}

// Center returns the centroid of the four corners
func (q Quad) Center() Vector3 {
	return Centroid(q[:])
}

// Planarity returns the largest distance of a corner to the mean plane
func (q Quad) Planarity() float64 {
	plane := NewPlane(q.Center(), q.Normal())
	maxDist := 0.0
	for _, p := range q {
		maxDist = math.Max(maxDist, math.Abs(plane.SignedDistance(p)))
	}
	return maxDist
}

// EdgeLengths returns the lengths of the four sides, 0->1 first
func (q Quad) EdgeLengths() [4]float64 {
	var lengths [4]float64
	for i := range q {
		lengths[i] = q[i].Distance(q[(i+1)%4])
	}
	return lengths
}

// IsDegenerate reports whether the quad has fewer than three distinct corners
// or no area
func (q Quad) IsDegenerate() bool {
	distinct := make([]Vector3, 0, 4)
	for _, p := range q {
		if !p.IsFinite() {
			return true
		}
		dup := false
		for _, d := range distinct {
			if d.ApproxEqual(p, 1e-9) {
				dup = true
				break
			}
		}
		if !dup {
			distinct = append(distinct, p)
		}
	}
	if len(distinct) < 3 {
		return true
	}

	scale := 0.0
	for _, l := range q.EdgeLengths() {
		scale = math.Max(scale, l)
	}
	return q.Area() <= 1e-9*scale*scale
}
