package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrCollinear is returned when a set of points does not span a plane
var ErrCollinear = errors.New("points are collinear")

// Plane is defined by a point on it and a unit normal
type Plane struct {
	Point  Vector3
	Normal Vector3
}

// NewPlane creates a plane and normalizes its normal
func NewPlane(point, normal Vector3) Plane {
	return Plane{Point: point, Normal: normal.Normalize()}
}

// SignedDistance returns the distance of p to the plane, positive on the normal side
func (p Plane) SignedDistance(point Vector3) float64 {
	return point.Sub(p.Point).Dot(p.Normal)
}

// IntersectRay returns the point where the ray hits the plane. The boolean is
// false when the ray is parallel to the plane or the hit lies behind the origin.
func (p Plane) IntersectRay(r Ray) (Vector3, bool) {
	denom := p.Normal.Dot(r.Direction)
	if math.Abs(denom) < 1e-12 {
		return Vector3{}, false
	}
	t := p.Normal.Dot(p.Point.Sub(r.Origin)) / denom
	if t < 0 {
		return Vector3{}, false
	}
	return r.PointAt(t), true
}

// FitPlane computes the least-squares plane through the points.
//
// The normal is the right singular vector of the centered point matrix with
// the smallest singular value. At least three non-collinear points are needed.
func FitPlane(points []Vector3) (Plane, error) {
	if len(points) < 3 {
		return Plane{}, fmt.Errorf("need at least 3 points to fit a plane, got %d", len(points))
	}

	center := Centroid(points)
	data := make([]float64, 0, len(points)*3)
	for _, p := range points {
		d := p.Sub(center)
		data = append(data, d.X, d.Y, d.Z)
	}
	a := mat.NewDense(len(points), 3, data)

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThinV); !ok {
		return Plane{}, fmt.Errorf("plane fit: SVD factorization failed")
	}
	values := svd.Values(nil)
	// Values are sorted in decreasing order; a vanishing second value means
	// every point lies on one line.
	if values[0] == 0 || values[1] <= 1e-9*values[0] {
		return Plane{}, ErrCollinear
	}

	var v mat.Dense
	svd.VTo(&v)
	normal := NewVector3(v.At(0, 2), v.At(1, 2), v.At(2, 2))
	return NewPlane(center, normal), nil
}

// FitPlaneThroughLine computes the plane that contains the line origin+t*dir
// and best fits the samples in the least-squares sense.
func FitPlaneThroughLine(origin, dir Vector3, samples []Vector3) (Plane, error) {
	d := dir.Normalize()
	if d.Length() == 0 {
		return Plane{}, fmt.Errorf("plane fit: zero line direction")
	}
	u, w := orthonormalBasis(d)

	// Covariance of the sample offsets measured in the (u, w) plane
	// perpendicular to the line.
	var suu, suw, sww float64
	for _, s := range samples {
		off := s.Sub(origin)
		a, b := off.Dot(u), off.Dot(w)
		suu += a * a
		suw += a * b
		sww += b * b
	}
	if suu+sww <= 1e-18 {
		return Plane{}, ErrCollinear
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(mat.NewSymDense(2, []float64{suu, suw, suw, sww}), true); !ok {
		return Plane{}, fmt.Errorf("plane fit: eigen decomposition failed")
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	smallest := 0
	if values[1] < values[0] {
		smallest = 1
	}
	normal := u.Mul(vectors.At(0, smallest)).Add(w.Mul(vectors.At(1, smallest)))
	return NewPlane(origin, normal), nil
}

// orthonormalBasis returns two unit vectors perpendicular to n and to each other
func orthonormalBasis(n Vector3) (Vector3, Vector3) {
	helper := NewVector3(1, 0, 0)
	if math.Abs(n.X) > 0.9 {
		helper = NewVector3(0, 1, 0)
	}
	u := n.Cross(helper).Normalize()
	w := n.Cross(u).Normalize()
	return u, w
}

// Collinear3D reports whether three points lie on one line
func Collinear3D(a, b, c Vector3) bool {
	ab, ac := b.Sub(a), c.Sub(a)
	scale := ab.Length() * ac.Length()
	if scale == 0 {
		return true
	}
	return ab.Cross(ac).Length() <= 1e-9*scale
}
