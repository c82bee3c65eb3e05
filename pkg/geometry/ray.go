package geometry

// Ray is a half line starting at Origin; Direction is kept normalized
type Ray struct {
	Origin    Vector3
	Direction Vector3
}

// NewRay creates a ray and normalizes its direction
func NewRay(origin, direction Vector3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// PointAt returns the point at distance t along the ray
func (r Ray) PointAt(t float64) Vector3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ClosestPoint projects a point onto the ray's supporting line
func (r Ray) ClosestPoint(p Vector3) Vector3 {
	return r.PointAt(p.Sub(r.Origin).Dot(r.Direction))
}

// DistanceToPoint returns the distance between p and the ray's supporting line
func (r Ray) DistanceToPoint(p Vector3) float64 {
	return r.ClosestPoint(p).Distance(p)
}
