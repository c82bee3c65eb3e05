package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestPlaneIntersectRay(t *testing.T) {
	plane := NewPlane(NewVector3(0, 0, -5), NewVector3(0, 0, 1))
	ray := NewRay(NewVector3(0, 0, 0), NewVector3(0, 0, -1))

	hit, ok := plane.IntersectRay(ray)
	if !ok {
		t.Fatalf("IntersectRay failed: expected a hit")
	}
	if !hit.ApproxEqual(NewVector3(0, 0, -5), 1e-10) {
		t.Errorf("IntersectRay failed: expected (0,0,-5), got %v", hit)
	}

	if _, ok := plane.IntersectRay(NewRay(NewVector3(0, 0, 0), NewVector3(0, 0, 1))); ok {
		t.Errorf("IntersectRay failed: plane behind the ray must not be hit")
	}
	if _, ok := plane.IntersectRay(NewRay(NewVector3(0, 0, 0), NewVector3(1, 0, 0))); ok {
		t.Errorf("IntersectRay failed: parallel ray must not be hit")
	}
}

func TestFitPlane(t *testing.T) {
	points := []Vector3{
		NewVector3(0, 0, 2),
		NewVector3(1, 0, 2),
		NewVector3(0, 1, 2),
		NewVector3(1, 1, 2),
		NewVector3(0.5, 0.3, 2),
	}

	plane, err := FitPlane(points)
	if err != nil {
		t.Fatalf("FitPlane failed: %v", err)
	}
	if math.Abs(math.Abs(plane.Normal.Z)-1) > 1e-10 {
		t.Errorf("FitPlane failed: expected normal along Z, got %v", plane.Normal)
	}
	if math.Abs(plane.SignedDistance(NewVector3(3, 3, 2))) > 1e-10 {
		t.Errorf("FitPlane failed: point on plane has distance %v", plane.SignedDistance(NewVector3(3, 3, 2)))
	}
}

func TestFitPlaneCollinear(t *testing.T) {
	points := []Vector3{
		NewVector3(0, 0, 0),
		NewVector3(1, 1, 1),
		NewVector3(2, 2, 2),
	}
	if _, err := FitPlane(points); !errors.Is(err, ErrCollinear) {
		t.Errorf("FitPlane failed: expected ErrCollinear, got %v", err)
	}
	if _, err := FitPlane(points[:2]); err == nil {
		t.Errorf("FitPlane failed: expected an error for two points")
	}
}

func TestFitPlaneThroughLine(t *testing.T) {
	origin := NewVector3(0, 0, 0)
	dir := NewVector3(0, 1, 0)
	samples := []Vector3{NewVector3(1, 5, 1), NewVector3(2, -3, 2)}

	plane, err := FitPlaneThroughLine(origin, dir, samples)
	if err != nil {
		t.Fatalf("FitPlaneThroughLine failed: %v", err)
	}
	if math.Abs(plane.Normal.Dot(dir)) > 1e-10 {
		t.Errorf("FitPlaneThroughLine failed: normal %v not perpendicular to line", plane.Normal)
	}
	for _, s := range samples {
		if d := math.Abs(plane.SignedDistance(s)); d > 1e-10 {
			t.Errorf("FitPlaneThroughLine failed: sample %v at distance %v", s, d)
		}
	}

	if _, err := FitPlaneThroughLine(origin, dir, []Vector3{NewVector3(0, 4, 0)}); !errors.Is(err, ErrCollinear) {
		t.Errorf("FitPlaneThroughLine failed: expected ErrCollinear, got %v", err)
	}
}

func TestRayDistanceToPoint(t *testing.T) {
	ray := NewRay(NewVector3(0, 0, 0), NewVector3(2, 0, 0))
	if d := ray.DistanceToPoint(NewVector3(5, 3, 4)); math.Abs(d-5) > 1e-10 {
		t.Errorf("DistanceToPoint failed: expected 5, got %v", d)
	}
}
