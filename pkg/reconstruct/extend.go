package reconstruct

import (
	"fmt"

	"github.com/philipparndt/gomvg/internal/monitoring"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/scene"
	"github.com/philipparndt/gomvg/pkg/viewer"
)

// EdgeConstraint describes the extension of an existing mesh edge by a drag
type EdgeConstraint struct {
	Start geometry.Vector3 // World position of the edge's first vertex
	End   geometry.Vector3 // World position of the edge's second vertex
	// Ratio locates the press position along the edge, measured from End
	// (0 at End, 1 at Start)
	Ratio float64
	// Pointer is the current drag position in camera space
	Pointer geometry.Vector2
	// AdjacentPlane is the plane of the face already using the edge, if any
	AdjacentPlane *geometry.Plane
}

// Height3D returns the world-space edge vector End - Start
func (c EdgeConstraint) Height3D() geometry.Vector3 {
	return c.End.Sub(c.Start)
}

// PreviewPoints2D returns the camera-space quad of an edge extension: the
// edge reversed (End, Start) followed by the edge translated under the pointer
func PreviewPoints2D(view *viewer.View, c EdgeConstraint) ([4]geometry.Vector2, error) {
	e0, err := view.WorldToCamera(c.Start)
	if err != nil {
		return [4]geometry.Vector2{}, err
	}
	e1, err := view.WorldToCamera(c.End)
	if err != nil {
		return [4]geometry.Vector2{}, err
	}
	height := e1.Sub(e0)
	return [4]geometry.Vector2{
		e1,
		e0,
		c.Pointer.Sub(height.Mul(1 - c.Ratio)),
		c.Pointer.Add(height.Mul(c.Ratio)),
	}, nil
}

// extendEdge builds the face between the source edge and its translated copy.
// The first two corners are the edge endpoints themselves and the far side is
// the edge's 3D height placed under the pointer, so the new face shares the
// edge exactly and keeps it parallel.
func (r *Reconstructor) extendEdge(view *viewer.View, c EdgeConstraint) (geometry.Quad, error) {
	height := c.Height3D()
	if height.Length() == 0 {
		return geometry.Quad{}, fmt.Errorf("%w: source edge has no length", ErrDegenerateGeometry)
	}

	preview, err := PreviewPoints2D(view, c)
	if err != nil {
		return geometry.Quad{}, err
	}

	plane, err := r.extensionPlane(view, c, preview)
	if err != nil {
		return geometry.Quad{}, err
	}

	ray, err := view.CameraToWorld(c.Pointer)
	if err != nil {
		return geometry.Quad{}, err
	}
	pointer, ok := plane.IntersectRay(ray)
	if !ok {
		return geometry.Quad{}, fmt.Errorf("%w: pointer does not hit the extension plane", ErrProjectionFailed)
	}

	face := geometry.Quad{
		c.End,
		c.Start,
		pointer.Sub(height.Mul(1 - c.Ratio)),
		pointer.Add(height.Mul(c.Ratio)),
	}
	if face.IsDegenerate() {
		return geometry.Quad{}, fmt.Errorf("%w: extension has no area", ErrDegenerateGeometry)
	}
	return face, nil
}

// extensionPlane returns a plane containing the source edge: fitted to the
// cloud samples under the preview, else the adjacent face's plane, else the
// plane through the edge facing the camera
func (r *Reconstructor) extensionPlane(view *viewer.View, c EdgeConstraint, preview [4]geometry.Vector2) (geometry.Plane, error) {
	line := geometry.NewRay(c.Start, c.Height3D())

	var samples []geometry.Vector3
	if r.Cloud != nil {
		for _, p := range preview[2:] {
			ray, err := view.CameraToWorld(p)
			if err != nil {
				return geometry.Plane{}, err
			}
			if s, ok := r.Cloud.NearestPoint(ray); ok {
				samples = append(samples, s)
			}
		}
		if region, ok := r.Cloud.(scene.RegionQuerier); ok {
			samples = append(samples, region.PointsInRegion(view, preview[:])...)
		}
	}

	offLine := samples[:0]
	for _, s := range samples {
		if line.DistanceToPoint(s) > 1e-9 {
			offLine = append(offLine, s)
		}
	}
	if len(offLine) > 0 {
		plane, err := geometry.FitPlaneThroughLine(c.Start, c.Height3D(), offLine)
		if err == nil {
			return plane, nil
		}
	}

	if c.AdjacentPlane != nil {
		monitoring.Logf("reconstruct: extending edge in the plane of its adjacent face")
		return *c.AdjacentPlane, nil
	}
	return facingPlaneThroughLine(c.Start, c.Height3D(), view.Camera.Forward())
}
