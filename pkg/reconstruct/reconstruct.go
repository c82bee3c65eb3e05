// Package reconstruct lifts quads drawn in a camera view into planar 3D faces.
//
// Depth is the one degree of freedom a click cannot give. It is resolved from
// the point cloud first: samples under the clicked corners and inside the
// clicked quad define a plane. When the cloud is silent, a configured fallback
// plane is used. Edge extension instead keeps the plane through the source
// edge, so adjacent faces stay connected.
package reconstruct

import (
	"errors"
	"fmt"
	"math"

	"github.com/philipparndt/gomvg/internal/monitoring"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/scene"
	"github.com/philipparndt/gomvg/pkg/viewer"
)

var (
	// ErrProjectionFailed is returned when the depth of a point cannot be resolved
	ErrProjectionFailed = errors.New("projection failed")
	// ErrDegenerateGeometry is returned for too few points or a zero-area face
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Options tune a single reconstruction
type Options struct {
	// Extend switches to edge-extension mode; the 2D points are then
	// synthesized from the constraint and the points argument is ignored
	Extend *EdgeConstraint
	// Pinned world positions replace the first len(Pinned) corners of the
	// result and count as depth samples. Used to share an edge with the
	// previously built face.
	Pinned []geometry.Vector3
}

// Reconstructor turns camera-space quads into world-space faces
type Reconstructor struct {
	Cloud    scene.PointCloud
	Fallback *geometry.Plane // Used when the cloud has no sample near the face
}

// New creates a reconstructor using the given cloud as depth reference
func New(cloud scene.PointCloud) *Reconstructor {
	return &Reconstructor{Cloud: cloud}
}

// ProjectFace2D computes the 3D quad for 3 or 4 camera-space points, or for an
// edge extension when opts.Extend is set. Three points are completed into a
// parallelogram. The returned face is in a non-self-intersecting order.
func (r *Reconstructor) ProjectFace2D(view *viewer.View, points []geometry.Vector2, opts Options) (geometry.Quad, error) {
	if opts.Extend != nil {
		return r.extendEdge(view, *opts.Extend)
	}

	switch len(points) {
	case 4:
	case 3:
		points = append(points[:3:3], PredictFourthPoint(points[0], points[1], points[2]))
	default:
		return geometry.Quad{}, fmt.Errorf("%w: need 3 or 4 points, got %d", ErrDegenerateGeometry, len(points))
	}
	if len(opts.Pinned) > 2 {
		return geometry.Quad{}, fmt.Errorf("at most 2 pinned corners, got %d", len(opts.Pinned))
	}

	quad2D, swapped := geometry.CorrectWinding([4]geometry.Vector2(points))
	if swapped {
		monitoring.Logf("reconstruct: corrected bow-tie click order")
	}
	if math.Abs(signedArea2D(quad2D[:])) < 1e-12 {
		return geometry.Quad{}, fmt.Errorf("%w: points are collinear in camera space", ErrDegenerateGeometry)
	}

	var rays [4]geometry.Ray
	for i, p := range quad2D {
		ray, err := view.CameraToWorld(p)
		if err != nil {
			return geometry.Quad{}, err
		}
		rays[i] = ray
	}

	samples := append([]geometry.Vector3{}, opts.Pinned...)
	samples = append(samples, r.samplesUnder(view, rays[:], quad2D[:])...)

	plane, err := r.depthPlane(view, samples)
	if err != nil {
		return geometry.Quad{}, err
	}

	var face geometry.Quad
	for i, ray := range rays {
		hit, ok := plane.IntersectRay(ray)
		if !ok {
			return geometry.Quad{}, fmt.Errorf("%w: corner %d does not hit the depth plane", ErrProjectionFailed, i)
		}
		face[i] = hit
	}
	copy(face[:], opts.Pinned)

	if face.IsDegenerate() {
		return geometry.Quad{}, fmt.Errorf("%w: face has no area", ErrDegenerateGeometry)
	}
	return face, nil
}

// PredictFourthPoint completes three clicks into a parallelogram by
// translating the third point by the first edge's height (p0 - p1)
func PredictFourthPoint(p0, p1, p2 geometry.Vector2) geometry.Vector2 {
	return p2.Add(p0.Sub(p1))
}

// samplesUnder gathers cloud samples near the corner rays and inside the quad
func (r *Reconstructor) samplesUnder(view *viewer.View, rays []geometry.Ray, polygon []geometry.Vector2) []geometry.Vector3 {
	if r.Cloud == nil {
		return nil
	}
	var samples []geometry.Vector3
	for _, ray := range rays {
		if p, ok := r.Cloud.NearestPoint(ray); ok {
			samples = append(samples, p)
		}
	}
	if region, ok := r.Cloud.(scene.RegionQuerier); ok {
		samples = append(samples, region.PointsInRegion(view, polygon)...)
	}
	return samples
}

// depthPlane chooses the plane the face corners are projected onto
func (r *Reconstructor) depthPlane(view *viewer.View, samples []geometry.Vector3) (geometry.Plane, error) {
	samples = distinct(samples)
	forward := view.Camera.Forward()

	switch {
	case len(samples) >= 3:
		plane, err := geometry.FitPlane(samples)
		if err == nil {
			return plane, nil
		}
		if !errors.Is(err, geometry.ErrCollinear) {
			return geometry.Plane{}, fmt.Errorf("%w: %v", ErrProjectionFailed, err)
		}
		// All samples on one line: keep the line, face the camera
		return facingPlaneThroughLine(samples[0], samples[len(samples)-1].Sub(samples[0]), forward)
	case len(samples) == 2:
		return facingPlaneThroughLine(samples[0], samples[1].Sub(samples[0]), forward)
	case len(samples) == 1:
		return geometry.NewPlane(samples[0], forward), nil
	}

	if r.Fallback != nil {
		monitoring.Logf("reconstruct: no point cloud sample under the face, using fallback plane")
		return *r.Fallback, nil
	}
	return geometry.Plane{}, fmt.Errorf("%w: no point cloud sample under the face and no fallback plane", ErrProjectionFailed)
}

// facingPlaneThroughLine returns the plane containing the line whose normal is
// as close as possible to the viewing direction
func facingPlaneThroughLine(origin, dir, forward geometry.Vector3) (geometry.Plane, error) {
	d := dir.Normalize()
	normal := forward.Sub(d.Mul(forward.Dot(d)))
	if normal.Length() < 1e-9 {
		return geometry.Plane{}, fmt.Errorf("%w: line is parallel to the view direction", ErrProjectionFailed)
	}
	return geometry.NewPlane(origin, normal), nil
}

func distinct(points []geometry.Vector3) []geometry.Vector3 {
	out := make([]geometry.Vector3, 0, len(points))
	for _, p := range points {
		dup := false
		for _, q := range out {
			if p.ApproxEqual(q, 1e-12) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func signedArea2D(polygon []geometry.Vector2) float64 {
	area := 0.0
	for i := range polygon {
		area += geometry.Cross2D(polygon[i], polygon[(i+1)%len(polygon)])
	}
	return area / 2
}
