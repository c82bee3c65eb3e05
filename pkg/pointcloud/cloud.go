// Package pointcloud holds the sparse reconstructed points used as depth
// reference when lifting 2D clicks into 3D.
package pointcloud

import (
	"math"
	"sync"

	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/viewer"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// DefaultMaxAngle is the largest angle in radians between a ray and the
// direction to a sample for the sample to count as under the ray
const DefaultMaxAngle = 0.035

// Cloud is an immutable set of samples with per-camera projected indexes.
// It is safe for concurrent use.
type Cloud struct {
	points   []geometry.Vector3
	MaxAngle float64

	mu      sync.Mutex
	indexes map[viewer.Camera]*kdtree.Tree
}

// New creates a cloud from world-space samples
func New(points []geometry.Vector3) *Cloud {
	cp := make([]geometry.Vector3, len(points))
	copy(cp, points)
	return &Cloud{
		points:   cp,
		MaxAngle: DefaultMaxAngle,
		indexes:  make(map[viewer.Camera]*kdtree.Tree),
	}
}

// Len returns the number of samples
func (c *Cloud) Len() int {
	return len(c.points)
}

// Points returns a copy of the samples
func (c *Cloud) Points() []geometry.Vector3 {
	cp := make([]geometry.Vector3, len(c.points))
	copy(cp, c.points)
	return cp
}

// NearestPoint returns the sample with the smallest angular distance to the
// ray, provided it lies in front of the ray origin within MaxAngle
func (c *Cloud) NearestPoint(ray geometry.Ray) (geometry.Vector3, bool) {
	var nearest geometry.Vector3
	minAngle := math.MaxFloat64

	for _, p := range c.points {
		offset := p.Sub(ray.Origin)
		along := offset.Dot(ray.Direction)
		if along <= 0 {
			continue
		}
		angle := math.Atan2(ray.DistanceToPoint(p), along)
		if angle < minAngle {
			minAngle = angle
			nearest = p
		}
	}

	if minAngle > c.MaxAngle {
		return geometry.Vector3{}, false
	}
	return nearest, true
}

// PointsInRegion returns the samples in front of the view's camera whose
// camera-space projection lies inside the polygon
func (c *Cloud) PointsInRegion(view *viewer.View, polygon []geometry.Vector2) []geometry.Vector3 {
	if len(polygon) < 3 || view == nil || view.Camera.Validate() != nil {
		return nil
	}
	tree := c.index(view)
	if tree == nil {
		return nil
	}

	// Bounding circle of the polygon narrows the candidates
	var center geometry.Vector2
	for _, p := range polygon {
		center = center.Add(p)
	}
	center = center.Mul(1.0 / float64(len(polygon)))
	radius := 0.0
	for _, p := range polygon {
		radius = math.Max(radius, p.Distance(center))
	}

	keeper := kdtree.NewDistKeeper(radius * radius)
	tree.NearestSet(keeper, projected{pos: center})

	var inside []geometry.Vector3
	for _, item := range keeper.Heap {
		s, ok := item.Comparable.(projected)
		if !ok {
			continue
		}
		if geometry.PointInPolygon2D(s.pos, polygon) {
			inside = append(inside, s.world)
		}
	}
	return inside
}

// index returns the kd-tree of samples projected through the view's camera,
// building it on first use for a given camera pose
func (c *Cloud) index(view *viewer.View) *kdtree.Tree {
	key := *view.Camera

	c.mu.Lock()
	defer c.mu.Unlock()

	if tree, ok := c.indexes[key]; ok {
		return tree
	}

	samples := make(projectedSet, 0, len(c.points))
	for _, p := range c.points {
		pos, err := view.WorldToCamera(p)
		if err != nil {
			continue
		}
		samples = append(samples, projected{pos: pos, world: p})
	}

	var tree *kdtree.Tree
	if len(samples) > 0 {
		tree = kdtree.New(samples, false)
	}
	c.indexes[key] = tree
	return tree
}
