package pointcloud

import (
	"github.com/philipparndt/gomvg/pkg/geometry"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// projected is a cloud sample keyed by its camera-space position
type projected struct {
	pos   geometry.Vector2
	world geometry.Vector3
}

func (p projected) coord(d kdtree.Dim) float64 {
	if d == 0 {
		return p.pos.X
	}
	return p.pos.Y
}

// Compare implements kdtree.Comparable
func (p projected) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(projected)
	return p.coord(d) - q.coord(d)
}

// Dims implements kdtree.Comparable
func (p projected) Dims() int { return 2 }

// Distance implements kdtree.Comparable using the squared Euclidean distance
func (p projected) Distance(c kdtree.Comparable) float64 {
	q := c.(projected)
	dx, dy := p.pos.X-q.pos.X, p.pos.Y-q.pos.Y
	return dx*dx + dy*dy
}

// projectedSet implements kdtree.Interface
type projectedSet []projected

func (s projectedSet) Index(i int) kdtree.Comparable { return s[i] }
func (s projectedSet) Len() int                      { return len(s) }
func (s projectedSet) Slice(start, end int) kdtree.Interface {
	return s[start:end]
}
func (s projectedSet) Pivot(d kdtree.Dim) int {
	return projectedPlane{Dim: d, projectedSet: s}.Pivot()
}

// projectedPlane sorts a projectedSet along one dimension
type projectedPlane struct {
	kdtree.Dim
	projectedSet
}

func (p projectedPlane) Less(i, j int) bool {
	return p.projectedSet[i].coord(p.Dim) < p.projectedSet[j].coord(p.Dim)
}
func (p projectedPlane) Swap(i, j int) {
	p.projectedSet[i], p.projectedSet[j] = p.projectedSet[j], p.projectedSet[i]
}
func (p projectedPlane) Slice(start, end int) kdtree.SortSlicer {
	p.projectedSet = p.projectedSet[start:end]
	return p
}
func (p projectedPlane) Pivot() int {
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}
