// Package scene declares the collaborators the face-construction engine works
// with: meshes it reads, an editor that inserts finished faces and the point
// cloud used as depth reference. Hosts provide the implementations.
package scene

import (
	"errors"

	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/viewer"
)

// ErrInvalidTopology is returned by a MeshEditor that rejects a face, for
// example because it would create a non-manifold or duplicate edge
var ErrInvalidTopology = errors.New("invalid topology")

// Mesh is the read-only query surface of a polygon mesh
type Mesh interface {
	// ID identifies the mesh across calls
	ID() string
	// Points returns the vertex positions in world space, indexed by vertex id
	Points() []geometry.Vector3
	VertexCount() int
	EdgeCount() int
	// EdgeVertices returns the two vertex ids of an edge
	EdgeVertices(edgeID int) (int, int, error)
	ConnectedFacesToVertex(vertexID int) []int
	ConnectedFacesToEdge(edgeID int) []int
	// FaceVertices returns the vertex ids of a face in winding order
	FaceVertices(faceID int) []int
}

// MeshEditor inserts finished faces. CommitFace adds the face to the mesh
// with the given id, or to a new mesh when meshID is empty, and returns the id
// of the mesh that received it. A failed call must leave the mesh untouched.
type MeshEditor interface {
	CommitFace(meshID string, face geometry.Quad) (string, error)
}

// PointCloud is the sparse depth reference
type PointCloud interface {
	// NearestPoint returns the sample closest to the ray, if any is close enough
	NearestPoint(ray geometry.Ray) (geometry.Vector3, bool)
}

// RegionQuerier is implemented by point clouds that can list the samples
// whose projection falls inside a camera-space polygon
type RegionQuerier interface {
	PointsInRegion(view *viewer.View, polygon []geometry.Vector2) []geometry.Vector3
}
