// Package meshstore keeps the quad meshes built by an interaction session.
// Vertices closer than WeldTolerance are merged so that faces built on top of
// each other share their edges, and faces that would break the mesh's
// manifoldness are rejected.
package meshstore

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/scene"
)

// WeldTolerance is the distance below which two vertices are merged
const WeldTolerance = 0.01

type edgeKey [2]int

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Mesh is a polygon mesh made of quads
type Mesh struct {
	id   string
	Name string

	points      []geometry.Vector3
	faces       [][4]int
	edges       []edgeKey
	edgeIndex   map[edgeKey]int
	edgeFaces   [][]int
	vertexFaces [][]int
}

// NewMesh creates an empty mesh with a fresh id
func NewMesh(name string) *Mesh {
	return &Mesh{
		id:        uuid.New().String(),
		Name:      name,
		edgeIndex: make(map[edgeKey]int),
	}
}

func (m *Mesh) ID() string {
	return m.id
}

// Points returns a copy of the vertex positions
func (m *Mesh) Points() []geometry.Vector3 {
	cp := make([]geometry.Vector3, len(m.points))
	copy(cp, m.points)
	return cp
}

func (m *Mesh) VertexCount() int {
	return len(m.points)
}

func (m *Mesh) EdgeCount() int {
	return len(m.edges)
}

// FaceCount returns the number of quads in the mesh
func (m *Mesh) FaceCount() int {
	return len(m.faces)
}

func (m *Mesh) EdgeVertices(edgeID int) (int, int, error) {
	if edgeID < 0 || edgeID >= len(m.edges) {
		return 0, 0, fmt.Errorf("edge %d out of range [0, %d)", edgeID, len(m.edges))
	}
	e := m.edges[edgeID]
	return e[0], e[1], nil
}

func (m *Mesh) ConnectedFacesToVertex(vertexID int) []int {
	if vertexID < 0 || vertexID >= len(m.vertexFaces) {
		return nil
	}
	return append([]int(nil), m.vertexFaces[vertexID]...)
}

func (m *Mesh) ConnectedFacesToEdge(edgeID int) []int {
	if edgeID < 0 || edgeID >= len(m.edgeFaces) {
		return nil
	}
	return append([]int(nil), m.edgeFaces[edgeID]...)
}

func (m *Mesh) FaceVertices(faceID int) []int {
	if faceID < 0 || faceID >= len(m.faces) {
		return nil
	}
	f := m.faces[faceID]
	return f[:]
}

// Face returns the world positions of a face's corners
func (m *Mesh) Face(faceID int) geometry.Quad {
	var q geometry.Quad
	for i, v := range m.faces[faceID] {
		q[i] = m.points[v]
	}
	return q
}

// SurfaceArea calculates the total area of all faces
func (m *Mesh) SurfaceArea() float64 {
	total := 0.0
	for i := range m.faces {
		total += m.Face(i).Area()
	}
	return total
}

// AddFace inserts a quad, welding its corners to existing vertices. The mesh
// is left unchanged when the face is rejected.
func (m *Mesh) AddFace(face geometry.Quad) error {
	if face.IsDegenerate() {
		return fmt.Errorf("%w: degenerate face", scene.ErrInvalidTopology)
	}

	var ids [4]int
	var added []geometry.Vector3
	for i, p := range face {
		id, isNew := m.weld(p, added)
		if isNew {
			added = append(added, p)
		}
		ids[i] = id
	}
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if ids[i] == ids[j] {
				return fmt.Errorf("%w: corners %d and %d weld to the same vertex", scene.ErrInvalidTopology, i, j)
			}
		}
	}

	for i := range ids {
		key := newEdgeKey(ids[i], ids[(i+1)%4])
		edge, ok := m.edgeIndex[key]
		if !ok {
			continue
		}
		if len(m.edgeFaces[edge]) >= 2 {
			return fmt.Errorf("%w: edge %d already has two faces", scene.ErrInvalidTopology, edge)
		}
	}
	if m.hasFace(ids) {
		return fmt.Errorf("%w: duplicate face", scene.ErrInvalidTopology)
	}

	// Accepted, apply
	faceID := len(m.faces)
	m.points = append(m.points, added...)
	for range added {
		m.vertexFaces = append(m.vertexFaces, nil)
	}
	m.faces = append(m.faces, ids)
	for i, v := range ids {
		m.vertexFaces[v] = append(m.vertexFaces[v], faceID)

		key := newEdgeKey(v, ids[(i+1)%4])
		edge, ok := m.edgeIndex[key]
		if !ok {
			edge = len(m.edges)
			m.edges = append(m.edges, key)
			m.edgeFaces = append(m.edgeFaces, nil)
			m.edgeIndex[key] = edge
		}
		m.edgeFaces[edge] = append(m.edgeFaces[edge], faceID)
	}
	return nil
}

// weld returns the id of the vertex within WeldTolerance of p. Pending
// vertices are numbered after the existing ones.
func (m *Mesh) weld(p geometry.Vector3, pending []geometry.Vector3) (int, bool) {
	for i, q := range m.points {
		if p.Distance(q) < WeldTolerance {
			return i, false
		}
	}
	for i, q := range pending {
		if p.Distance(q) < WeldTolerance {
			return len(m.points) + i, false
		}
	}
	return len(m.points) + len(pending), true
}

func (m *Mesh) hasFace(ids [4]int) bool {
	candidates := m.vertexFaces
	if ids[0] >= len(candidates) {
		return false
	}
	for _, f := range candidates[ids[0]] {
		if sameVertices(m.faces[f], ids) {
			return true
		}
	}
	return false
}

func sameVertices(a, b [4]int) bool {
	for _, v := range a {
		found := false
		for _, w := range b {
			if v == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
