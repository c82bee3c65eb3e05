// Package pick finds the mesh vertex or edge under the pointer.
package pick

import (
	"errors"
	"fmt"
	"math"

	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/reconstruct"
	"github.com/philipparndt/gomvg/pkg/scene"
	"github.com/philipparndt/gomvg/pkg/viewer"
)

// DefaultPixelTolerance is the pick radius in screen pixels
const DefaultPixelTolerance = 4

// State tells what is under the pointer
type State int

const (
	StateNone State = iota
	StatePoint
	StateEdge
)

func (s State) String() string {
	switch s {
	case StatePoint:
		return "point"
	case StateEdge:
		return "edge"
	default:
		return "none"
	}
}

// PointIntersection is a picked mesh vertex
type PointIntersection struct {
	MeshID         string
	VertexIndex    int
	Position       geometry.Vector3
	ConnectedFaces int
}

// EdgeIntersection is a picked mesh edge that can still be extended
type EdgeIntersection struct {
	MeshID       string
	EdgeID       int
	PointIndexes [2]int
	Start        geometry.Vector3 // Position of PointIndexes[0]
	End          geometry.Vector3 // Position of PointIndexes[1]
	Height2D     geometry.Vector2 // End - Start in camera space
	Height3D     geometry.Vector3 // End - Start in world space
	// Ratio locates the pointer along the edge: 0 at End, 1 at Start
	Ratio float64
	// AdjacentPlane is the plane of the face using the edge, nil when it
	// cannot be fitted
	AdjacentPlane *geometry.Plane
}

// Constraint returns the reconstruction input for dragging the edge to pointer
func (e EdgeIntersection) Constraint(pointer geometry.Vector2) reconstruct.EdgeConstraint {
	return reconstruct.EdgeConstraint{
		Start:         e.Start,
		End:           e.End,
		Ratio:         e.Ratio,
		Pointer:       pointer,
		AdjacentPlane: e.AdjacentPlane,
	}
}

// Result is the outcome of one pick
type Result struct {
	State   State
	Pointer geometry.Vector2 // Pointer in camera space
	Point   *PointIntersection
	Edge    *EdgeIntersection
}

// Engine picks vertices and edges in screen space
type Engine struct {
	PixelTolerance float64
}

// NewEngine creates an engine with the default tolerance
func NewEngine() *Engine {
	return &Engine{PixelTolerance: DefaultPixelTolerance}
}

// screenVertex is a vertex projected through the view
type screenVertex struct {
	screen  geometry.Vector2
	camera  geometry.Vector2
	visible bool
}

// Update recomputes what lies under the pixel (x, y). Vertices win over edges;
// within each kind the first match in mesh order is returned.
func (e *Engine) Update(view *viewer.View, meshes []scene.Mesh, x, y float64) (Result, error) {
	pointer, err := view.ScreenToCamera(x, y)
	if err != nil {
		return Result{}, err
	}
	result := Result{State: StateNone, Pointer: pointer}

	tol := e.PixelTolerance
	if tol <= 0 {
		tol = DefaultPixelTolerance
	}
	cursor := geometry.NewVector2(x, y)

	projected := make([][]screenVertex, len(meshes))
	for i, m := range meshes {
		vertices, err := project(view, m.Points())
		if err != nil {
			return Result{}, err
		}
		projected[i] = vertices
	}

	// Vertices first
	for i, m := range meshes {
		for v, sv := range projected[i] {
			if !sv.visible {
				continue
			}
			if math.Abs(sv.screen.X-x) <= tol && math.Abs(sv.screen.Y-y) <= tol {
				result.State = StatePoint
				result.Point = &PointIntersection{
					MeshID:         m.ID(),
					VertexIndex:    v,
					Position:       m.Points()[v],
					ConnectedFaces: len(m.ConnectedFacesToVertex(v)),
				}
				return result, nil
			}
		}
	}

	for i, m := range meshes {
		points := m.Points()
		for edge := 0; edge < m.EdgeCount(); edge++ {
			v0, v1, err := m.EdgeVertices(edge)
			if err != nil {
				return Result{}, fmt.Errorf("mesh %s: %w", m.ID(), err)
			}
			s0, s1 := projected[i][v0], projected[i][v1]
			if !s0.visible || !s1.visible {
				continue
			}
			// Interior edges cannot take another face
			faces := m.ConnectedFacesToEdge(edge)
			if len(faces) >= 2 {
				continue
			}

			closest, t := geometry.ClosestPointOnSegment2D(cursor, s0.screen, s1.screen)
			if closest.Distance(cursor) > tol || s0.screen.Distance(s1.screen) == 0 {
				continue
			}

			// The pointer is snapped onto the edge; t in [0, 1] keeps it between
			// the endpoints
			height := s1.camera.Sub(s0.camera)
			snapped := s0.camera.Add(height.Mul(t))
			ratio := math.Min(1, math.Max(0, snapped.Distance(s1.camera)/height.Length()))
			result.State = StateEdge
			result.Edge = &EdgeIntersection{
				MeshID:        m.ID(),
				EdgeID:        edge,
				PointIndexes:  [2]int{v0, v1},
				Start:         points[v0],
				End:           points[v1],
				Height2D:      height,
				Height3D:      points[v1].Sub(points[v0]),
				Ratio:         ratio,
				AdjacentPlane: adjacentPlane(m, faces),
			}
			return result, nil
		}
	}

	return result, nil
}

func project(view *viewer.View, points []geometry.Vector3) ([]screenVertex, error) {
	out := make([]screenVertex, len(points))
	for i, p := range points {
		c, err := view.WorldToCamera(p)
		if errors.Is(err, viewer.ErrBehindCamera) {
			continue
		}
		if err != nil {
			return nil, err
		}
		x, y, err := view.CameraToScreen(c)
		if err != nil {
			return nil, err
		}
		out[i] = screenVertex{screen: geometry.NewVector2(x, y), camera: c, visible: true}
	}
	return out, nil
}

// adjacentPlane fits the plane of the single face on a boundary edge
func adjacentPlane(m scene.Mesh, faces []int) *geometry.Plane {
	if len(faces) != 1 {
		return nil
	}
	all := m.Points()
	var corners []geometry.Vector3
	for _, v := range m.FaceVertices(faces[0]) {
		if v >= 0 && v < len(all) {
			corners = append(corners, all[v])
		}
	}
	plane, err := geometry.FitPlane(corners)
	if err != nil {
		return nil
	}
	return &plane
}
