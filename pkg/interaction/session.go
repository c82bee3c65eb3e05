// Package interaction drives face construction from pointer events. A Session
// turns clicks into build points, commits finished quads through a mesh
// editor and lets the user extend boundary edges by dragging them.
package interaction

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gomvg/internal/monitoring"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/pick"
	"github.com/philipparndt/gomvg/pkg/reconstruct"
	"github.com/philipparndt/gomvg/pkg/scene"
	"github.com/philipparndt/gomvg/pkg/viewer"
)

// MeshSource lists the meshes the pointer can pick
type MeshSource interface {
	SceneMeshes() []scene.Mesh
}

// Session is the face-building state machine of one viewport.
// It is not safe for concurrent use.
type Session struct {
	view    *viewer.View
	meshes  MeshSource
	editor  scene.MeshEditor
	recon   *reconstruct.Reconstructor
	engine  *pick.Engine
	options Options

	state     State
	points    []geometry.Vector2
	predicted *geometry.Vector2
	pick      pick.Result

	// Edge being dragged and its current extension
	edge    *pick.EdgeIntersection
	preview *geometry.Quad

	// World positions of points[0] and points[1] when chaining faces, and
	// the mesh the chain grows
	pinned    []geometry.Vector3
	chainMesh string

	lastFace   *geometry.Quad
	lastMeshID string
}

// NewSession creates an idle session
func NewSession(view *viewer.View, meshes MeshSource, editor scene.MeshEditor, recon *reconstruct.Reconstructor, options Options) *Session {
	return &Session{
		view:    view,
		meshes:  meshes,
		editor:  editor,
		recon:   recon,
		engine:  pick.NewEngine(),
		options: options,
	}
}

// SetPickEngine replaces the pick engine, e.g. to change the tolerance
func (s *Session) SetPickEngine(engine *pick.Engine) {
	s.engine = engine
}

// State returns the current phase
func (s *Session) State() State {
	return s.state
}

// View returns the viewport the session works in
func (s *Session) View() *viewer.View {
	return s.view
}

// Snapshot returns a copy of the session state
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:      s.state,
		Pick:       s.pick,
		Points:     append([]geometry.Vector2(nil), s.points...),
		LastMeshID: s.lastMeshID,
	}
	if s.predicted != nil {
		p := *s.predicted
		snap.Predicted = &p
	}
	if s.preview != nil {
		q := *s.preview
		snap.Preview = &q
	}
	if s.lastFace != nil {
		q := *s.lastFace
		snap.LastFace = &q
	}
	return snap
}

// Move updates what lies under the pointer
func (s *Session) Move(x, y float64) error {
	res, err := s.engine.Update(s.view, s.sceneMeshes(), x, y)
	if err != nil {
		return s.fail(err)
	}
	s.pick = res

	s.predicted = nil
	if s.options.PredictFourthPoint && s.state == Picking && len(s.points) == 2 {
		p := reconstruct.PredictFourthPoint(s.points[0], s.points[1], res.Pointer)
		s.predicted = &p
	}
	return nil
}

// Press handles a button press: it grabs an edge or adds a build point,
// snapped onto the vertex under the pointer if any, committing the face once
// four corners are known
func (s *Session) Press(x, y float64) error {
	if s.state == EdgeDragging {
		return nil
	}
	if err := s.Move(x, y); err != nil {
		return err
	}

	pointer := s.pick.Pointer
	switch s.pick.State {
	case pick.StateEdge:
		s.edge = s.pick.Edge
		s.preview = nil
		s.state = EdgeDragging
		return nil
	case pick.StatePoint:
		// Snap the build point onto the vertex
		if p, err := s.view.WorldToCamera(s.pick.Point.Position); err == nil {
			pointer = p
		}
		monitoring.Logf("interaction: snapped to vertex %d of mesh %s", s.pick.Point.VertexIndex, s.pick.Point.MeshID)
	}

	before := len(s.points)
	s.points = append(s.points, pointer)
	if s.options.PredictFourthPoint && len(s.points) == 3 {
		s.points = append(s.points, reconstruct.PredictFourthPoint(s.points[0], s.points[1], s.points[2]))
	}
	s.predicted = nil

	if len(s.points) < 4 {
		s.state = Picking
		return nil
	}

	s.state = Ready
	if err := s.commitPoints(); err != nil {
		if s.state != Idle {
			s.points = s.points[:before]
			s.state = Picking
		}
		return err
	}
	return nil
}

// Drag moves the extension of a grabbed edge. A failed update keeps the
// previous preview.
func (s *Session) Drag(x, y float64) error {
	if s.state != EdgeDragging {
		return nil
	}
	pointer, err := s.view.ScreenToCamera(x, y)
	if err != nil {
		return s.fail(err)
	}

	c := s.edge.Constraint(pointer)
	face, err := s.recon.ProjectFace2D(s.view, nil, reconstruct.Options{Extend: &c})
	if err != nil {
		return s.fail(err)
	}
	s.preview = &face
	return nil
}

// Release commits the dragged extension to the mesh owning the edge. A
// rejected extension keeps the drag and its preview so the next Release can
// retry.
func (s *Session) Release(x, y float64) error {
	if s.state != EdgeDragging {
		return nil
	}
	if s.preview == nil {
		s.edge = nil
		s.state = s.restState()
		return nil
	}

	face := *s.preview
	meshID, err := s.editor.CommitFace(s.edge.MeshID, face)
	if err != nil {
		return fmt.Errorf("commit extension of edge %d: %w", s.edge.EdgeID, err)
	}
	s.edge, s.preview = nil, nil
	s.state = s.restState()
	s.committed(meshID, face)
	return nil
}

// SetView switches the viewport. Looking through another camera invalidates
// the build points, so the session starts over.
func (s *Session) SetView(view *viewer.View) {
	if !s.view.SameCamera(view) {
		s.reset()
	}
	s.view = view
}

// Cancel drops the build points and any drag in progress
func (s *Session) Cancel() {
	s.reset()
}

// SetConnectFace toggles chaining. Turning it off forgets the chained edge
// but keeps the build points.
func (s *Session) SetConnectFace(enabled bool) {
	s.options.ConnectFace = enabled
	if !enabled {
		s.pinned = nil
		s.chainMesh = ""
	}
}

// commitPoints reconstructs the four build points and hands the face to the
// editor. Build points are left for the caller to restore on failure.
func (s *Session) commitPoints() error {
	face, err := s.recon.ProjectFace2D(s.view, s.points, reconstruct.Options{Pinned: s.pinned})
	if err != nil {
		return s.fail(err)
	}
	meshID, err := s.editor.CommitFace(s.chainMesh, face)
	if err != nil {
		return fmt.Errorf("commit face: %w", err)
	}
	s.points = nil
	s.pinned = nil
	s.chainMesh = ""
	s.state = Idle
	s.committed(meshID, face)
	return nil
}

// committed records a new face and, when chaining, seeds the next face with
// its last edge reversed so that both faces share it
func (s *Session) committed(meshID string, face geometry.Quad) {
	monitoring.Logf("interaction: committed face to mesh %s", meshID)
	s.lastFace = &face
	s.lastMeshID = meshID

	if !s.options.ConnectFace {
		return
	}
	p0, err0 := s.view.WorldToCamera(face[3])
	p1, err1 := s.view.WorldToCamera(face[2])
	if err0 != nil || err1 != nil {
		monitoring.Logf("interaction: cannot chain from committed face: %v", errors.Join(err0, err1))
		return
	}
	s.points = []geometry.Vector2{p0, p1}
	s.pinned = []geometry.Vector3{face[3], face[2]}
	s.chainMesh = meshID
	s.state = Picking
}

// fail resets the session when the camera is unusable and passes err on
func (s *Session) fail(err error) error {
	if errors.Is(err, viewer.ErrInvalidCamera) {
		monitoring.Logf("interaction: %v, resetting", err)
		s.reset()
	}
	return err
}

func (s *Session) reset() {
	s.state = Idle
	s.points = nil
	s.predicted = nil
	s.pick = pick.Result{}
	s.edge = nil
	s.preview = nil
	s.pinned = nil
	s.chainMesh = ""
}

// restState is the state to return to after an edge drag
func (s *Session) restState() State {
	if len(s.points) > 0 {
		return Picking
	}
	return Idle
}

func (s *Session) sceneMeshes() []scene.Mesh {
	if s.meshes == nil {
		return nil
	}
	return s.meshes.SceneMeshes()
}
