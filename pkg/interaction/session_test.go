package interaction

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/philipparndt/gomvg/internal/meshstore"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/pointcloud"
	"github.com/philipparndt/gomvg/pkg/reconstruct"
	"github.com/philipparndt/gomvg/pkg/scene"
	"github.com/philipparndt/gomvg/pkg/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-6)

type fixture struct {
	view    *viewer.View
	store   *meshstore.Store
	session *Session
}

func groundCloud() *pointcloud.Cloud {
	var points []geometry.Vector3
	for x := -4.0; x <= 4.0; x += 0.5 {
		for y := -4.0; y <= 4.0; y += 0.5 {
			points = append(points, geometry.NewVector3(x, y, 0))
		}
	}
	return pointcloud.New(points)
}

func newFixture(t *testing.T, cloud scene.PointCloud, opts Options) *fixture {
	t.Helper()
	camera := viewer.NewCamera("top", geometry.NewVector3(0, 0, 10), geometry.NewVector3(0, 0, 0))
	view := viewer.NewView(camera, 800, 600)
	store := meshstore.New()
	return &fixture{
		view:    view,
		store:   store,
		session: NewSession(view, store, store, reconstruct.New(cloud), opts),
	}
}

func (f *fixture) screen(t *testing.T, x, y float64) (float64, float64) {
	t.Helper()
	sx, sy, err := f.view.WorldToScreen(geometry.NewVector3(x, y, 0))
	require.NoError(t, err)
	return sx, sy
}

func (f *fixture) press(t *testing.T, x, y float64) error {
	t.Helper()
	sx, sy := f.screen(t, x, y)
	return f.session.Press(sx, sy)
}

func (f *fixture) camera(t *testing.T, p geometry.Vector3) geometry.Vector2 {
	t.Helper()
	c, err := f.view.WorldToCamera(p)
	require.NoError(t, err)
	return c
}

func TestSessionBuildsFace(t *testing.T) {
	f := newFixture(t, groundCloud(), Options{})

	require.NoError(t, f.press(t, -1, -1))
	assert.Equal(t, Picking, f.session.State())
	require.NoError(t, f.press(t, 1, -1))
	require.NoError(t, f.press(t, 1, 1))
	assert.Len(t, f.session.Snapshot().Points, 3)
	require.NoError(t, f.press(t, -1, 1))

	snap := f.session.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Points)
	require.NotNil(t, snap.LastFace)

	expected := geometry.Quad{
		geometry.NewVector3(-1, -1, 0),
		geometry.NewVector3(1, -1, 0),
		geometry.NewVector3(1, 1, 0),
		geometry.NewVector3(-1, 1, 0),
	}
	if diff := cmp.Diff(expected, *snap.LastFace, approx); diff != "" {
		t.Errorf("face mismatch (-want +got):\n%s", diff)
	}

	meshes := f.store.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, snap.LastMeshID, meshes[0].ID())
	assert.Equal(t, 1, meshes[0].FaceCount())
}

func TestSessionConnectFace(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())

	for _, p := range [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		require.NoError(t, f.press(t, p[0], p[1]))
	}

	snap := f.session.Snapshot()
	require.NotNil(t, snap.LastFace)
	first := *snap.LastFace

	// Next face is seeded with the last two corners, reversed
	assert.Equal(t, Picking, snap.State)
	assert.Equal(t, []geometry.Vector2{f.camera(t, first[3]), f.camera(t, first[2])}, snap.Points)

	require.NoError(t, f.press(t, 1, 2))
	require.NoError(t, f.press(t, -1, 2))

	snap = f.session.Snapshot()
	require.NotNil(t, snap.LastFace)
	second := *snap.LastFace
	assert.Equal(t, first[3], second[0])
	assert.Equal(t, first[2], second[1])

	meshes := f.store.Meshes()
	require.Len(t, meshes, 1)
	assert.Equal(t, 2, meshes[0].FaceCount())
	assert.Equal(t, 6, meshes[0].VertexCount())
}

func TestSessionPredictFourthPoint(t *testing.T) {
	f := newFixture(t, groundCloud(), Options{PredictFourthPoint: true})

	require.NoError(t, f.press(t, -1, 1))
	require.NoError(t, f.press(t, -1, -1))

	x, y := f.screen(t, 1, -1)
	require.NoError(t, f.session.Move(x, y))
	snap := f.session.Snapshot()
	require.NotNil(t, snap.Predicted)
	assert.True(t, snap.Predicted.ApproxEqual(f.camera(t, geometry.NewVector3(1, 1, 0)), 1e-9))

	require.NoError(t, f.session.Press(x, y))
	snap = f.session.Snapshot()
	assert.Equal(t, Idle, snap.State)
	require.NotNil(t, snap.LastFace)
	assert.True(t, snap.LastFace[3].ApproxEqual(geometry.NewVector3(1, 1, 0), 1e-6), "got %v", snap.LastFace[3])
}

func TestSessionProjectionFailureKeepsPoints(t *testing.T) {
	f := newFixture(t, pointcloud.New(nil), Options{})

	require.NoError(t, f.press(t, -1, -1))
	require.NoError(t, f.press(t, 1, -1))
	require.NoError(t, f.press(t, 1, 1))
	before := f.session.Snapshot().Points

	err := f.press(t, -1, 1)
	assert.ErrorIs(t, err, reconstruct.ErrProjectionFailed)

	snap := f.session.Snapshot()
	assert.Equal(t, Picking, snap.State)
	assert.Equal(t, before, snap.Points)
	assert.Empty(t, f.store.Meshes())
}

type rejectingEditor struct {
	calls int
}

func (e *rejectingEditor) CommitFace(string, geometry.Quad) (string, error) {
	e.calls++
	return "", scene.ErrInvalidTopology
}

func TestSessionTopologyRejectionKeepsPoints(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	editor := &rejectingEditor{}
	f.session.editor = editor

	for _, p := range [][2]float64{{-1, -1}, {1, -1}, {1, 1}} {
		require.NoError(t, f.press(t, p[0], p[1]))
	}
	err := f.press(t, -1, 1)
	assert.ErrorIs(t, err, scene.ErrInvalidTopology)
	assert.Equal(t, 1, editor.calls)

	snap := f.session.Snapshot()
	assert.Equal(t, Picking, snap.State)
	assert.Len(t, snap.Points, 3)
	assert.Nil(t, snap.LastFace)
}

func TestSessionExtendEdge(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	meshID, err := f.store.CommitFace("", geometry.Quad{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(1, 1, 0),
		geometry.NewVector3(0, 1, 0),
	})
	require.NoError(t, err)

	require.NoError(t, f.press(t, 0.5, 0))
	snap := f.session.Snapshot()
	require.Equal(t, EdgeDragging, snap.State)
	require.NotNil(t, snap.Pick.Edge)
	assert.InDelta(t, 0.5, snap.Pick.Edge.Ratio, 1e-9)

	// Without movement the extension has no area
	x, y := f.screen(t, 0.5, 0)
	assert.ErrorIs(t, f.session.Drag(x, y), reconstruct.ErrDegenerateGeometry)
	assert.Nil(t, f.session.Snapshot().Preview)

	x, y = f.screen(t, 0.5, -1)
	require.NoError(t, f.session.Drag(x, y))
	snap = f.session.Snapshot()
	require.NotNil(t, snap.Preview)
	preview := *snap.Preview
	assert.Equal(t, geometry.NewVector3(1, 0, 0), preview[0])
	assert.Equal(t, geometry.NewVector3(0, 0, 0), preview[1])
	assert.True(t, preview[3].Sub(preview[2]).ApproxEqual(geometry.NewVector3(1, 0, 0), 1e-9))
	assert.True(t, preview[2].ApproxEqual(geometry.NewVector3(0, -1, 0), 1e-6), "got %v", preview[2])

	// A failing update keeps the last good preview
	x0, y0 := f.screen(t, 0.5, 0)
	assert.Error(t, f.session.Drag(x0, y0))
	assert.Equal(t, preview, *f.session.Snapshot().Preview)

	require.NoError(t, f.session.Release(x, y))
	snap = f.session.Snapshot()
	assert.Nil(t, snap.Preview)
	assert.Equal(t, meshID, snap.LastMeshID)
	assert.Equal(t, Picking, snap.State)
	assert.Len(t, snap.Points, 2)

	m, ok := f.store.Mesh(meshID)
	require.True(t, ok)
	assert.Equal(t, 2, m.FaceCount())
	assert.Equal(t, 6, m.VertexCount())
}

func TestSessionReleaseWithoutDrag(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	_, err := f.store.CommitFace("", geometry.Quad{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(1, 1, 0),
		geometry.NewVector3(0, 1, 0),
	})
	require.NoError(t, err)

	require.NoError(t, f.press(t, 0.5, 0))
	require.Equal(t, EdgeDragging, f.session.State())

	x, y := f.screen(t, 0.5, 0)
	require.NoError(t, f.session.Release(x, y))
	assert.Equal(t, Idle, f.session.State())
	assert.Equal(t, 1, f.store.Meshes()[0].FaceCount())
}

func TestSessionPressOnVertex(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	_, err := f.store.CommitFace("", geometry.Quad{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(1, 1, 0),
		geometry.NewVector3(0, 1, 0),
	})
	require.NoError(t, err)

	// A couple of pixels off the corner still snaps onto it
	x, y := f.screen(t, 1, 1)
	require.NoError(t, f.session.Press(x+2, y-1))
	snap := f.session.Snapshot()
	assert.Equal(t, Picking, snap.State)
	require.NotNil(t, snap.Pick.Point)
	assert.Equal(t, 2, snap.Pick.Point.VertexIndex)
	require.Len(t, snap.Points, 1)
	assert.True(t, snap.Points[0].ApproxEqual(f.camera(t, geometry.NewVector3(1, 1, 0)), 1e-12), "got %v", snap.Points[0])
}

func TestSessionFaceFromExistingVertices(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	_, err := f.store.CommitFace("", geometry.Quad{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(1, 1, 0),
		geometry.NewVector3(0, 1, 0),
	})
	require.NoError(t, err)

	for _, p := range [][2]float64{{1, 0}, {2, 0}, {2, 1}, {1, 1}} {
		require.NoError(t, f.press(t, p[0], p[1]))
	}

	snap := f.session.Snapshot()
	require.NotNil(t, snap.LastFace)
	assert.True(t, snap.LastFace[0].ApproxEqual(geometry.NewVector3(1, 0, 0), 1e-6), "got %v", snap.LastFace[0])
	assert.True(t, snap.LastFace[3].ApproxEqual(geometry.NewVector3(1, 1, 0), 1e-6), "got %v", snap.LastFace[3])
}

func TestSessionRejectedReleaseKeepsDrag(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	meshID, err := f.store.CommitFace("", geometry.Quad{
		geometry.NewVector3(0, 0, 0),
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(1, 1, 0),
		geometry.NewVector3(0, 1, 0),
	})
	require.NoError(t, err)

	require.NoError(t, f.press(t, 0.5, 0))
	x, y := f.screen(t, 0.5, -1)
	require.NoError(t, f.session.Drag(x, y))
	preview := f.session.Snapshot().Preview
	require.NotNil(t, preview)

	editor := &rejectingEditor{}
	f.session.editor = editor
	err = f.session.Release(x, y)
	assert.ErrorIs(t, err, scene.ErrInvalidTopology)
	assert.Equal(t, 1, editor.calls)

	snap := f.session.Snapshot()
	assert.Equal(t, EdgeDragging, snap.State)
	require.NotNil(t, snap.Preview)
	assert.Equal(t, *preview, *snap.Preview)
	assert.Nil(t, snap.LastFace)

	// Retrying against a working editor commits the kept extension
	f.session.editor = f.store
	require.NoError(t, f.session.Release(x, y))
	snap = f.session.Snapshot()
	assert.Nil(t, snap.Preview)
	assert.Equal(t, meshID, snap.LastMeshID)

	m, ok := f.store.Mesh(meshID)
	require.True(t, ok)
	assert.Equal(t, 2, m.FaceCount())
}

func TestSessionSetView(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	require.NoError(t, f.press(t, -1, -1))
	require.NoError(t, f.press(t, 1, -1))

	// Same camera, panned: camera-space points stay valid
	panned := *f.view
	panned.Pan = geometry.NewVector2(0.1, 0)
	f.session.SetView(&panned)
	assert.Len(t, f.session.Snapshot().Points, 2)
	assert.Same(t, &panned, f.session.View())

	other := viewer.NewView(viewer.NewCamera("side", geometry.NewVector3(10, 0, 0), geometry.Vector3{}), 800, 600)
	f.session.SetView(other)
	snap := f.session.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Points)
}

func TestSessionCancel(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	require.NoError(t, f.press(t, -1, -1))

	f.session.Cancel()
	assert.Equal(t, Idle, f.session.State())
	assert.Empty(t, f.session.Snapshot().Points)
}

func TestSessionSetConnectFace(t *testing.T) {
	f := newFixture(t, groundCloud(), DefaultOptions())
	for _, p := range [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		require.NoError(t, f.press(t, p[0], p[1]))
	}
	require.Len(t, f.session.Snapshot().Points, 2)

	f.session.SetConnectFace(false)
	assert.Nil(t, f.session.pinned)
	assert.Empty(t, f.session.chainMesh)

	// The seed points now build a face in a new mesh
	require.NoError(t, f.press(t, 1, 2))
	require.NoError(t, f.press(t, -1, 2))
	assert.Equal(t, Idle, f.session.State())
	assert.Len(t, f.store.Meshes(), 2)
}

func TestSessionInvalidCamera(t *testing.T) {
	store := meshstore.New()
	s := NewSession(viewer.NewView(nil, 800, 600), store, store, reconstruct.New(groundCloud()), DefaultOptions())

	err := s.Press(100, 100)
	assert.ErrorIs(t, err, viewer.ErrInvalidCamera)
	assert.Equal(t, Idle, s.State())
	assert.Empty(t, s.Snapshot().Points)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "picking", Picking.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "edge-dragging", EdgeDragging.String())
}
