package reconstruct

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xAxisEdge(t *testing.T, pointer geometry.Vector3) EdgeConstraint {
	t.Helper()
	p, err := topView().WorldToCamera(pointer)
	require.NoError(t, err)
	return EdgeConstraint{
		Start:   geometry.NewVector3(-1, 0, 0),
		End:     geometry.NewVector3(1, 0, 0),
		Ratio:   0.5,
		Pointer: p,
	}
}

func TestExtendEdge(t *testing.T) {
	t.Parallel()

	expected := geometry.Quad{
		geometry.NewVector3(1, 0, 0),
		geometry.NewVector3(-1, 0, 0),
		geometry.NewVector3(-1, 1, 0),
		geometry.NewVector3(1, 1, 0),
	}

	tests := []struct {
		name  string
		recon *Reconstructor
	}{
		{"plane fitted to the cloud", New(groundCloud())},
		{"plane facing the camera", New(nil)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := xAxisEdge(t, geometry.NewVector3(0, 1, 0))

			face, err := tt.recon.ProjectFace2D(topView(), nil, Options{Extend: &c})
			require.NoError(t, err)

			// Shared corners are the edge vertices, bit for bit
			assert.Equal(t, c.End, face[0])
			assert.Equal(t, c.Start, face[1])
			if diff := cmp.Diff(expected, face, approx); diff != "" {
				t.Errorf("face mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, face[3].Sub(face[2]).ApproxEqual(c.Height3D(), 1e-9))
		})
	}
}

func TestExtendEdgeAdjacentPlane(t *testing.T) {
	// Plane z = y contains the edge on the X axis
	plane := geometry.NewPlane(geometry.Vector3{}, geometry.NewVector3(0, -1, 1))
	c := xAxisEdge(t, geometry.NewVector3(0, 1, 0))
	c.AdjacentPlane = &plane

	face, err := New(nil).ProjectFace2D(topView(), nil, Options{Extend: &c})
	require.NoError(t, err)

	for i, p := range face {
		assert.InDelta(t, p.Y, p.Z, 1e-9, "corner %d", i)
	}
	assert.InDelta(t, 10.0/11.0, face[2].Y, 1e-9)
	assert.True(t, face[3].Sub(face[2]).ApproxEqual(c.Height3D(), 1e-9))
}

func TestExtendEdgeWithoutDrag(t *testing.T) {
	c := xAxisEdge(t, geometry.NewVector3(0, 0, 0))

	preview, err := PreviewPoints2D(topView(), c)
	require.NoError(t, err)
	assert.True(t, preview[2].ApproxEqual(preview[1], 1e-12))
	assert.True(t, preview[3].ApproxEqual(preview[0], 1e-12))

	_, err = New(groundCloud()).ProjectFace2D(topView(), nil, Options{Extend: &c})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestExtendEdgeZeroLength(t *testing.T) {
	c := EdgeConstraint{Start: geometry.NewVector3(1, 1, 0), End: geometry.NewVector3(1, 1, 0)}
	_, err := New(nil).ProjectFace2D(topView(), nil, Options{Extend: &c})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestPreviewPoints2DRatio(t *testing.T) {
	c := xAxisEdge(t, geometry.NewVector3(0.5, 1, 0))
	c.Ratio = 0.25

	preview, err := PreviewPoints2D(topView(), c)
	require.NoError(t, err)

	// Far side keeps the edge's screen height with the pointer at the ratio
	h := preview[0].Sub(preview[1])
	assert.True(t, preview[3].Sub(preview[2]).ApproxEqual(h, 1e-12))
	assert.True(t, preview[2].Add(h.Mul(0.75)).ApproxEqual(c.Pointer, 1e-12))
}
