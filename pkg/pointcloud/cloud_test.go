package pointcloud

import (
	"sort"
	"testing"

	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frontView() *viewer.View {
	camera := viewer.NewCamera("front", geometry.NewVector3(0, 0, 0), geometry.NewVector3(0, 0, -1))
	return viewer.NewView(camera, 800, 600)
}

func TestNearestPoint(t *testing.T) {
	t.Parallel()

	cloud := New([]geometry.Vector3{
		geometry.NewVector3(0.05, 0, -10),
		geometry.NewVector3(3, 3, -10),
		geometry.NewVector3(0, 0, 10), // behind the ray
	})

	t.Run("returns the sample under the ray", func(t *testing.T) {
		t.Parallel()
		p, ok := cloud.NearestPoint(geometry.NewRay(geometry.Vector3{}, geometry.NewVector3(0, 0, -1)))
		require.True(t, ok)
		assert.Equal(t, geometry.NewVector3(0.05, 0, -10), p)
	})

	t.Run("ignores samples outside the angular tolerance", func(t *testing.T) {
		t.Parallel()
		_, ok := cloud.NearestPoint(geometry.NewRay(geometry.Vector3{}, geometry.NewVector3(-1, -1, -1)))
		assert.False(t, ok)
	})

	t.Run("empty cloud has no nearest point", func(t *testing.T) {
		t.Parallel()
		_, ok := New(nil).NearestPoint(geometry.NewRay(geometry.Vector3{}, geometry.NewVector3(0, 0, -1)))
		assert.False(t, ok)
	})
}

func TestPointsInRegion(t *testing.T) {
	t.Parallel()

	view := frontView()
	inside := []geometry.Vector3{
		geometry.NewVector3(0, 0, -5),
		geometry.NewVector3(0.5, 0.5, -5),
		geometry.NewVector3(-0.5, -0.2, -8),
	}
	outside := []geometry.Vector3{
		geometry.NewVector3(10, 0, -5),
		geometry.NewVector3(0, 0, 5),
	}
	cloud := New(append(append([]geometry.Vector3{}, inside...), outside...))

	// Camera-space square around the image center
	square := []geometry.Vector2{{X: -0.4, Y: -0.4}, {X: 0.4, Y: -0.4}, {X: 0.4, Y: 0.4}, {X: -0.4, Y: 0.4}}
	got := cloud.PointsInRegion(view, square)

	sortPoints(got)
	sortPoints(inside)
	assert.Equal(t, inside, got)

	// Second query hits the cached index
	assert.Len(t, cloud.PointsInRegion(view, square), len(inside))
}

func TestPointsInRegionInvalidView(t *testing.T) {
	t.Parallel()

	cloud := New([]geometry.Vector3{geometry.NewVector3(0, 0, -5)})
	square := []geometry.Vector2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}}

	assert.Empty(t, cloud.PointsInRegion(viewer.NewView(nil, 100, 100), square))
	assert.Empty(t, cloud.PointsInRegion(frontView(), square[:2]))
}

func TestIndexRebuiltForMovedCamera(t *testing.T) {
	t.Parallel()

	view := frontView()
	cloud := New([]geometry.Vector3{geometry.NewVector3(0, 0, -5)})
	square := []geometry.Vector2{{X: -0.1, Y: -0.1}, {X: 0.1, Y: -0.1}, {X: 0.1, Y: 0.1}, {X: -0.1, Y: 0.1}}

	require.Len(t, cloud.PointsInRegion(view, square), 1)

	view.Camera.Target = geometry.NewVector3(10, 0, -1)
	assert.Empty(t, cloud.PointsInRegion(view, square))
}

func sortPoints(points []geometry.Vector3) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].X != points[j].X {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})
}
