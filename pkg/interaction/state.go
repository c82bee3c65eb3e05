package interaction

import (
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/pick"
)

// State is the phase of the face-building interaction
type State int

const (
	// Idle has no build points
	Idle State = iota
	// Picking accumulates camera-space corners
	Picking
	// Ready holds four corners about to be committed
	Ready
	// EdgeDragging extends a picked mesh edge while the button is held
	EdgeDragging
)

func (s State) String() string {
	switch s {
	case Picking:
		return "picking"
	case Ready:
		return "ready"
	case EdgeDragging:
		return "edge-dragging"
	default:
		return "idle"
	}
}

// Options control how faces are built
type Options struct {
	// ConnectFace seeds the next face with the last edge of the committed one
	ConnectFace bool
	// PredictFourthPoint completes three corners into a parallelogram
	PredictFourthPoint bool
}

// DefaultOptions returns the options of a fresh session
func DefaultOptions() Options {
	return Options{ConnectFace: true}
}

// Snapshot is a copy of the session state for drawing and reporting
type Snapshot struct {
	State State
	Pick  pick.Result
	// Points are the build points in camera space
	Points []geometry.Vector2
	// Predicted is the fourth corner the next click would complete, if any
	Predicted *geometry.Vector2
	// Preview is the face under construction while dragging an edge
	Preview *geometry.Quad
	// LastFace is the most recently committed face
	LastFace   *geometry.Quad
	LastMeshID string
}
