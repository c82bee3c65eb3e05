// Package replay runs the event script of a scene file through an
// interaction session.
package replay

import (
	"fmt"

	"github.com/philipparndt/gomvg/internal/meshstore"
	"github.com/philipparndt/gomvg/internal/monitoring"
	"github.com/philipparndt/gomvg/internal/scenefile"
	"github.com/philipparndt/gomvg/pkg/interaction"
	"github.com/philipparndt/gomvg/pkg/pick"
	"github.com/philipparndt/gomvg/pkg/reconstruct"
)

// Step is the outcome of one scripted event
type Step struct {
	Index int
	Event scenefile.Event
	X, Y  float64 // Pointer position in pixels, if the event has one
	State interaction.State
	Pick  pick.State
	Err   error
}

// Report is the result of a replay
type Report struct {
	Steps []Step
	Store *meshstore.Store
	Final interaction.Snapshot
}

// Failed returns the steps that ended with an error
func (r *Report) Failed() []Step {
	var failed []Step
	for _, s := range r.Steps {
		if s.Err != nil {
			failed = append(failed, s)
		}
	}
	return failed
}

// Overrides change the scene's session options from the command line
type Overrides struct {
	ConnectFace        *bool
	PredictFourthPoint *bool
}

// Run replays every event of the scene. Event errors are recorded in the
// report; only a scene that cannot be set up fails the run.
func Run(scene *scenefile.Scene, overrides Overrides) (*Report, error) {
	session, store, err := NewSession(scene, overrides)
	if err != nil {
		return nil, err
	}

	report := &Report{Store: store}
	for i, event := range scene.Events {
		step := Step{Index: i, Event: event}
		step.X, step.Y, step.Err = position(session, event)
		if step.Err == nil {
			step.Err = apply(scene, session, event, step.X, step.Y)
		}
		if step.Err != nil {
			monitoring.Logf("replay: event %d (%s): %v", i, event.Type, step.Err)
		}

		snap := session.Snapshot()
		step.State = snap.State
		step.Pick = snap.Pick.State
		report.Steps = append(report.Steps, step)
	}
	report.Final = session.Snapshot()
	return report, nil
}

// NewSession sets up the session, store and depth reference of a scene
func NewSession(scene *scenefile.Scene, overrides Overrides) (*interaction.Session, *meshstore.Store, error) {
	camera, err := scene.Camera("")
	if err != nil {
		return nil, nil, err
	}
	cloud, err := scene.LoadCloud()
	if err != nil {
		return nil, nil, err
	}
	store, err := scene.LoadMeshes()
	if err != nil {
		return nil, nil, err
	}

	recon := reconstruct.New(cloud)
	recon.Fallback = scene.FallbackPlane()

	options := interaction.DefaultOptions()
	if scene.Options.ConnectFace != nil {
		options.ConnectFace = *scene.Options.ConnectFace
	}
	options.PredictFourthPoint = scene.Options.PredictFourthPoint
	if overrides.ConnectFace != nil {
		options.ConnectFace = *overrides.ConnectFace
	}
	if overrides.PredictFourthPoint != nil {
		options.PredictFourthPoint = *overrides.PredictFourthPoint
	}

	session := interaction.NewSession(scene.NewView(camera, nil), store, store, recon, options)
	if scene.Options.PixelTolerance > 0 {
		session.SetPickEngine(&pick.Engine{PixelTolerance: scene.Options.PixelTolerance})
	}
	return session, store, nil
}

// position returns the event's pointer in pixels of the session's view
func position(session *interaction.Session, event scenefile.Event) (float64, float64, error) {
	if event.At == nil {
		return event.X, event.Y, nil
	}
	x, y, err := session.View().WorldToScreen(event.At.Vector())
	if err != nil {
		return 0, 0, fmt.Errorf("place pointer at %v: %w", *event.At, err)
	}
	return x, y, nil
}

func apply(scene *scenefile.Scene, session *interaction.Session, event scenefile.Event, x, y float64) error {
	switch event.Type {
	case scenefile.EventMove:
		return session.Move(x, y)
	case scenefile.EventPress:
		return session.Press(x, y)
	case scenefile.EventDrag:
		return session.Drag(x, y)
	case scenefile.EventRelease:
		return session.Release(x, y)
	case scenefile.EventClick:
		if err := session.Press(x, y); err != nil {
			return err
		}
		return session.Release(x, y)
	case scenefile.EventCancel:
		session.Cancel()
	case scenefile.EventSetConnectFace:
		session.SetConnectFace(*event.Enabled)
	case scenefile.EventSetView:
		camera, err := scene.Camera(event.Camera)
		if err != nil {
			return err
		}
		// Keep the camera pointer when only the viewport changes
		if current := session.View(); current != nil && current.Camera != nil && current.Camera.Name == camera.Name {
			camera = current.Camera
		}
		session.SetView(scene.NewView(camera, event.View))
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
	return nil
}
