// Package scenefile loads replayable scenes: cameras, a point cloud, existing
// meshes and a script of pointer events, all described in YAML.
package scenefile

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/philipparndt/gomvg/internal/meshstore"
	"github.com/philipparndt/gomvg/pkg/geometry"
	"github.com/philipparndt/gomvg/pkg/pointcloud"
	"github.com/philipparndt/gomvg/pkg/viewer"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScene is returned for scene files that parse but make no sense
var ErrInvalidScene = errors.New("invalid scene")

// Vec3 is a YAML [x, y, z] triple
type Vec3 [3]float64

func (v Vec3) Vector() geometry.Vector3 {
	return geometry.NewVector3(v[0], v[1], v[2])
}

// CameraDef describes a calibrated camera
type CameraDef struct {
	Name     string  `yaml:"name"`
	Position Vec3    `yaml:"position"`
	Target   Vec3    `yaml:"target"`
	Up       *Vec3   `yaml:"up,omitempty"`
	FOV      float64 `yaml:"fov,omitempty"` // Vertical field of view in degrees
	Aspect   float64 `yaml:"aspect,omitempty"`
	Near     float64 `yaml:"near,omitempty"`
	Far      float64 `yaml:"far,omitempty"`

	// Synthetic views: the pose is orbited around the target by
	// [elevation, azimuth] degrees, then moved closer or further by Dolly
	// (-0.5 halves the distance)
	Orbit [2]float64 `yaml:"orbit,omitempty"`
	Dolly float64    `yaml:"dolly,omitempty"`
}

// ViewDef is the viewport the events are expressed in
type ViewDef struct {
	Width  float64    `yaml:"width"`
	Height float64    `yaml:"height"`
	Pan    [2]float64 `yaml:"pan,omitempty"`
	Zoom   float64    `yaml:"zoom,omitempty"`
}

// PlaneDef is a plane given by a point and a normal
type PlaneDef struct {
	Point  Vec3 `yaml:"point"`
	Normal Vec3 `yaml:"normal"`
}

// CloudDef lists the depth samples inline, in a whitespace separated XYZ
// file, or both
type CloudDef struct {
	Points []Vec3 `yaml:"points,omitempty"`
	File   string `yaml:"file,omitempty"`
	// MaxAngle overrides the angular tolerance of ray queries, in radians
	MaxAngle float64 `yaml:"max_angle,omitempty"`
}

// OptionsDef mirrors the session options
type OptionsDef struct {
	ConnectFace        *bool   `yaml:"connect_face,omitempty"`
	PredictFourthPoint bool    `yaml:"predict_fourth_point,omitempty"`
	PixelTolerance     float64 `yaml:"pixel_tolerance,omitempty"`
}

// MeshDef references an STL file with an existing quad mesh
type MeshDef struct {
	File string `yaml:"file"`
}

// Event types
const (
	EventMove           = "move"
	EventPress          = "press"
	EventDrag           = "drag"
	EventRelease        = "release"
	EventClick          = "click"
	EventCancel         = "cancel"
	EventSetView        = "set_view"
	EventSetConnectFace = "set_connect_face"
)

// Event is one scripted user action. Positions are given in pixels or, with
// At, as a world point projected through the current view.
type Event struct {
	Type    string   `yaml:"type"`
	X       float64  `yaml:"x,omitempty"`
	Y       float64  `yaml:"y,omitempty"`
	At      *Vec3    `yaml:"at,omitempty"`
	Camera  string   `yaml:"camera,omitempty"`
	Enabled *bool    `yaml:"enabled,omitempty"`
	View    *ViewDef `yaml:"view,omitempty"`
}

// Scene is a parsed scene file
type Scene struct {
	Cameras  []CameraDef `yaml:"cameras"`
	View     ViewDef     `yaml:"view"`
	Fallback *PlaneDef   `yaml:"fallback_plane,omitempty"`
	Cloud    CloudDef    `yaml:"cloud"`
	Meshes   []MeshDef   `yaml:"meshes,omitempty"`
	Options  OptionsDef  `yaml:"options"`
	Events   []Event     `yaml:"events"`

	// dir resolves relative file references
	dir string
}

// Load reads and validates a scene file
func Load(filename string) (*Scene, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}
	return Parse(data, filepath.Dir(filename))
}

// Parse decodes a scene. dir is the base for relative file references.
func Parse(data []byte, dir string) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	s.dir = dir
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	if len(s.Cameras) == 0 {
		return fmt.Errorf("%w: no camera", ErrInvalidScene)
	}
	seen := make(map[string]bool)
	for i, c := range s.Cameras {
		if c.Name == "" {
			return fmt.Errorf("%w: camera %d has no name", ErrInvalidScene, i)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate camera %q", ErrInvalidScene, c.Name)
		}
		if c.Dolly <= -1 {
			return fmt.Errorf("%w: camera %q dolly %v collapses onto the target", ErrInvalidScene, c.Name, c.Dolly)
		}
		seen[c.Name] = true
	}
	if s.View.Width <= 0 || s.View.Height <= 0 {
		return fmt.Errorf("%w: view size %vx%v", ErrInvalidScene, s.View.Width, s.View.Height)
	}
	for i, e := range s.Events {
		switch e.Type {
		case EventMove, EventPress, EventDrag, EventRelease, EventClick, EventCancel:
		case EventSetView:
			if !seen[e.Camera] {
				return fmt.Errorf("%w: event %d uses unknown camera %q", ErrInvalidScene, i, e.Camera)
			}
		case EventSetConnectFace:
			if e.Enabled == nil {
				return fmt.Errorf("%w: event %d needs enabled", ErrInvalidScene, i)
			}
		default:
			return fmt.Errorf("%w: event %d has unknown type %q", ErrInvalidScene, i, e.Type)
		}
	}
	return nil
}

// Camera builds the named camera; an empty name selects the first one
func (s *Scene) Camera(name string) (*viewer.Camera, error) {
	for _, def := range s.Cameras {
		if name != "" && def.Name != name {
			continue
		}
		c := viewer.NewCamera(def.Name, def.Position.Vector(), def.Target.Vector())
		if def.Up != nil {
			c.Up = def.Up.Vector()
		}
		if def.FOV > 0 {
			c.FOV = def.FOV * math.Pi / 180
		}
		if def.Aspect > 0 {
			c.Aspect = def.Aspect
		}
		if def.Near > 0 {
			c.Near = def.Near
		}
		if def.Far > 0 {
			c.Far = def.Far
		}
		if def.Orbit != [2]float64{} {
			c.Orbit(def.Orbit[0]*math.Pi/180, def.Orbit[1]*math.Pi/180)
		}
		if def.Dolly != 0 {
			c.Zoom(def.Dolly)
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: unknown camera %q", ErrInvalidScene, name)
}

// NewView builds a viewport through camera using def, or the scene's default
// viewport when def is nil
func (s *Scene) NewView(camera *viewer.Camera, def *ViewDef) *viewer.View {
	if def == nil {
		def = &s.View
	}
	v := viewer.NewView(camera, def.Width, def.Height)
	v.Pan = geometry.NewVector2(def.Pan[0], def.Pan[1])
	if def.Zoom > 0 {
		v.Zoom = def.Zoom
	}
	return v
}

// FallbackPlane returns the configured fallback plane, if any
func (s *Scene) FallbackPlane() *geometry.Plane {
	if s.Fallback == nil {
		return nil
	}
	p := geometry.NewPlane(s.Fallback.Point.Vector(), s.Fallback.Normal.Vector())
	return &p
}

// LoadCloud gathers the inline and file samples into a point cloud
func (s *Scene) LoadCloud() (*pointcloud.Cloud, error) {
	points := make([]geometry.Vector3, 0, len(s.Cloud.Points))
	for _, p := range s.Cloud.Points {
		points = append(points, p.Vector())
	}
	if s.Cloud.File != "" {
		fromFile, err := ReadXYZ(s.resolve(s.Cloud.File))
		if err != nil {
			return nil, err
		}
		points = append(points, fromFile...)
	}

	cloud := pointcloud.New(points)
	if s.Cloud.MaxAngle > 0 {
		cloud.MaxAngle = s.Cloud.MaxAngle
	}
	return cloud, nil
}

// LoadMeshes reads the referenced STL meshes into a new store
func (s *Scene) LoadMeshes() (*meshstore.Store, error) {
	store := meshstore.New()
	for _, def := range s.Meshes {
		m, err := meshstore.LoadSTL(s.resolve(def.File))
		if err != nil {
			return nil, fmt.Errorf("mesh %s: %w", def.File, err)
		}
		store.Add(m)
	}
	return store, nil
}

// Files returns the scene's external file references, resolved
func (s *Scene) Files() []string {
	var files []string
	if s.Cloud.File != "" {
		files = append(files, s.resolve(s.Cloud.File))
	}
	for _, def := range s.Meshes {
		files = append(files, s.resolve(def.File))
	}
	return files
}

func (s *Scene) resolve(file string) string {
	if filepath.IsAbs(file) || s.dir == "" {
		return file
	}
	return filepath.Join(s.dir, file)
}

// ReadXYZ reads whitespace separated "x y z" lines. Blank lines and lines
// starting with # are skipped; extra columns such as colors are ignored.
func ReadXYZ(filename string) ([]geometry.Vector3, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open point file: %w", err)
	}
	defer file.Close()

	var points []geometry.Vector3
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%s:%d: expected x y z", filename, line)
		}
		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", filename, line, err)
			}
			xyz[i] = v
		}
		points = append(points, geometry.NewVector3(xyz[0], xyz[1], xyz[2]))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading point file: %w", err)
	}
	return points, nil
}
