package viewer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gomvg/pkg/geometry"
)

var (
	// ErrInvalidCamera is returned when a view has no usable calibrated camera
	ErrInvalidCamera = errors.New("invalid camera")
	// ErrBehindCamera is returned when projecting a point that is not in front of the camera
	ErrBehindCamera = errors.New("point is behind the camera")
)

// Camera is a calibrated pinhole camera: its pose plus intrinsics
type Camera struct {
	Name     string
	Position geometry.Vector3
	Target   geometry.Vector3
	Up       geometry.Vector3
	FOV      float64 // Vertical field of view in radians
	Aspect   float64 // Image width / height
	Near     float64
	Far      float64
}

// NewCamera creates a camera looking at target with common intrinsics
func NewCamera(name string, position, target geometry.Vector3) *Camera {
	return &Camera{
		Name:     name,
		Position: position,
		Target:   target,
		Up:       geometry.NewVector3(0, 1, 0),
		FOV:      math.Pi / 4, // 45 degrees
		Aspect:   4.0 / 3.0,
		Near:     0.1,
		Far:      1000,
	}
}

// Validate checks that the pose and intrinsics define a projection
func (c *Camera) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: no camera", ErrInvalidCamera)
	}
	if c.FOV <= 0 || c.FOV >= math.Pi {
		return fmt.Errorf("%w: %q has field of view %v", ErrInvalidCamera, c.Name, c.FOV)
	}
	if c.Aspect <= 0 {
		return fmt.Errorf("%w: %q has aspect %v", ErrInvalidCamera, c.Name, c.Aspect)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("%w: %q has clip range [%v, %v]", ErrInvalidCamera, c.Name, c.Near, c.Far)
	}
	forward := c.Target.Sub(c.Position)
	if forward.Length() == 0 {
		return fmt.Errorf("%w: %q looks at its own position", ErrInvalidCamera, c.Name)
	}
	if forward.Normalize().Cross(c.Up.Normalize()).Length() < 1e-9 {
		return fmt.Errorf("%w: %q has up vector parallel to the view direction", ErrInvalidCamera, c.Name)
	}
	return nil
}

// Forward returns the unit viewing direction
func (c *Camera) Forward() geometry.Vector3 {
	return c.Target.Sub(c.Position).Normalize()
}

// ViewMatrix returns the world-to-camera transform
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	return mgl64.LookAtV(toVec3(c.Position), toVec3(c.Target), toVec3(c.Up))
}

// ProjectionMatrix returns the perspective projection of the camera
func (c *Camera) ProjectionMatrix() mgl64.Mat4 {
	return mgl64.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// viewProjection returns projection*view and its inverse
func (c *Camera) viewProjection() (mgl64.Mat4, mgl64.Mat4, error) {
	if err := c.Validate(); err != nil {
		return mgl64.Mat4{}, mgl64.Mat4{}, err
	}
	vp := c.ProjectionMatrix().Mul4(c.ViewMatrix())
	if vp.Det() == 0 {
		return mgl64.Mat4{}, mgl64.Mat4{}, fmt.Errorf("%w: %q has a singular projection", ErrInvalidCamera, c.Name)
	}
	return vp, vp.Inv(), nil
}

// Orbit rotates the camera position around its target
func (c *Camera) Orbit(deltaX, deltaY float64) {
	offset := c.Position.Sub(c.Target)
	distance := offset.Length()
	if distance == 0 {
		return
	}

	// Spherical coordinates around the target, Y up
	angleX := math.Asin(math.Max(-1, math.Min(1, offset.Y/distance)))
	angleY := math.Atan2(offset.X, offset.Z)

	angleX += deltaX
	angleY += deltaY

	// Clamp X rotation to prevent gimbal lock
	maxAngle := math.Pi/2 - 0.1
	angleX = math.Max(-maxAngle, math.Min(maxAngle, angleX))

	x := distance * math.Cos(angleX) * math.Sin(angleY)
	y := distance * math.Sin(angleX)
	z := distance * math.Cos(angleX) * math.Cos(angleY)
	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Zoom changes the camera distance to its target
func (c *Camera) Zoom(delta float64) {
	offset := c.Position.Sub(c.Target)
	distance := offset.Length() * (1.0 + delta)
	if distance < 0.1 {
		distance = 0.1
	}
	c.Position = c.Target.Add(offset.Normalize().Mul(distance))
}

func toVec3(v geometry.Vector3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl64.Vec3) geometry.Vector3 {
	return geometry.NewVector3(v[0], v[1], v[2])
}
