package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/gomvg/pkg/geometry"
)

// View is an on-screen viewport looking through a calibrated camera.
//
// Three coordinate spaces are involved: screen pixels (origin top-left, Y
// down), camera space (the camera's normalized image plane, [-1, 1] on both
// axes, Y up) and world space. Pan and Zoom only affect the screen mapping, so
// camera-space points stay valid while the user navigates the image.
type View struct {
	Camera *Camera
	Width  float64          // Port width in pixels
	Height float64          // Port height in pixels
	Pan    geometry.Vector2 // Camera-space point shown at the port center
	Zoom   float64          // 1 fits the image height into the port; 0 means 1
}

// NewView creates a view of the whole camera image
func NewView(camera *Camera, width, height float64) *View {
	return &View{
		Camera: camera,
		Width:  width,
		Height: height,
		Zoom:   1,
	}
}

// SameCamera reports whether both views look through the same camera
func (v *View) SameCamera(other *View) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.Camera == other.Camera ||
		(v.Camera != nil && other.Camera != nil && v.Camera.Name == other.Camera.Name)
}

func (v *View) validate() error {
	if v == nil {
		return fmt.Errorf("%w: no view", ErrInvalidCamera)
	}
	if err := v.Camera.Validate(); err != nil {
		return err
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: view port is %vx%v", ErrInvalidCamera, v.Width, v.Height)
	}
	return nil
}

// scale returns the pixels per camera-space unit along Y and X
func (v *View) scale() (float64, float64) {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	sy := zoom * v.Height / 2
	return sy, sy * v.Camera.Aspect
}

// ScreenToCamera converts a pixel position to camera space
func (v *View) ScreenToCamera(x, y float64) (geometry.Vector2, error) {
	if err := v.validate(); err != nil {
		return geometry.Vector2{}, err
	}
	sy, sx := v.scale()
	return geometry.NewVector2(
		(x-v.Width/2)/sx+v.Pan.X,
		-(y-v.Height/2)/sy+v.Pan.Y,
	), nil
}

// CameraToScreen converts a camera-space point to pixels
func (v *View) CameraToScreen(p geometry.Vector2) (float64, float64, error) {
	if err := v.validate(); err != nil {
		return 0, 0, err
	}
	sy, sx := v.scale()
	return v.Width/2 + (p.X-v.Pan.X)*sx, v.Height/2 - (p.Y-v.Pan.Y)*sy, nil
}

// WorldToCamera projects a world point onto the camera's image plane
func (v *View) WorldToCamera(p geometry.Vector3) (geometry.Vector2, error) {
	if err := v.validate(); err != nil {
		return geometry.Vector2{}, err
	}
	vp, _, err := v.Camera.viewProjection()
	if err != nil {
		return geometry.Vector2{}, err
	}
	clip := vp.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if clip[3] <= 0 {
		return geometry.Vector2{}, fmt.Errorf("%w: %v", ErrBehindCamera, p)
	}
	return geometry.NewVector2(clip[0]/clip[3], clip[1]/clip[3]), nil
}

// CameraToWorld returns the world ray through a camera-space point. The ray
// starts on the near plane, so projecting its origin gives the point back.
func (v *View) CameraToWorld(p geometry.Vector2) (geometry.Ray, error) {
	if err := v.validate(); err != nil {
		return geometry.Ray{}, err
	}
	_, inv, err := v.Camera.viewProjection()
	if err != nil {
		return geometry.Ray{}, err
	}
	near := fromVec3(mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, -1}, inv))
	far := fromVec3(mgl64.TransformCoordinate(mgl64.Vec3{p.X, p.Y, 1}, inv))
	return geometry.NewRay(near, far.Sub(near)), nil
}

// ScreenToWorld returns the world ray under a pixel
func (v *View) ScreenToWorld(x, y float64) (geometry.Ray, error) {
	p, err := v.ScreenToCamera(x, y)
	if err != nil {
		return geometry.Ray{}, err
	}
	return v.CameraToWorld(p)
}

// WorldToScreen projects a world point to pixels
func (v *View) WorldToScreen(p geometry.Vector3) (float64, float64, error) {
	c, err := v.WorldToCamera(p)
	if err != nil {
		return 0, 0, err
	}
	return v.CameraToScreen(c)
}
