package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/achilleasa/raylive/types"
)

// Camera movement directions relative to the current view orientation.
type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

func (d CameraDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Aspect is a width:height ratio kept as two integers so that frame heights
// can be derived with exact floor division.
type Aspect struct {
	W int
	H int
}

// The canonical 16:9 display aspect.
var Widescreen = Aspect{W: 16, H: 9}

// Get the frame height for a particular width; floor(width * H / W).
func (a Aspect) Height(width int) int {
	return width * a.H / a.W
}

// Get the ratio as a float.
func (a Aspect) Ratio() float32 {
	return float32(a.W) / float32(a.H)
}

func (a Aspect) String() string {
	return fmt.Sprintf("%d:%d", a.W, a.H)
}

// Camera holds the state that the orchestration layer owns and the engine
// renders from. It is a plain value; copies never alias each other.
type Camera struct {
	Position types.Vec3

	// Rotation angles in radians packed as {pitch, yaw, roll}.
	Rotation types.Vec3

	FocalLength    float32
	ViewportHeight float32
	Aspect         Aspect

	// Number of samples averaged per pixel; 0 disables anti-aliasing.
	AntiAlias uint32
}

// Create the default camera: two units in front of the origin looking down -Z.
func DefaultCamera() Camera {
	return Camera{
		Position:       types.XYZ(0, 0, 2),
		FocalLength:    1.0,
		ViewportHeight: 2.0,
		Aspect:         Widescreen,
	}
}

// Upper bound for anti-alias samples per pixel.
const MaxAntiAlias = 256

// Returns true if v is a finite number greater than zero. NaN fails the
// check.
func PositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Check that the camera can be handed to the engine.
func (c Camera) Validate() error {
	if !PositiveFinite(float64(c.FocalLength)) {
		return errors.New("camera: focal length must be positive")
	}
	if !PositiveFinite(float64(c.ViewportHeight)) {
		return errors.New("camera: viewport height must be positive")
	}
	if c.AntiAlias > MaxAntiAlias {
		return fmt.Errorf("camera: anti-alias samples %d exceed %d", c.AntiAlias, MaxAntiAlias)
	}
	if c.Aspect.W <= 0 || c.Aspect.H <= 0 {
		return fmt.Errorf("camera: invalid aspect ratio %s", c.Aspect)
	}
	return nil
}

// Get the orientation quaternion for the camera rotation angles.
func (c Camera) Orientation() types.Quat {
	return types.QuatFromEuler(c.Rotation)
}

// Get the unit view direction.
func (c Camera) ViewDir() types.Vec3 {
	return c.Orientation().Rotate(types.XYZ(0, 0, -1))
}

// Get the unit vector pointing to the right of the view direction.
func (c Camera) RightDir() types.Vec3 {
	return c.Orientation().Rotate(types.XYZ(1, 0, 0))
}

// Get the unit vector pointing up relative to the view direction.
func (c Camera) UpDir() types.Vec3 {
	return c.Orientation().Rotate(types.XYZ(0, 1, 0))
}

// Move the camera along one of its view axes and return the updated copy.
func (c Camera) Move(dir CameraDirection, amount float32) Camera {
	var axis types.Vec3
	switch dir {
	case Forward:
		axis = c.ViewDir()
	case Backward:
		axis = c.ViewDir().Mul(-1)
	case Right:
		axis = c.RightDir()
	case Left:
		axis = c.RightDir().Mul(-1)
	case Up:
		axis = c.UpDir()
	case Down:
		axis = c.UpDir().Mul(-1)
	}

	c.Position = c.Position.Add(axis.Mul(amount))
	return c
}
