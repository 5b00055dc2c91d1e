package input

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/types"
)

// The supported movement schemes.
type StrategyKind uint8

const (
	ContinuousWASD StrategyKind = iota
	ToggleDrag
	ClickRotate
)

func (k StrategyKind) String() string {
	switch k {
	case ContinuousWASD:
		return "wasd"
	case ToggleDrag:
		return "toggle-drag"
	case ClickRotate:
		return "click-rotate"
	}
	return fmt.Sprintf("strategy(%d)", uint8(k))
}

// Parse a strategy name as used in config files and CLI flags.
func ParseStrategy(name string) (StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "wasd", "continuous-wasd":
		return ContinuousWASD, nil
	case "toggle-drag", "toggle":
		return ToggleDrag, nil
	case "click-rotate", "click":
		return ClickRotate, nil
	}
	return ContinuousWASD, fmt.Errorf("input: unknown movement strategy %q", name)
}

// Extrema bound the pointer derived rotation angles; yaw spans
// [-Yaw, Yaw] and pitch spans [-Pitch, Pitch].
type Extrema struct {
	Yaw   float32
	Pitch float32
}

// The default extrema: a full turn horizontally, half a turn vertically.
var DefaultExtrema = Extrema{Yaw: math32.Pi, Pitch: math32.Pi / 2}

// Map a normalized pointer position to {pitch, yaw, 0}. Each angle is a
// linear function of the coordinate, angle = span * (0.5 - n), so the
// corners map exactly to the extrema.
func (e Extrema) Rotation(nx, ny float32) types.Vec3 {
	nx = types.Clamp(nx, 0, 1)
	ny = types.Clamp(ny, 0, 1)
	return types.XYZ(
		2*e.Pitch*(0.5-ny),
		2*e.Yaw*(0.5-nx),
		0,
	)
}

// A Strategy turns the polled input state into a camera update once per
// tick and decides how pointer events affect the input state.
type Strategy interface {
	Kind() StrategyKind

	// Update the input state for a pointer or toggle event. Returns true
	// if the state changed.
	HandlePointer(s *State, ev Event, ext Extrema) bool

	// Apply one tick worth of movement to the camera.
	ApplyTick(s State, cam scene.Camera) scene.Camera
}

// Create the strategy for a kind; speed is the distance moved per tick.
func NewStrategy(kind StrategyKind, speed float32) Strategy {
	switch kind {
	case ToggleDrag:
		return &toggleDrag{speed: speed}
	case ClickRotate:
		return &clickRotate{speed: speed}
	}
	return &continuousWASD{speed: speed}
}

func translate(s State, cam scene.Camera, speed float32) scene.Camera {
	for _, dir := range s.Directions() {
		cam = cam.Move(dir, speed)
	}
	return cam
}

// Keys translate the camera; the pointer is ignored.
type continuousWASD struct {
	speed float32
}

func (st *continuousWASD) Kind() StrategyKind { return ContinuousWASD }

func (st *continuousWASD) HandlePointer(*State, Event, Extrema) bool { return false }

func (st *continuousWASD) ApplyTick(s State, cam scene.Camera) scene.Camera {
	return translate(s, cam, st.speed)
}

// A toggle flips rotation between following the pointer and frozen at the
// neutral orientation.
type toggleDrag struct {
	speed float32
}

func (st *toggleDrag) Kind() StrategyKind { return ToggleDrag }

func (st *toggleDrag) HandlePointer(s *State, ev Event, ext Extrema) bool {
	prev := *s
	switch e := ev.(type) {
	case ToggleMovement:
		s.Following = !s.Following
		if !s.Following {
			s.Rotation = types.Vec3{}
		}
	case PointerMove:
		if s.Following {
			s.Rotation = ext.Rotation(e.X, e.Y)
		}
	case PointerLeave:
		s.Rotation = types.Vec3{}
	}
	return prev != *s
}

func (st *toggleDrag) ApplyTick(s State, cam scene.Camera) scene.Camera {
	cam = translate(s, cam, st.speed)
	cam.Rotation = s.Rotation
	return cam
}

// Pressing a pointer button points the camera at the clicked position.
type clickRotate struct {
	speed float32
}

func (st *clickRotate) Kind() StrategyKind { return ClickRotate }

func (st *clickRotate) HandlePointer(s *State, ev Event, ext Extrema) bool {
	prev := *s
	switch e := ev.(type) {
	case PointerButton:
		if e.Pressed {
			s.Rotation = ext.Rotation(e.X, e.Y)
		}
	case PointerLeave:
		s.Rotation = types.Vec3{}
	}
	return prev != *s
}

func (st *clickRotate) ApplyTick(s State, cam scene.Camera) scene.Camera {
	cam = translate(s, cam, st.speed)
	cam.Rotation = s.Rotation
	return cam
}
