package input

import (
	"strings"

	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/types"
)

// Logical movement actions.
type Action uint8

const (
	MoveForward Action = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
	numActions
)

// Movement key labels. Arrow keys alias the WASD cluster.
var movementKeys = map[string]Action{
	"w":          MoveForward,
	"arrowup":    MoveForward,
	"s":          MoveBackward,
	"arrowdown":  MoveBackward,
	"a":          MoveLeft,
	"arrowleft":  MoveLeft,
	"d":          MoveRight,
	"arrowright": MoveRight,
	"e":          MoveUp,
	"q":          MoveDown,
}

// Look up the movement action bound to a key.
func ActionForKey(key string) (Action, bool) {
	action, ok := movementKeys[strings.ToLower(key)]
	return action, ok
}

func (a Action) vertical() bool {
	return a == MoveUp || a == MoveDown
}

// State is the polled input state read once per tick.
type State struct {
	Pressed [numActions]bool

	// Set while rotation follows the pointer (toggle-drag movement).
	Following bool

	// Pointer derived rotation packed as {pitch, yaw, roll}.
	Rotation types.Vec3
}

// Returns true if any movement action is held.
func (s State) HasActiveMovement() bool {
	for _, pressed := range s.Pressed {
		if pressed {
			return true
		}
	}
	return false
}

// Resolve the held actions into at most one direction per axis. When both
// keys of an axis are held the first one checked wins: forward beats
// backward, left beats right and up beats down.
func (s State) Directions() []scene.CameraDirection {
	var dirs []scene.CameraDirection
	if s.Pressed[MoveForward] {
		dirs = append(dirs, scene.Forward)
	} else if s.Pressed[MoveBackward] {
		dirs = append(dirs, scene.Backward)
	}

	if s.Pressed[MoveLeft] {
		dirs = append(dirs, scene.Left)
	} else if s.Pressed[MoveRight] {
		dirs = append(dirs, scene.Right)
	}

	if s.Pressed[MoveUp] {
		dirs = append(dirs, scene.Up)
	} else if s.Pressed[MoveDown] {
		dirs = append(dirs, scene.Down)
	}
	return dirs
}
