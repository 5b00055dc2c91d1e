package input

import "strings"

// Step sizes for keyboard driven control edits.
const (
	focalLengthStep = 0.1
	widthStep       = 32
)

// Translate a non-movement key into the event it is bound to. Surfaces call
// this before queueing raw keys so every surface shares the same shortcuts:
//
//	tab      toggle pointer rotation
//	[ / ]    focal length -/+
//	- / =    width -/+ (debounced)
//	1 .. 9   anti-alias samples
//	p        snapshot
//	escape   quit
func Translate(key string) (Event, bool) {
	key = strings.ToLower(key)
	switch key {
	case "tab":
		return ToggleMovement{}, true
	case "[":
		return ControlChange{Control: FocalLength, Value: -focalLengthStep, Relative: true}, true
	case "]":
		return ControlChange{Control: FocalLength, Value: focalLengthStep, Relative: true}, true
	case "-":
		return ControlChange{Control: Width, Value: -widthStep, Relative: true}, true
	case "=":
		return ControlChange{Control: Width, Value: widthStep, Relative: true}, true
	case "p":
		return Snapshot{}, true
	case "escape":
		return Quit{}, true
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return ControlChange{Control: AntiAlias, Value: float64(key[0] - '0')}, true
	}
	return nil, false
}

// Convert a raw key transition into the event a surface should post. Bound
// shortcuts fire on press; everything else becomes a KeyDown or KeyUp.
func KeyEvent(key string, pressed bool) Event {
	key = strings.ToLower(key)
	if !pressed {
		return KeyUp{Key: key}
	}
	if ev, ok := Translate(key); ok {
		return ev
	}
	return KeyDown{Key: key}
}
