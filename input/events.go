package input

type Event interface{}

// Keyboard events carry the key label in lower case ("w", "arrowup", "[").
type KeyDown struct {
	Key string
}
type KeyUp struct {
	Key string
}

// Pointer coordinates are normalized to [0, 1] across the display surface;
// (0, 0) is the top-left corner.
type PointerMove struct {
	X, Y float32
}
type PointerButton struct {
	X, Y    float32
	Pressed bool
}
type PointerLeave struct{}

// Flip between "rotation follows pointer" and "rotation frozen".
type ToggleMovement struct{}

// The numeric controls exposed by the user-facing surface.
type Control uint8

const (
	FocalLength Control = iota
	Width
	AntiAlias
)

func (c Control) String() string {
	switch c {
	case FocalLength:
		return "focal length"
	case Width:
		return "width"
	case AntiAlias:
		return "anti-alias"
	}
	return "unknown control"
}

// A numeric control edit. Relative edits add Value to the current setting.
type ControlChange struct {
	Control  Control
	Value    float64
	Relative bool
}

// Ask for the last presented frame to be exported.
type Snapshot struct{}

// Ask the session to end.
type Quit struct{}

// Normalize a pixel position within a surface of the given size.
func Normalize(x, y float64, width, height int) (float32, float32) {
	return normalizeAxis(x, width), normalizeAxis(y, height)
}

func normalizeAxis(v float64, extent int) float32 {
	if extent <= 1 {
		return 0.5
	}
	n := v / float64(extent-1)
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return float32(n)
}
