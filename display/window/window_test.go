package window

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestKeyLabel(t *testing.T) {
	type spec struct {
		key   glfw.Key
		exp   string
		expOk bool
	}
	specs := []spec{
		{glfw.KeyW, "w", true},
		{glfw.KeyA, "a", true},
		{glfw.KeyZ, "z", true},
		{glfw.Key4, "4", true},
		{glfw.KeyUp, "arrowup", true},
		{glfw.KeyLeftBracket, "[", true},
		{glfw.KeyEscape, "escape", true},
		{glfw.KeyF1, "", false},
	}
	for index, s := range specs {
		got, ok := keyLabel(s.key)
		assert.Equalf(t, s.expOk, ok, "[spec %d]", index)
		assert.Equalf(t, s.exp, got, "[spec %d]", index)
	}
}
