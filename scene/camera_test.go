package scene

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"github.com/achilleasa/raylive/types"
)

func TestAspectHeight(t *testing.T) {
	type spec struct {
		aspect Aspect
		width  int
		exp    int
	}
	specs := []spec{
		{Widescreen, 800, 450},
		{Widescreen, 801, 450},
		{Widescreen, 100, 56},
		{Aspect{4, 3}, 640, 480},
	}

	for index, s := range specs {
		assert.Equalf(t, s.exp, s.aspect.Height(s.width), "[spec %d]", index)
	}
}

func TestCameraMoveAlongViewAxes(t *testing.T) {
	type spec struct {
		dir CameraDirection
		exp types.Vec3
	}
	specs := []spec{
		{Forward, types.XYZ(0, 0, 1.9)},
		{Backward, types.XYZ(0, 0, 2.1)},
		{Left, types.XYZ(-0.1, 0, 2)},
		{Right, types.XYZ(0.1, 0, 2)},
		{Up, types.XYZ(0, 0.1, 2)},
		{Down, types.XYZ(0, -0.1, 2)},
	}

	for index, s := range specs {
		cam := DefaultCamera()
		moved := cam.Move(s.dir, 0.1)
		for c := 0; c < 3; c++ {
			assert.InDeltaf(t, s.exp[c], moved.Position[c], 1e-5, "[spec %d] %s component %d", index, s.dir, c)
		}
		// Move returns a copy
		assert.Equal(t, types.XYZ(0, 0, 2), cam.Position)
	}
}

func TestCameraMoveFollowsYaw(t *testing.T) {
	cam := DefaultCamera()
	cam.Rotation = types.XYZ(0, math32.Pi/2, 0)
	moved := cam.Move(Forward, 1)

	assert.InDelta(t, -1, moved.Position[0], 1e-5)
	assert.InDelta(t, 2, moved.Position[2], 1e-5)
}

func TestCameraValidate(t *testing.T) {
	cam := DefaultCamera()
	assert.NoError(t, cam.Validate())

	cam.FocalLength = 0
	assert.EqualError(t, cam.Validate(), "camera: focal length must be positive")

	cam = DefaultCamera()
	cam.ViewportHeight = -1
	assert.Error(t, cam.Validate())

	cam = DefaultCamera()
	cam.Aspect = Aspect{0, 9}
	assert.EqualError(t, cam.Validate(), "camera: invalid aspect ratio 0:9")
}

func TestCameraValidateRejectsNonFinite(t *testing.T) {
	type spec struct {
		focal    float32
		vpHeight float32
		aa       uint32
		expErr   string
	}
	specs := []spec{
		{math32.NaN(), 2, 1, "camera: focal length must be positive"},
		{math32.Inf(1), 2, 1, "camera: focal length must be positive"},
		{1, math32.NaN(), 1, "camera: viewport height must be positive"},
		{1, math32.Inf(1), 1, "camera: viewport height must be positive"},
		{1, 2, MaxAntiAlias + 1, "camera: anti-alias samples 257 exceed 256"},
		{1, 2, MaxAntiAlias, ""},
	}

	for index, s := range specs {
		cam := DefaultCamera()
		cam.FocalLength = s.focal
		cam.ViewportHeight = s.vpHeight
		cam.AntiAlias = s.aa
		err := cam.Validate()
		if s.expErr == "" {
			assert.NoErrorf(t, err, "[spec %d]", index)
			continue
		}
		assert.EqualErrorf(t, err, s.expErr, "[spec %d]", index)
	}
}

func TestPositiveFinite(t *testing.T) {
	assert.True(t, PositiveFinite(0.5))
	assert.False(t, PositiveFinite(0))
	assert.False(t, PositiveFinite(-1))
	assert.False(t, PositiveFinite(math.NaN()))
	assert.False(t, PositiveFinite(math.Inf(1)))
}
