package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/achilleasa/raylive/bridge"
	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/scene"
)

func writeConfig(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, scene.Widescreen, cfg.SceneAspect())
	assert.Equal(t, scene.DefaultCamera(), cfg.Camera())
	assert.Equal(t, 200*time.Millisecond, cfg.SchedulerOptions().ResizeDebounce)
	assert.Equal(t, log.Notice, cfg.Level())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
width: 640
aspect: {w: 4, h: 3}
anti_alias: 4
position: [1, 2, 3]
movement: toggle-drag
vertical_keys: true
transport: background
resize: in-place
debounce_ms: 50
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, scene.Aspect{W: 4, H: 3}, cfg.SceneAspect())
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Position)
	assert.Equal(t, input.ToggleDrag, cfg.Strategy().Kind())
	assert.True(t, cfg.InputOptions().Vertical)
	assert.Equal(t, log.Debug, cfg.Level())

	// Unset fields keep their defaults
	assert.Equal(t, float32(1), cfg.FocalLength)
	assert.Equal(t, 60, cfg.FPS)

	opts := cfg.BridgeOptions(scene.Default())
	assert.Equal(t, bridge.Background, opts.Transport)
	assert.Equal(t, bridge.InPlace, opts.Resize)
	assert.Equal(t, 640, opts.Params.Width)
	assert.Equal(t, uint32(4), opts.Params.AntiAlias)
	assert.NotNil(t, opts.Params.Scene)
	assert.Equal(t, 50*time.Millisecond, cfg.SchedulerOptions().ResizeDebounce)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "widht: 100\n"))
	assert.ErrorContains(t, err, "field widht not found")
}

func TestValidate(t *testing.T) {
	type spec struct {
		mutate func(*Config)
		expMsg string
	}
	specs := []spec{
		{func(c *Config) { c.Width = 1 }, "invalid viewport"},
		{func(c *Config) { c.Aspect.H = 0 }, "aspect 16:0 must be positive"},
		{func(c *Config) { c.FocalLength = 0 }, "focal length must be positive"},
		{func(c *Config) { c.Movement = "fly" }, `unknown movement strategy "fly"`},
		{func(c *Config) { c.Transport = "smoke-signals" }, `unknown transport "smoke-signals"`},
		{func(c *Config) { c.Resize = "grow" }, `unknown resize policy "grow"`},
		{func(c *Config) { c.LogLevel = "chatty" }, `unknown level "chatty"`},
		{func(c *Config) { c.FPS = 0 }, "fps 0 must be between 1 and 1000"},
		{func(c *Config) { c.FPS = 2e9 }, "fps 2000000000 must be between 1 and 1000"},
		{func(c *Config) { c.FocalLength = float32(math.NaN()) }, "focal length must be positive"},
		{func(c *Config) { c.ViewportHeight = float32(math.Inf(1)) }, "viewport height must be positive"},
		{func(c *Config) { c.AntiAlias = 1 << 20 }, "anti-alias samples 1048576 exceed 256"},
		{func(c *Config) { c.Width = 1e8 }, "invalid viewport: width 100000000"},
		{func(c *Config) { c.MoveSpeed = 0 }, "move speed"},
		{func(c *Config) { c.Extrema.Pitch = 0 }, "pointer extrema"},
	}

	for index, s := range specs {
		cfg := Default()
		s.mutate(&cfg)
		err := cfg.Validate()
		assert.ErrorIsf(t, err, ErrInvalid, "[spec %d]", index)
		assert.ErrorContainsf(t, err, s.expMsg, "[spec %d]", index)
	}
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Resolve(Flags{})
	assert.Equal(t, 800, cfg.Width)
	assert.True(t, cfg.Workers > 0)

	cfg.Resolve(Flags{
		Width:       1024,
		AntiAlias:   8,
		Movement:    "click-rotate",
		Transport:   "background",
		Workers:     3,
		PreviewAddr: ":9000",
		SceneFile:   "scene.yaml",
	})
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, uint32(8), cfg.AntiAlias)
	assert.Equal(t, "click-rotate", cfg.Movement)
	assert.Equal(t, "background", cfg.Transport)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, ":9000", cfg.PreviewAddr)
	assert.Equal(t, "scene.yaml", cfg.SceneFile)
	require.NoError(t, cfg.Validate())
}
