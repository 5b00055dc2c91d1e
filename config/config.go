package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/achilleasa/raylive/asset"
	"github.com/achilleasa/raylive/bridge"
	"github.com/achilleasa/raylive/engine"
	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/log"
	"github.com/achilleasa/raylive/renderer"
	"github.com/achilleasa/raylive/scene"
	"github.com/achilleasa/raylive/types"
)

var ErrInvalid = errors.New("config: invalid configuration")

type Aspect struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type Extrema struct {
	// Limits in radians.
	Yaw   float32 `yaml:"yaw"`
	Pitch float32 `yaml:"pitch"`
}

// Config holds the settings for a render session.
type Config struct {
	// Viewport
	Width  int    `yaml:"width"`
	Aspect Aspect `yaml:"aspect"`

	// Camera
	FocalLength    float32    `yaml:"focal_length"`
	ViewportHeight float32    `yaml:"viewport_height"`
	AntiAlias      uint32     `yaml:"anti_alias"`
	Position       [3]float32 `yaml:"position"`

	// Input
	Movement  string  `yaml:"movement"` // "wasd" | "toggle-drag" | "click-rotate"
	Vertical  bool    `yaml:"vertical_keys"`
	MoveSpeed float32 `yaml:"move_speed"`
	Extrema   Extrema `yaml:"extrema"`

	// Scheduling
	Transport  string `yaml:"transport"` // "sync" | "background"
	Resize     string `yaml:"resize"`    // "reconstruct" | "in-place"
	FPS        int    `yaml:"fps"`
	DebounceMs int    `yaml:"debounce_ms"`
	Workers    int    `yaml:"workers"`

	// Collaborators
	LogLevel     string `yaml:"log_level"`
	PreviewAddr  string `yaml:"preview_addr"`
	ControlsFile string `yaml:"controls_file,omitempty"`
	SceneFile    string `yaml:"scene_file,omitempty"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width        int
	AntiAlias    int
	Movement     string
	Transport    string
	Workers      int
	PreviewAddr  string
	ControlsFile string
	SceneFile    string
}

// Get the default session config.
func Default() Config {
	return Config{
		Width:          800,
		Aspect:         Aspect{W: scene.Widescreen.W, H: scene.Widescreen.H},
		FocalLength:    1,
		ViewportHeight: 2,
		Position:       [3]float32{0, 0, 2},
		Movement:       input.ContinuousWASD.String(),
		MoveSpeed:      0.1,
		Extrema:        Extrema{Yaw: math.Pi, Pitch: math.Pi / 2},
		Transport:      bridge.Sync.String(),
		Resize:         bridge.Reconstruct.String(),
		FPS:            renderer.DefaultFPS,
		DebounceMs:     int(renderer.DefaultResizeDebounce / time.Millisecond),
		LogLevel:       "notice",
		PreviewAddr:    "127.0.0.1:8090",
	}
}

// Load a YAML config file from a local path or an http(s) URL. Fields
// missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := asset.ReadAll(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err = dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Apply CLI flags; flags take priority when non-zero or non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.AntiAlias > 0 {
		c.AntiAlias = uint32(flags.AntiAlias)
	}
	if flags.Movement != "" {
		c.Movement = flags.Movement
	}
	if flags.Transport != "" {
		c.Transport = flags.Transport
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.PreviewAddr != "" {
		c.PreviewAddr = flags.PreviewAddr
	}
	if flags.ControlsFile != "" {
		c.ControlsFile = flags.ControlsFile
	}
	if flags.SceneFile != "" {
		c.SceneFile = flags.SceneFile
	}

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Check that all settings are usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Aspect.W <= 0 || c.Aspect.H <= 0 {
		errs = append(errs, fmt.Errorf("aspect %d:%d must be positive", c.Aspect.W, c.Aspect.H))
	} else if _, err := renderer.NewViewport(c.Width, c.SceneAspect()); err != nil {
		errs = append(errs, err)
	}
	if err := c.Camera().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := input.ParseStrategy(c.Movement); err != nil {
		errs = append(errs, err)
	}
	if _, err := bridge.ParseTransport(c.Transport); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseResizePolicy(c.Resize); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.MoveSpeed <= 0 {
		errs = append(errs, fmt.Errorf("move speed %.3f must be positive", c.MoveSpeed))
	}
	if c.Extrema.Yaw <= 0 || c.Extrema.Pitch <= 0 {
		errs = append(errs, fmt.Errorf("pointer extrema must be positive"))
	}
	if c.FPS <= 0 || c.FPS > renderer.MaxFPS {
		errs = append(errs, fmt.Errorf("fps %d must be between 1 and %d", c.FPS, renderer.MaxFPS))
	}
	if c.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("debounce %dms must not be negative", c.DebounceMs))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Get the configured aspect ratio.
func (c *Config) SceneAspect() scene.Aspect {
	return scene.Aspect{W: c.Aspect.W, H: c.Aspect.H}
}

// Build the initial camera.
func (c *Config) Camera() scene.Camera {
	return scene.Camera{
		Position:       types.XYZ(c.Position[0], c.Position[1], c.Position[2]),
		FocalLength:    c.FocalLength,
		ViewportHeight: c.ViewportHeight,
		Aspect:         c.SceneAspect(),
		AntiAlias:      c.AntiAlias,
	}
}

// Get the movement strategy.
func (c *Config) Strategy() input.Strategy {
	kind, _ := input.ParseStrategy(c.Movement)
	return input.NewStrategy(kind, c.MoveSpeed)
}

// Get the input aggregator options.
func (c *Config) InputOptions() input.Options {
	return input.Options{
		Vertical: c.Vertical,
		Extrema:  input.Extrema{Yaw: c.Extrema.Yaw, Pitch: c.Extrema.Pitch},
	}
}

// Get the bridge options; sc is the scene to trace.
func (c *Config) BridgeOptions(sc *scene.Scene) bridge.Options {
	transport, _ := bridge.ParseTransport(c.Transport)
	policy, _ := parseResizePolicy(c.Resize)
	params := engine.ParamsFromCamera(c.Camera(), c.Width)
	params.Workers = c.Workers
	params.Scene = sc
	return bridge.Options{
		Transport: transport,
		Resize:    policy,
		Params:    params,
	}
}

// Get the scheduler options.
func (c *Config) SchedulerOptions() renderer.Options {
	return renderer.Options{
		FPS:            c.FPS,
		ResizeDebounce: time.Duration(c.DebounceMs) * time.Millisecond,
	}
}

// Get the configured log level.
func (c *Config) Level() log.Level {
	level, _ := log.ParseLevel(c.LogLevel)
	return level
}

func parseResizePolicy(name string) (bridge.ResizePolicy, error) {
	switch name {
	case "", "reconstruct":
		return bridge.Reconstruct, nil
	case "in-place", "inplace":
		return bridge.InPlace, nil
	}
	return bridge.Reconstruct, fmt.Errorf("unknown resize policy %q", name)
}
