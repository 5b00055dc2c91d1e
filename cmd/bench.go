package cmd

import (
	"time"

	"github.com/urfave/cli"

	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/present"
	"github.com/achilleasa/raylive/renderer"
)

// Drive a number of frames through the selected transport by holding a
// movement key and report the session statistics.
func Bench(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	frames := ctx.Int("frames")
	if frames <= 0 {
		return argError("frame count must be positive; got %d", frames)
	}

	vp, err := sessionViewport(cfg)
	if err != nil {
		return err
	}
	opts := cfg.SchedulerOptions()
	opts.MaxFrames = frames
	if fps := ctx.Int("fps"); fps > 0 {
		if fps > renderer.MaxFPS {
			return argError("tick rate must not exceed %d; got %d", renderer.MaxFPS, fps)
		}
		opts.FPS = fps
	}

	s, err := newSession(cfg, present.NewImageSurface(vp.Width, vp.Height), opts)
	if err != nil {
		return err
	}
	defer s.Close()

	// A held key moves the camera on every tick so each tick asks for a
	// new frame.
	s.Post(input.KeyDown{Key: "d"})

	logger.Noticef("rendering %d %s frames over the %s transport", frames, vp, cfg.Transport)
	runCtx, cancel := signalContext()
	defer cancel()
	start := time.Now()
	err = s.sched.Run(runCtx)
	displaySessionStats(s.sched.Stats(), time.Since(start))
	return ignoreCancel(err)
}
