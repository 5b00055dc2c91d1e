package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/achilleasa/raylive/controls"
	"github.com/achilleasa/raylive/display/preview"
	"github.com/achilleasa/raylive/display/window"
	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/present"
)

// Render a still frame headless and export it.
func RenderFrame(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	out := ctx.String("out")
	if _, err = present.FormatForPath(out); err != nil {
		return argError("%v", err)
	}

	vp, err := sessionViewport(cfg)
	if err != nil {
		return err
	}
	opts := cfg.SchedulerOptions()
	opts.MaxFrames = 1

	s, err := newSession(cfg, present.NewImageSurface(vp.Width, vp.Height), opts)
	if err != nil {
		return err
	}
	defer s.Close()

	runCtx, cancel := signalContext()
	defer cancel()
	if err = s.sched.Run(runCtx); err != nil {
		return err
	}

	if err = s.presenter.Snapshot(out); err != nil {
		return err
	}
	logger.Noticef("wrote %s", out)

	displayFrameStats(s.sched.FrameStats())
	return nil
}

// Render an interactive view of the scene in a window.
func RenderInteractive(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	vp, err := sessionViewport(cfg)
	if err != nil {
		return err
	}

	// Window callbacks only fire while the scheduler polls events so s is
	// always set by then.
	var s *session
	win, err := window.New(vp.Width, vp.Height, "raylive", func(ev input.Event) { s.Post(ev) })
	if err != nil {
		return err
	}
	defer win.Close()

	opts := cfg.SchedulerOptions()
	opts.Poller = win
	if s, err = newSession(cfg, win, opts); err != nil {
		return err
	}
	defer s.Close()

	runCtx, cancel := signalContext()
	defer cancel()
	start := time.Now()
	err = s.sched.Run(runCtx)
	displaySessionStats(s.sched.Stats(), time.Since(start))
	return ignoreCancel(err)
}

// Serve a headless session through the browser preview. An optional
// controls file feeds numeric control edits into the session.
func Serve(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	vp, err := sessionViewport(cfg)
	if err != nil {
		return err
	}

	var s *session
	srv := preview.NewServer(vp.Width, vp.Height, func(ev input.Event) { s.Post(ev) })
	if s, err = newSession(cfg, srv, cfg.SchedulerOptions()); err != nil {
		return err
	}
	defer s.Close()

	var watcher *controls.Watcher
	if cfg.ControlsFile != "" {
		if watcher, err = controls.NewWatcher(cfg.ControlsFile, s.Post); err != nil {
			return err
		}
	}

	runCtx, cancel := signalContext()
	defer cancel()
	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	gctx, stop := context.WithCancel(gctx)
	defer stop()

	// The session ending stops the server and the watcher.
	g.Go(func() error {
		defer stop()
		return ignoreCancel(s.sched.Run(gctx))
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.PreviewAddr)
	})
	if watcher != nil {
		logger.Noticef("watching controls file %s", watcher.Path())
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	err = g.Wait()
	displaySessionStats(s.sched.Stats(), time.Since(start))
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
