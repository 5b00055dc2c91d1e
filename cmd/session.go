package cmd

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/achilleasa/raylive/bridge"
	"github.com/achilleasa/raylive/config"
	"github.com/achilleasa/raylive/input"
	"github.com/achilleasa/raylive/present"
	"github.com/achilleasa/raylive/renderer"
	"github.com/achilleasa/raylive/scene/reader"
)

// Get the flags shared by all commands that start a render session.
func SessionFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Usage: "frame width; the height follows from the aspect ratio",
		},
		cli.IntFlag{
			Name:  "aa",
			Usage: "anti-alias samples per pixel",
		},
		cli.StringFlag{
			Name:  "transport, t",
			Usage: "engine transport (sync or background)",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "number of tracer workers; defaults to the number of CPUs",
		},
		cli.StringFlag{
			Name:  "scene, s",
			Usage: "scene file to render; defaults to the built-in scene",
		},
	}
}

// Load the config file named by the global --config flag, apply command
// flag overrides and set up logging.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	cfg.Resolve(config.Flags{
		Width:        ctx.Int("width"),
		AntiAlias:    ctx.Int("aa"),
		Movement:     ctx.String("movement"),
		Transport:    ctx.String("transport"),
		Workers:      ctx.Int("workers"),
		PreviewAddr:  ctx.String("addr"),
		ControlsFile: ctx.String("controls"),
		SceneFile:    ctx.String("scene"),
	})
	setupLogging(ctx, cfg.Level())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// A session bundles the collaborators of a running render loop.
type session struct {
	cfg       config.Config
	bridge    bridge.Bridge
	presenter *present.Presenter
	sched     *renderer.Scheduler
}

// Get the viewport for a config.
func sessionViewport(cfg config.Config) (renderer.Viewport, error) {
	return renderer.NewViewport(cfg.Width, cfg.SceneAspect())
}

// Wire a scheduler to a surface. The caller owns the returned session and
// must close it.
func newSession(cfg config.Config, surface present.Surface, opts renderer.Options) (*session, error) {
	sc, err := reader.ReadScene(cfg.SceneFile)
	if err != nil {
		return nil, err
	}
	if err = sc.Validate(); err != nil {
		return nil, err
	}

	br, err := bridge.New(cfg.BridgeOptions(sc))
	if err != nil {
		return nil, err
	}

	presenter := present.New(surface)
	agg := input.NewAggregator(cfg.Strategy(), cfg.InputOptions())
	rc, err := renderer.NewContext(cfg.Camera(), cfg.Width, agg, br, presenter)
	if err != nil {
		br.Close()
		return nil, err
	}

	logger.Infof("session: %s transport, %s viewport, %s movement", cfg.Transport, rc.Viewport, cfg.Movement)
	return &session{
		cfg:       cfg,
		bridge:    br,
		presenter: presenter,
		sched:     renderer.NewScheduler(rc, opts),
	}, nil
}

// Post forwards an input event to the scheduler.
func (s *session) Post(ev input.Event) {
	s.sched.Post(ev)
}

func (s *session) Close() {
	if err := s.bridge.Close(); err != nil {
		logger.Warningf("closing bridge: %v", err)
	}
}

func argError(format string, args ...interface{}) error {
	return cli.NewExitError(fmt.Sprintf(format, args...), 1)
}
