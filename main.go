package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/achilleasa/raylive/cmd"
)

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "raylive"
	app.Usage = "interactive ray tracing with a live render loop"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "session config file (local path or http(s) URL)",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame headless and write it to a .png, .webp or .tga file.`,
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, cmd.SessionFlags()...),
					Action: cmd.RenderFrame,
				},
				{
					Name:  "interactive",
					Usage: "render interactive view of the scene",
					Description: `
Open a window and re-render the scene as the camera moves. WASD moves the
camera, the pointer rotates it, tab toggles pointer rotation, [ and ] change
the focal length, - and = change the width, 1-9 set the anti-alias samples,
p saves a snapshot and escape quits.`,
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "movement, m",
							Usage: "movement strategy (wasd, toggle-drag or click-rotate)",
						},
					}, cmd.SessionFlags()...),
					Action: cmd.RenderInteractive,
				},
				{
					Name:  "serve",
					Usage: "stream an interactive view of the scene to a browser",
					Description: `
Run a headless session and stream frames to browsers connecting to the preview
address. Browser keyboard and pointer input drives the camera. When a controls
file is given, edits to its focal_length, width and anti_alias values are
applied to the running session.`,
					Flags: append([]cli.Flag{
						cli.StringFlag{
							Name:  "movement, m",
							Usage: "movement strategy (wasd, toggle-drag or click-rotate)",
						},
						cli.StringFlag{
							Name:  "addr",
							Usage: "preview listen address",
						},
						cli.StringFlag{
							Name:  "controls",
							Usage: "controls file to watch",
						},
					}, cmd.SessionFlags()...),
					Action: cmd.Serve,
				},
			},
		},
		{
			Name:  "bench",
			Usage: "measure render loop throughput",
			Description: `
Hold a movement key and render frames as fast as the tick rate allows, then
print frame statistics for the session.`,
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "frames, n",
					Value: 100,
					Usage: "number of frames to render",
				},
				cli.IntFlag{
					Name:  "fps",
					Value: 1000,
					Usage: "tick rate",
				},
			}, cmd.SessionFlags()...),
			Action: cmd.Bench,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
