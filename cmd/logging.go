package cmd

import (
	"github.com/urfave/cli"

	"github.com/achilleasa/raylive/log"
)

var logger = log.New("raylive")

// Apply the configured log level; the -v and -vv flags take priority.
func setupLogging(ctx *cli.Context, level log.Level) {
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
