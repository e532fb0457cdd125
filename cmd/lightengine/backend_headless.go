//go:build !gl

package main

import (
	"flag"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/gpu/headless"
	"github.com/zeusync/lightengine/internal/core/observability/log"
)

const backend = "headless"

var frames = flag.Int("frames", 0, "close the headless surface after n frames; 0 runs until interrupted")

func opener(cfg *config.Config, _ log.Log) gpu.Opener {
	var opts []headless.Option
	if *frames > 0 {
		opts = append(opts, headless.WithCloseAfter(*frames))
	}
	return headless.Opener(headless.NewSurface(cfg.Window.Width, cfg.Window.Height, opts...))
}
