//go:build gl

package main

import (
	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/platform/desktop"
)

const backend = "opengl"

func opener(cfg *config.Config, logger log.Log) gpu.Opener {
	return desktop.Opener(desktop.Options{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		VSync:  cfg.Window.VSync,
	}, logger)
}
