package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/injector"
)

func init() {
	// The window and its GL context belong to the main thread; the render
	// loop runs on it.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "engine config file (.yaml, .yml or .toml)")
	scenePath := flag.String("scene", "", "scene options file, overrides the config")
	telemetryOn := flag.Bool("telemetry", false, "serve stats over websocket")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *scenePath != "" {
		cfg.Scene = *scenePath
	}
	if *telemetryOn {
		cfg.Telemetry.Enabled = true
	}

	logger, err := log.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		log.String("backend", backend),
		log.String("config", *configPath),
		log.Int("shadow_resolution", cfg.Render.ShadowResolution))

	e, err := injector.InitializeEngine(ctx, cfg, opener(cfg, logger), logger)
	if err != nil {
		logger.Error("engine setup failed", log.Error(err))
		return err
	}
	if err := e.Run(); err != nil {
		logger.Error("engine failed", log.Error(err))
		return err
	}
	return nil
}
