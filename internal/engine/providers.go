package engine

import (
	"fmt"
	"maps"
	"os"

	"github.com/google/wire"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/content"
	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/loop"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/render"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/internal/core/state"
	"github.com/zeusync/lightengine/internal/resource"
	"github.com/zeusync/lightengine/internal/script"
	"github.com/zeusync/lightengine/internal/telemetry"
)

// ProviderSet builds an Engine from a context, a config, a surface opener and
// a logger.
var ProviderSet = wire.NewSet(
	bus.New,
	state.New,
	scene.NewRegistry,
	ProvideSceneOptions,
	ProvideInput,
	ProvideResources,
	wire.Bind(new(resource.Library), new(*resource.Store)),
	ProvideRenderer,
	loop.NewSurfaceProvider,
	ProvideSimulationConfig,
	loop.NewSimulation,
	loop.NewRender,
	ProvideScripts,
	telemetry.NewHub,
	wire.Struct(new(Components), "*"),
	New,
)

func ProvideSceneOptions(cfg *config.Config) (content.Options, error) {
	return content.LoadOptions(cfg.Scene)
}

// ProvideInput binds the default layout, the scene's interaction keys and
// the configured overrides, in that order of precedence.
func ProvideInput(cfg *config.Config, opts content.Options) *input.Mapper {
	extra := content.Bindings(opts)
	maps.Copy(extra, cfg.Input.Keys())
	m := input.NewMapper()
	input.DefaultBindings(m, extra)
	return m
}

// ProvideResources returns the built-in library plus the PNG textures of the
// configured directory.
func ProvideResources(cfg *config.Config, logger log.Log) (*resource.Store, error) {
	store := resource.Builtin()
	if cfg.Textures == "" {
		return store, nil
	}
	n, err := store.LoadTextures(os.DirFS(cfg.Textures), ".")
	if err != nil {
		return nil, fmt.Errorf("load textures: %w", err)
	}
	logger.Info("textures loaded", log.String("dir", cfg.Textures), log.Int("count", n))
	return store, nil
}

func ProvideRenderer(lib resource.Library, cfg *config.Config, logger log.Log) *render.Renderer {
	return render.New(lib, cfg.Render.Settings(), logger)
}

func ProvideSimulationConfig(cfg *config.Config) loop.SimulationConfig {
	return cfg.Simulation.Loop()
}

// ProvideScripts compiles the scripts directory. Hot reload is started by
// Engine.Run when enabled.
func ProvideScripts(cfg *config.Config, logger log.Log) (*script.Library, error) {
	lib := script.NewLibrary(logger)
	if cfg.Scripts.Dir == "" {
		return lib, nil
	}
	n, err := lib.LoadDir(cfg.Scripts.Dir)
	if err != nil {
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	logger.Info("scripts loaded", log.String("dir", cfg.Scripts.Dir), log.Int("count", n))
	return lib, nil
}
