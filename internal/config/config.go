// Package config loads the engine configuration from YAML or TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/loop"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/render"
	"github.com/zeusync/lightengine/internal/telemetry"
	"github.com/zeusync/lightengine/pkg/mathx"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

const (
	MinShadowResolution = 256
	MaxShadowResolution = 8192
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

type Config struct {
	Window     WindowConfig     `yaml:"window" toml:"window"`
	Render     RenderConfig     `yaml:"render" toml:"render"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation"`
	Loading    LoadingConfig    `yaml:"loading" toml:"loading"`
	Input      InputConfig      `yaml:"input" toml:"input"`
	Scripts    ScriptsConfig    `yaml:"scripts" toml:"scripts"`
	Logging    log.Config       `yaml:"logging" toml:"logging"`
	Telemetry  telemetry.Config `yaml:"telemetry" toml:"telemetry"`

	// Scene is the path of the scene options file; empty uses the built-in
	// demo scene.
	Scene string `yaml:"scene" toml:"scene"`
	// Textures is a directory of PNG textures added to the resource library.
	Textures string `yaml:"textures" toml:"textures"`
}

type WindowConfig struct {
	Title  string `yaml:"title" toml:"title"`
	Width  int    `yaml:"width" toml:"width"`
	Height int    `yaml:"height" toml:"height"`
	VSync  bool   `yaml:"vsync" toml:"vsync"`
}

type RenderConfig struct {
	ShadowResolution int     `yaml:"shadow_resolution" toml:"shadow_resolution"`
	RenderDistance   float32 `yaml:"render_distance" toml:"render_distance"`
	FieldOfView      float32 `yaml:"field_of_view" toml:"field_of_view"`
	Monochrome       bool    `yaml:"monochrome" toml:"monochrome"`
}

type SimulationConfig struct {
	TickRate       int           `yaml:"tick_rate" toml:"tick_rate"`
	SurfaceTimeout time.Duration `yaml:"surface_timeout" toml:"surface_timeout"`
}

type LoadingConfig struct {
	Texture string        `yaml:"texture" toml:"texture"`
	FadeOut time.Duration `yaml:"fade_out" toml:"fade_out"`
}

// InputConfig adds key bindings on top of the defaults, keyed by event name.
type InputConfig struct {
	Bindings map[string][]string `yaml:"bindings" toml:"bindings"`
}

type ScriptsConfig struct {
	Dir   string `yaml:"dir" toml:"dir"`
	Watch bool   `yaml:"watch" toml:"watch"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "lightengine",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: RenderConfig{
			ShadowResolution: 4096,
			RenderDistance:   1000,
			FieldOfView:      70,
		},
		Simulation: SimulationConfig{
			TickRate:       120,
			SurfaceTimeout: 30 * time.Second,
		},
		Loading: LoadingConfig{
			Texture: "loadingScreen",
			FadeOut: 500 * time.Millisecond,
		},
		Logging: log.Config{
			Level:  "info",
			Format: "console",
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// Load reads path, choosing the decoder by extension. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FormatOf maps a file extension to a format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Parse decodes data over the defaults and normalizes the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	cfg.Normalize()
	return cfg, nil
}

// Normalize clamps out-of-range values instead of rejecting them.
func (c *Config) Normalize() {
	d := Default()

	c.Window.Width = max(c.Window.Width, 1)
	c.Window.Height = max(c.Window.Height, 1)

	res := mathx.ClampInt(c.Render.ShadowResolution, MinShadowResolution, MaxShadowResolution)
	c.Render.ShadowResolution = mathx.FloorPowerOfTwo(res)
	if c.Render.RenderDistance <= 0 {
		c.Render.RenderDistance = d.Render.RenderDistance
	}
	c.Render.FieldOfView = mathx.Clamp(c.Render.FieldOfView, 1, 179)

	c.Simulation.TickRate = max(c.Simulation.TickRate, 0)
	c.Simulation.SurfaceTimeout = max(c.Simulation.SurfaceTimeout, 0)
	c.Loading.FadeOut = max(c.Loading.FadeOut, 0)

	if c.Telemetry.Interval <= 0 {
		c.Telemetry.Interval = d.Telemetry.Interval
	}
	if c.Telemetry.ListenAddr == "" {
		c.Telemetry.ListenAddr = d.Telemetry.ListenAddr
	}
}

func (r RenderConfig) Settings() render.Settings {
	return render.Settings{
		ShadowResolution: r.ShadowResolution,
		RenderDistance:   r.RenderDistance,
		FieldOfView:      r.FieldOfView,
		Monochrome:       r.Monochrome,
	}
}

func (s SimulationConfig) Loop() loop.SimulationConfig {
	return loop.SimulationConfig{TickRate: s.TickRate, SurfaceTimeout: s.SurfaceTimeout}
}

// Keys converts the configured bindings to input keys.
func (i InputConfig) Keys() map[string][]input.Key {
	if len(i.Bindings) == 0 {
		return nil
	}
	out := make(map[string][]input.Key, len(i.Bindings))
	for event, names := range i.Bindings {
		keys := make([]input.Key, 0, len(names))
		for _, n := range names {
			keys = append(keys, input.Key(strings.ToUpper(n)))
		}
		out[event] = keys
	}
	return out
}
