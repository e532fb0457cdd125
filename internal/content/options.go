// Package content builds the demo scene and its GUI screens from
// declarative options.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/pkg/mathx"
)

const (
	MaxSpotLights        = 8
	MaxDirectionalLights = 2
	MaxColorLights       = 3
)

// Options describe the demo scene. Counts out of range are clamped.
type Options struct {
	SpotLights        int     `yaml:"spot_lights" toml:"spot_lights"`
	SpotAngle         float32 `yaml:"spot_angle" toml:"spot_angle"`
	DirectionalLights int     `yaml:"directional_lights" toml:"directional_lights"`
	ColorLights       int     `yaml:"color_lights" toml:"color_lights"`
	Spheres           int     `yaml:"spheres" toml:"spheres"`
	Monkeys           int     `yaml:"monkeys" toml:"monkeys"`
	Shadows           bool    `yaml:"shadows" toml:"shadows"`
	// Seed shuffles the color light order and the object offsets; zero keeps
	// the layout fixed.
	Seed uint64 `yaml:"seed" toml:"seed"`

	Scripted []ScriptedObject `yaml:"scripted" toml:"scripted"`
}

// ScriptedObject places a mesh driven by a Lua script on an input event.
type ScriptedObject struct {
	Script   string     `yaml:"script" toml:"script"`
	Event    string     `yaml:"event" toml:"event"`
	Key      string     `yaml:"key" toml:"key"`
	Geometry string     `yaml:"geometry" toml:"geometry"`
	Position [3]float32 `yaml:"position" toml:"position"`
	Rotation [3]float32 `yaml:"rotation" toml:"rotation"`
	Range    float32    `yaml:"range" toml:"range"`
	Hold     bool       `yaml:"hold" toml:"hold"`
}

// event is the input event triggering the object; the script name unless set.
func (s ScriptedObject) event() string {
	if s.Event != "" {
		return s.Event
	}
	return s.Script
}

func DefaultOptions() Options {
	return Options{
		SpotLights:        1,
		SpotAngle:         40,
		DirectionalLights: 0,
		ColorLights:       3,
		Spheres:           2,
		Monkeys:           1,
		Shadows:           true,
	}
}

// Normalize clamps the light counts and drops negative object counts.
func (o *Options) Normalize() {
	o.SpotLights = mathx.ClampInt(o.SpotLights, 0, MaxSpotLights)
	o.DirectionalLights = mathx.ClampInt(o.DirectionalLights, 0, MaxDirectionalLights)
	o.ColorLights = mathx.ClampInt(o.ColorLights, 0, MaxColorLights)
	o.Spheres = max(o.Spheres, 0)
	o.Monkeys = max(o.Monkeys, 0)
	if o.SpotAngle <= 0 {
		o.SpotAngle = DefaultOptions().SpotAngle
	}
}

// LoadOptions reads scene options from a YAML or TOML file. An empty path
// returns the defaults.
func LoadOptions(path string) (Options, error) {
	if path == "" {
		return DefaultOptions(), nil
	}
	format, err := config.FormatOf(path)
	if err != nil {
		return Options{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read scene %s: %w", path, err)
	}
	opts, err := ParseOptions(data, format)
	if err != nil {
		return Options{}, fmt.Errorf("parse scene %s: %w", path, err)
	}
	return opts, nil
}

func ParseOptions(data []byte, format config.Format) (Options, error) {
	opts := DefaultOptions()
	switch format {
	case config.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
			return Options{}, err
		}
	case config.FormatTOML:
		if _, err := toml.Decode(string(data), &opts); err != nil {
			return Options{}, err
		}
	default:
		return Options{}, fmt.Errorf("%q: %w", format, config.ErrUnsupportedFormat)
	}
	opts.Normalize()
	return opts, nil
}

func vec(v [3]float32) mgl32.Vec3 { return mgl32.Vec3(v) }
