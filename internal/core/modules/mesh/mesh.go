// Package mesh provides the renderable module: a named geometry drawn with a
// material at its entity's transform.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

// Material describes the surface response to light.
type Material struct {
	Color        mgl32.Vec4
	Reflectivity float32
	Shininess    float32
	Transparency float32
	// Emissive is added to the lit color regardless of lights.
	Emissive float32
	// Texture names a library texture; empty or unknown draws untextured.
	Texture string
}

// DefaultMaterial is a matte white surface.
func DefaultMaterial() Material {
	return Material{
		Color:        mgl32.Vec4{1, 1, 1, 1},
		Reflectivity: 0.5,
		Shininess:    16,
	}
}

type Renderable struct {
	scene.Base
	Geometry string
	Material Material
}

type Option func(*Renderable)

func WithColor(c mgl32.Vec4) Option {
	return func(r *Renderable) { r.Material.Color = c }
}

func WithTexture(name string) Option {
	return func(r *Renderable) { r.Material.Texture = name }
}

// WithEmissive sets the self-illumination strength, clamped to [0, 1].
func WithEmissive(strength float32) Option {
	return func(r *Renderable) { r.Material.Emissive = mathx.Clamp(strength, 0, 1) }
}

func WithShine(reflectivity, shininess float32) Option {
	return func(r *Renderable) {
		r.Material.Reflectivity = mathx.Clamp(reflectivity, 0, 1)
		r.Material.Shininess = max(shininess, 1)
	}
}

func WithTransparency(v float32) Option {
	return func(r *Renderable) { r.Material.Transparency = mathx.Clamp(v, 0, 1) }
}

func New(geometry string, opts ...Option) *Renderable {
	r := &Renderable{Geometry: geometry, Material: DefaultMaterial()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderable) Capability() scene.Capability { return scene.CapRenderable }
